package engine

import (
	"testing"
	"time"

	"github.com/rowanvale/questlog/internal/model"
)

func TestResetDailyIdempotent(t *testing.T) {
	e, clock := newTestEngine(t)
	q, _ := e.CreateQuest(model.QuestDaily, "Drink water", "", model.TrackMilliliters, 2000)
	if _, err := e.AddProgress(model.QuestDaily, q.ID, 2000); err != nil {
		t.Fatalf("AddProgress error: %v", err)
	}

	// First reset ever fires: there is no last-reset marker yet.
	if !e.ResetDaily() {
		t.Fatal("expected first ResetDaily to fire")
	}
	got := e.Quest(model.QuestDaily, q.ID)
	if got.Completed || got.CurrentAmount != 0 || got.CompletedAt != nil {
		t.Errorf("quest after reset = %+v, want cleared", got)
	}

	// Second call within the same day is a no-op.
	if e.ResetDaily() {
		t.Error("redundant same-day ResetDaily must be a no-op")
	}

	// A new calendar day always resets, completed or not.
	clock.Advance(24 * time.Hour)
	if !e.ResetDaily() {
		t.Error("expected reset on the next day")
	}
}

func TestResetPreservesLedger(t *testing.T) {
	e, clock := newTestEngine(t)
	q, _ := e.CreateQuest(model.QuestDaily, "Stretch", "", model.TrackUnit, 1)
	if _, err := e.Complete(model.QuestDaily, q.ID); err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	clock.Advance(24 * time.Hour)
	e.ResetDaily()

	state := e.State()
	if state.Coins != 5 || state.TotalEarned != 5 {
		t.Errorf("coins/total_earned = %d/%d, want 5/5", state.Coins, state.TotalEarned)
	}
	if state.TotalQuestsCompleted != 1 {
		t.Errorf("total_quests_completed = %d, want 1", state.TotalQuestsCompleted)
	}
	if state.DailyLevel != 2 {
		t.Errorf("daily_level = %d, want 2 (resets never lower levels)", state.DailyLevel)
	}
	if len(state.CompletedDays) != 1 {
		t.Errorf("completed_days = %v, want the historical entry kept", state.CompletedDays)
	}
}

func TestResetWeeklyAtISOBoundary(t *testing.T) {
	e, clock := newTestEngine(t)
	q, _ := e.CreateQuest(model.QuestWeekly, "Long run", "", model.TrackSteps, 30000)
	if _, err := e.AddProgress(model.QuestWeekly, q.ID, 10000); err != nil {
		t.Fatalf("AddProgress error: %v", err)
	}

	if !e.ResetWeekly() {
		t.Fatal("expected first ResetWeekly to fire")
	}
	// Tuesday -> Sunday of the same ISO week: no-op.
	clock.Advance(5 * 24 * time.Hour)
	if e.ResetWeekly() {
		t.Error("same ISO week must not reset")
	}
	// Sunday -> Monday crosses the week boundary.
	clock.Advance(24 * time.Hour)
	if !e.ResetWeekly() {
		t.Error("expected reset on the new ISO week")
	}
}

func TestResetWeeklyAcrossYearBoundary(t *testing.T) {
	e, clock := newTestEngine(t)
	// Tuesday 2024-12-31 and Thursday 2025-01-02 share ISO week 2025-01.
	clock.t = time.Date(2024, time.December, 31, 10, 0, 0, 0, time.Local)
	e.ResetWeekly()

	clock.t = time.Date(2025, time.January, 2, 10, 0, 0, 0, time.Local)
	if e.ResetWeekly() {
		t.Error("year boundary inside one ISO week must not reset")
	}

	clock.t = time.Date(2025, time.January, 6, 10, 0, 0, 0, time.Local)
	if !e.ResetWeekly() {
		t.Error("expected reset on the next ISO week's Monday")
	}
}

func TestResetMonthly(t *testing.T) {
	e, clock := newTestEngine(t)
	q, _ := e.CreateQuest(model.QuestMonthly, "Read a book", "", model.TrackPages, 300)
	if _, err := e.AddProgress(model.QuestMonthly, q.ID, 120); err != nil {
		t.Fatalf("AddProgress error: %v", err)
	}

	if !e.ResetMonthly() {
		t.Fatal("expected first ResetMonthly to fire")
	}
	clock.Advance(20 * 24 * time.Hour) // still June
	if e.ResetMonthly() {
		t.Error("same month must not reset")
	}
	clock.t = time.Date(2025, time.July, 1, 0, 30, 0, 0, time.Local)
	if !e.ResetMonthly() {
		t.Error("expected reset on the first of the next month")
	}
	if got := e.Quest(model.QuestMonthly, q.ID); got.CurrentAmount != 0 {
		t.Errorf("current_amount = %v after monthly reset, want 0", got.CurrentAmount)
	}
}

func TestNeedsRefresh(t *testing.T) {
	e, clock := newTestEngine(t)

	// Fresh state: no markers at all, everything is due.
	if !e.NeedsRefresh() {
		t.Fatal("fresh state should need a refresh")
	}

	rev := e.Revision()
	_ = e.NeedsRefresh()
	if e.Revision() != rev {
		t.Error("NeedsRefresh must not mutate state")
	}

	e.ResetAll()
	if e.NeedsRefresh() {
		t.Error("nothing should be due right after ResetAll")
	}

	// Sleep through midnight: the daily cadence is due again.
	clock.Advance(24 * time.Hour)
	if !e.NeedsRefresh() {
		t.Error("expected refresh needed after a day boundary")
	}

	e.ResetAll()
	if e.NeedsRefresh() {
		t.Error("corrective ResetAll should clear the refresh flag")
	}
}
