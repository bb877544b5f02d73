package engine

import (
	"time"

	"github.com/rowanvale/questlog/internal/model"
	"github.com/rowanvale/questlog/internal/period"
)

// The three cadences share one reset mechanism parametrized by a period
// key function, so the boundary logic cannot drift between them. A reset
// zeroes progress and completion on every quest of the cadence and stamps
// the cadence's last-reset marker. Calling a reset again within the same
// cycle is a no-op; a missing marker always resets (fail open — a skipped
// reset is worse than a redundant one).

// ResetDaily resets all daily quests when the calendar day has changed
// since the last daily reset. Returns whether a reset was performed.
func (e *Engine) ResetDaily() bool {
	return e.reset(model.QuestDaily)
}

// ResetWeekly resets all weekly quests at the ISO-week boundary.
func (e *Engine) ResetWeekly() bool {
	return e.reset(model.QuestWeekly)
}

// ResetMonthly resets all monthly quests at the month boundary.
func (e *Engine) ResetMonthly() bool {
	return e.reset(model.QuestMonthly)
}

// ResetAll runs all three resets and reports whether any fired.
func (e *Engine) ResetAll() bool {
	daily := e.ResetDaily()
	weekly := e.ResetWeekly()
	monthly := e.ResetMonthly()
	return daily || weekly || monthly
}

// NeedsRefresh reports, without mutating state, whether any cadence is due
// a reset. Used by the safety check that detects a missed boundary (for
// example a device asleep through midnight).
func (e *Engine) NeedsRefresh() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	now := e.clock.Now()
	for _, qt := range model.QuestTypes {
		if !period.SameCycle(period.ForType(qt), e.lastReset(qt), now) {
			return true
		}
	}
	return false
}

func (e *Engine) reset(qt model.QuestType) bool {
	e.mu.Lock()
	now := e.clock.Now()
	if period.SameCycle(period.ForType(qt), e.lastReset(qt), now) {
		e.mu.Unlock()
		return false
	}

	quests := e.state.Quests[qt]
	for i := range quests {
		quests[i].Completed = false
		quests[i].CurrentAmount = 0
		quests[i].CompletedAt = nil
	}
	e.setLastReset(qt, now)
	rev, notify := e.bump()
	e.mu.Unlock()

	e.logger.Info("cycle reset", "type", qt, "quests", len(quests))
	notifyChange(rev, notify)
	return true
}

// lastReset returns the cadence's marker, zero when absent. Callers hold
// the lock.
func (e *Engine) lastReset(qt model.QuestType) time.Time {
	var t *time.Time
	switch qt {
	case model.QuestWeekly:
		t = e.state.LastWeeklyReset
	case model.QuestMonthly:
		t = e.state.LastMonthlyReset
	default:
		t = e.state.LastDailyReset
	}
	if t == nil {
		return time.Time{}
	}
	return *t
}

func (e *Engine) setLastReset(qt model.QuestType, now time.Time) {
	switch qt {
	case model.QuestWeekly:
		e.state.LastWeeklyReset = &now
	case model.QuestMonthly:
		e.state.LastMonthlyReset = &now
	default:
		e.state.LastDailyReset = &now
	}
}
