package engine

import (
	"slices"
	"time"

	"github.com/rowanvale/questlog/internal/model"
	"github.com/rowanvale/questlog/internal/period"
)

// AddProgress adds amount to a quest's progress. An already-completed
// quest is returned unchanged without mutating anything, so the completion
// transaction fires at most once per cycle. Reaching the target triggers
// the transaction in the same locked update. Unknown ids return (nil, nil).
func (e *Engine) AddProgress(qt model.QuestType, id string, amount float64) (*model.Quest, error) {
	if amount <= 0 {
		return nil, ValidationError{Field: "amount", Reason: "must be positive"}
	}

	e.mu.Lock()
	q := e.findQuest(qt, id)
	if q == nil {
		e.mu.Unlock()
		return nil, nil
	}
	if q.Completed {
		out := *q
		e.mu.Unlock()
		return &out, nil
	}

	q.CurrentAmount += amount
	if q.CurrentAmount >= q.TargetAmount {
		e.completeLocked(qt, q)
	}
	out := *q
	rev, notify := e.bump()
	e.mu.Unlock()

	notifyChange(rev, notify)
	return &out, nil
}

// Complete marks a quest done directly, bypassing incremental progress.
// Progress is left as-is; the same completion transaction runs. An
// already-completed quest is returned unchanged; unknown ids return
// (nil, nil).
func (e *Engine) Complete(qt model.QuestType, id string) (*model.Quest, error) {
	e.mu.Lock()
	q := e.findQuest(qt, id)
	if q == nil {
		e.mu.Unlock()
		return nil, nil
	}
	if q.Completed {
		out := *q
		e.mu.Unlock()
		return &out, nil
	}

	e.completeLocked(qt, q)
	out := *q
	rev, notify := e.bump()
	e.mu.Unlock()

	notifyChange(rev, notify)
	return &out, nil
}

// completeLocked runs the completion transaction: mark the quest done,
// credit the reward, bump lifetime counters, and apply streak and level-up
// bookkeeping. The quest pointer aliases engine state, so the "all
// completed" level-up check sees this completion too. Callers hold the
// lock.
func (e *Engine) completeLocked(qt model.QuestType, q *model.Quest) {
	now := e.clock.Now()
	q.Completed = true
	q.CompletedAt = &now

	e.state.Coins += q.Reward.Coins
	e.state.TotalEarned += q.Reward.Coins
	e.state.TotalQuestsCompleted++

	switch qt {
	case model.QuestDaily:
		e.state.TotalDailyQuestsCompleted++
		e.bumpStreakLocked(now)
		e.maybeLevelUpLocked(qt, now)
	case model.QuestWeekly:
		e.state.TotalWeeklyQuestsCompleted++
		e.maybeLevelUpLocked(qt, now)
	case model.QuestMonthly:
		// Monthly quests pay coins but drive no level and no calendar log.
		e.state.TotalMonthlyQuestsCompleted++
	}

	e.logger.Info("quest completed",
		"type", qt, "id", q.ID, "title", q.Title, "coins", q.Reward.Coins)
}

// maybeLevelUpLocked increments the cadence's level when every quest of
// that cadence is completed, at most once per cycle. The cycle-identifier
// guard makes the level-up idempotent regardless of completion order.
func (e *Engine) maybeLevelUpLocked(qt model.QuestType, now time.Time) {
	quests := e.state.Quests[qt]
	if len(quests) == 0 {
		return
	}
	for i := range quests {
		if !quests[i].Completed {
			return
		}
	}

	key := period.ForType(qt)(now)
	switch qt {
	case model.QuestDaily:
		if e.state.LastDailyLevelUp == key {
			return
		}
		e.state.DailyLevel++
		e.state.LastDailyLevelUp = key
		if !slices.Contains(e.state.CompletedDays, key) {
			e.state.CompletedDays = append(e.state.CompletedDays, key)
		}
		e.logger.Info("daily level up", "level", e.state.DailyLevel, "day", key)
	case model.QuestWeekly:
		if e.state.LastWeeklyLevelUp == key {
			return
		}
		e.state.WeeklyLevel++
		e.state.LastWeeklyLevelUp = key
		if !slices.Contains(e.state.CompletedWeeks, key) {
			e.state.CompletedWeeks = append(e.state.CompletedWeeks, key)
		}
		e.logger.Info("weekly level up", "level", e.state.WeeklyLevel, "week", key)
	}
}

// bumpStreakLocked maintains the consecutive-day streak: unchanged when a
// daily quest was already completed today, incremented when yesterday was
// the last completion day, otherwise restarted at 1.
func (e *Engine) bumpStreakLocked(now time.Time) {
	today := period.DayKey(now)
	yesterday := period.DayKey(now.AddDate(0, 0, -1))

	switch e.state.LastCompletedDay {
	case today:
		// Already counted today.
	case yesterday:
		e.state.DailyStreak++
	default:
		e.state.DailyStreak = 1
	}
	e.state.LastCompletedDay = today
}
