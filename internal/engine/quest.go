package engine

import (
	"strings"

	"github.com/google/uuid"

	"github.com/rowanvale/questlog/internal/model"
)

// QuestPatch carries partial field updates. Nil fields are left untouched.
type QuestPatch struct {
	Title         *string
	Description   *string
	TrackingKind  *model.TrackingKind
	TargetAmount  *float64
	CurrentAmount *float64
}

// CreateQuest validates input and appends a new quest to the cadence's
// list. The reward is copied from the reward table now; later table
// changes never retroactively alter this quest.
func (e *Engine) CreateQuest(qt model.QuestType, title, description string, kind model.TrackingKind, targetAmount float64) (*model.Quest, error) {
	title = strings.TrimSpace(title)
	if !qt.Valid() {
		return nil, ValidationError{Field: "type", Reason: "unknown quest type"}
	}
	if title == "" {
		return nil, ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if !kind.Valid() {
		return nil, ValidationError{Field: "tracking_kind", Reason: "unknown tracking kind"}
	}
	if targetAmount <= 0 {
		return nil, ValidationError{Field: "target_amount", Reason: "must be positive"}
	}

	e.mu.Lock()
	q := model.Quest{
		ID:           uuid.NewString(),
		Title:        title,
		Description:  description,
		TrackingKind: kind,
		TargetAmount: targetAmount,
		Reward:       e.rewards.For(qt),
		CreatedAt:    e.clock.Now(),
	}
	e.state.Quests[qt] = append(e.state.Quests[qt], q)
	rev, notify := e.bump()
	e.mu.Unlock()

	e.logger.Info("quest created", "type", qt, "id", q.ID, "title", q.Title)
	notifyChange(rev, notify)
	return &q, nil
}

// UpdateQuest applies a partial edit. An unknown id is a silent no-op
// (nil, nil). Lowering the target or current amount so that the quest no
// longer meets its target revokes completion; rewards already issued are
// not reversed, and an edit never issues new rewards.
func (e *Engine) UpdateQuest(qt model.QuestType, id string, patch QuestPatch) (*model.Quest, error) {
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return nil, ValidationError{Field: "title", Reason: "must not be empty"}
		}
		patch.Title = &t
	}
	if patch.TrackingKind != nil && !patch.TrackingKind.Valid() {
		return nil, ValidationError{Field: "tracking_kind", Reason: "unknown tracking kind"}
	}
	if patch.TargetAmount != nil && *patch.TargetAmount <= 0 {
		return nil, ValidationError{Field: "target_amount", Reason: "must be positive"}
	}
	if patch.CurrentAmount != nil && *patch.CurrentAmount < 0 {
		return nil, ValidationError{Field: "current_amount", Reason: "must not be negative"}
	}

	e.mu.Lock()
	q := e.findQuest(qt, id)
	if q == nil {
		e.mu.Unlock()
		return nil, nil
	}

	if patch.Title != nil {
		q.Title = *patch.Title
	}
	if patch.Description != nil {
		q.Description = *patch.Description
	}
	if patch.TrackingKind != nil {
		q.TrackingKind = *patch.TrackingKind
	}
	if patch.TargetAmount != nil {
		q.TargetAmount = *patch.TargetAmount
	}
	if patch.CurrentAmount != nil {
		q.CurrentAmount = *patch.CurrentAmount
	}
	if q.CurrentAmount < q.TargetAmount {
		q.Completed = false
		q.CompletedAt = nil
	}
	out := *q
	rev, notify := e.bump()
	e.mu.Unlock()

	notifyChange(rev, notify)
	return &out, nil
}

// DeleteQuest removes a quest. Unknown ids are a silent no-op. Rewards and
// lifetime counters already earned by the quest are unaffected.
func (e *Engine) DeleteQuest(qt model.QuestType, id string) {
	e.mu.Lock()
	quests := e.state.Quests[qt]
	found := false
	for i := range quests {
		if quests[i].ID == id {
			e.state.Quests[qt] = append(quests[:i], quests[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		e.mu.Unlock()
		return
	}
	rev, notify := e.bump()
	e.mu.Unlock()

	e.logger.Info("quest deleted", "type", qt, "id", id)
	notifyChange(rev, notify)
}

// Quest returns a copy of one quest, or nil when not found.
func (e *Engine) Quest(qt model.QuestType, id string) *model.Quest {
	e.mu.RLock()
	defer e.mu.RUnlock()
	q := e.findQuest(qt, id)
	if q == nil {
		return nil
	}
	out := *q
	return &out
}

// Quests returns a copy of the cadence's quest list in display order.
func (e *Engine) Quests(qt model.QuestType) []model.Quest {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.Quest, len(e.state.Quests[qt]))
	copy(out, e.state.Quests[qt])
	return out
}
