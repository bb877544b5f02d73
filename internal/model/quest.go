package model

import "time"

// QuestType is the cadence bucket a quest belongs to. It doubles as the
// reset period: daily quests reset at local midnight, weekly quests at the
// ISO week boundary, monthly quests on the first of the month.
type QuestType string

const (
	QuestDaily   QuestType = "daily"
	QuestWeekly  QuestType = "weekly"
	QuestMonthly QuestType = "monthly"
)

// QuestTypes lists all cadences in display order.
var QuestTypes = []QuestType{QuestDaily, QuestWeekly, QuestMonthly}

// Valid reports whether t is a known cadence.
func (t QuestType) Valid() bool {
	switch t {
	case QuestDaily, QuestWeekly, QuestMonthly:
		return true
	}
	return false
}

// TrackingKind determines how quest progress is measured and displayed.
type TrackingKind string

const (
	TrackUnit        TrackingKind = "unit"
	TrackSteps       TrackingKind = "steps"
	TrackTime        TrackingKind = "time"
	TrackCalories    TrackingKind = "calories"
	TrackMilliliters TrackingKind = "milliliters"
	TrackPages       TrackingKind = "pages"
)

// Valid reports whether k is a known tracking kind.
func (k TrackingKind) Valid() bool {
	switch k {
	case TrackUnit, TrackSteps, TrackTime, TrackCalories, TrackMilliliters, TrackPages:
		return true
	}
	return false
}

// Unit returns the display unit for a tracking kind.
func (k TrackingKind) Unit() string {
	switch k {
	case TrackUnit:
		return "times"
	case TrackSteps:
		return "steps"
	case TrackTime:
		return "minutes"
	case TrackCalories:
		return "kcal"
	case TrackMilliliters:
		return "ml"
	case TrackPages:
		return "pages"
	}
	return ""
}

// Reward is the coin payout captured onto a quest at creation time.
// Changing the reward table later never alters existing quests.
type Reward struct {
	Coins int `json:"coins"`
}

type Quest struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	TrackingKind  TrackingKind `json:"tracking_kind"`
	TargetAmount  float64      `json:"target_amount"`
	CurrentAmount float64      `json:"current_amount"`
	Completed     bool         `json:"completed"`
	Reward        Reward       `json:"reward"`
	CreatedAt     time.Time    `json:"created_at"`
	CompletedAt   *time.Time   `json:"completed_at"`
}
