package model

import "time"

// Snapshot is the full serializable engine state. It is the unit of
// persistence and sync: the local store and the remote mirror only ever
// read or replace it wholesale. The mirror may attach a lastUpdated
// metadata field on write; that field is not part of the snapshot and is
// stripped on read.
type Snapshot struct {
	DailyLevel  int `json:"daily_level"`
	WeeklyLevel int `json:"weekly_level"`
	Coins       int `json:"coins"`
	TotalEarned int `json:"total_earned"`

	Quests    map[QuestType][]Quest `json:"quests"`
	Purchases []Purchase            `json:"purchases"`

	// Append-only logs of cycles in which every quest of the cadence was
	// completed. Day keys are YYYY-MM-DD, week keys YYYY-WW (ISO week).
	CompletedDays  []string `json:"completed_days"`
	CompletedWeeks []string `json:"completed_weeks"`

	TotalQuestsCompleted        int `json:"total_quests_completed"`
	TotalDailyQuestsCompleted   int `json:"total_daily_quests_completed"`
	TotalWeeklyQuestsCompleted  int `json:"total_weekly_quests_completed"`
	TotalMonthlyQuestsCompleted int `json:"total_monthly_quests_completed"`

	DailyStreak       int    `json:"daily_streak"`
	LastCompletedDay  string `json:"last_completed_day,omitempty"`
	LastDailyLevelUp  string `json:"last_daily_level_up,omitempty"`
	LastWeeklyLevelUp string `json:"last_weekly_level_up,omitempty"`

	LastDailyReset   *time.Time `json:"last_daily_reset,omitempty"`
	LastWeeklyReset  *time.Time `json:"last_weekly_reset,omitempty"`
	LastMonthlyReset *time.Time `json:"last_monthly_reset,omitempty"`
}

// NewSnapshot returns the default state a fresh installation starts from.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		DailyLevel:  1,
		WeeklyLevel: 1,
		Quests: map[QuestType][]Quest{
			QuestDaily:   {},
			QuestWeekly:  {},
			QuestMonthly: {},
		},
		Purchases:      []Purchase{},
		CompletedDays:  []string{},
		CompletedWeeks: []string{},
	}
}

// Normalize fills in zero-value containers after deserialization so that
// consumers never see nil maps or slices. Unknown or missing fields in a
// stored document simply keep their defaults.
func (s *Snapshot) Normalize() {
	if s.Quests == nil {
		s.Quests = map[QuestType][]Quest{}
	}
	for _, qt := range QuestTypes {
		if s.Quests[qt] == nil {
			s.Quests[qt] = []Quest{}
		}
	}
	if s.Purchases == nil {
		s.Purchases = []Purchase{}
	}
	if s.CompletedDays == nil {
		s.CompletedDays = []string{}
	}
	if s.CompletedWeeks == nil {
		s.CompletedWeeks = []string{}
	}
	if s.DailyLevel < 1 {
		s.DailyLevel = 1
	}
	if s.WeeklyLevel < 1 {
		s.WeeklyLevel = 1
	}
}

// Clone returns a deep copy. Readers get clones so no caller can mutate
// engine-owned state behind the mutex.
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	c.Quests = make(map[QuestType][]Quest, len(s.Quests))
	for qt, qs := range s.Quests {
		list := make([]Quest, len(qs))
		copy(list, qs)
		for i := range list {
			if list[i].CompletedAt != nil {
				t := *list[i].CompletedAt
				list[i].CompletedAt = &t
			}
		}
		c.Quests[qt] = list
	}
	c.Purchases = make([]Purchase, len(s.Purchases))
	copy(c.Purchases, s.Purchases)
	for i := range c.Purchases {
		if c.Purchases[i].RealCost != nil {
			v := *c.Purchases[i].RealCost
			c.Purchases[i].RealCost = &v
		}
	}
	c.CompletedDays = append([]string{}, s.CompletedDays...)
	c.CompletedWeeks = append([]string{}, s.CompletedWeeks...)
	if s.LastDailyReset != nil {
		t := *s.LastDailyReset
		c.LastDailyReset = &t
	}
	if s.LastWeeklyReset != nil {
		t := *s.LastWeeklyReset
		c.LastWeeklyReset = &t
	}
	if s.LastMonthlyReset != nil {
		t := *s.LastMonthlyReset
		c.LastMonthlyReset = &t
	}
	return &c
}
