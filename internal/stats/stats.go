// Package stats computes read-only views over an engine snapshot: totals,
// completion rates, and the month calendar of fully-completed days.
package stats

import (
	"time"

	"github.com/rowanvale/questlog/internal/model"
	"github.com/rowanvale/questlog/internal/period"
)

// Summary aggregates headline numbers for the stats view.
type Summary struct {
	DailyLevel     int     `json:"daily_level"`
	WeeklyLevel    int     `json:"weekly_level"`
	Coins          int     `json:"coins"`
	TotalEarned    int     `json:"total_earned"`
	DailyStreak    int     `json:"daily_streak"`
	TotalQuests    int     `json:"total_quests"`
	CompletionRate int     `json:"completion_rate"`
	Lifetime       ByType  `json:"lifetime_completions"`
	ThisMonth      Monthly `json:"this_month"`
}

// ByType holds lifetime completion counts per cadence.
type ByType struct {
	Total   int `json:"total"`
	Daily   int `json:"daily"`
	Weekly  int `json:"weekly"`
	Monthly int `json:"monthly"`
}

// Monthly counts fully-completed days and weeks within one month.
type Monthly struct {
	CompletedDays  int `json:"completed_days"`
	DaysInMonth    int `json:"days_in_month"`
	CompletedWeeks int `json:"completed_weeks"`
	WeeksInMonth   int `json:"weeks_in_month"`
}

// CalendarDay is one cell of the month grid.
type CalendarDay struct {
	Day       int    `json:"day"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// Summarize builds the headline summary for the month containing now.
func Summarize(s *model.Snapshot, now time.Time) Summary {
	total, completed := 0, 0
	for _, qs := range s.Quests {
		total += len(qs)
		for i := range qs {
			if qs[i].Completed {
				completed++
			}
		}
	}
	rate := 0
	if total > 0 {
		rate = completed * 100 / total
	}

	return Summary{
		DailyLevel:     s.DailyLevel,
		WeeklyLevel:    s.WeeklyLevel,
		Coins:          s.Coins,
		TotalEarned:    s.TotalEarned,
		DailyStreak:    s.DailyStreak,
		TotalQuests:    total,
		CompletionRate: rate,
		Lifetime: ByType{
			Total:   s.TotalQuestsCompleted,
			Daily:   s.TotalDailyQuestsCompleted,
			Weekly:  s.TotalWeeklyQuestsCompleted,
			Monthly: s.TotalMonthlyQuestsCompleted,
		},
		ThisMonth: monthStats(s, now.Year(), now.Month()),
	}
}

func monthStats(s *model.Snapshot, year int, month time.Month) Monthly {
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()

	completedDays := 0
	for _, key := range s.CompletedDays {
		d, err := period.ParseDayKey(key)
		if err != nil {
			continue
		}
		if d.Year() == year && d.Month() == month {
			completedDays++
		}
	}

	// Collect the ISO week keys the month's days fall into, then count how
	// many of them appear in the completed-weeks log.
	weekKeys := map[string]struct{}{}
	for day := 1; day <= daysInMonth; day++ {
		weekKeys[period.WeekKey(time.Date(year, month, day, 12, 0, 0, 0, time.Local))] = struct{}{}
	}
	completedWeeks := 0
	for _, key := range s.CompletedWeeks {
		if _, ok := weekKeys[key]; ok {
			completedWeeks++
		}
	}

	return Monthly{
		CompletedDays:  completedDays,
		DaysInMonth:    daysInMonth,
		CompletedWeeks: completedWeeks,
		WeeksInMonth:   len(weekKeys),
	}
}

// Calendar returns the month grid: leading nil-day cells pad to the
// weekday of the first, then one cell per day marked completed when all
// daily quests were done that day.
func Calendar(s *model.Snapshot, year int, month time.Month) []CalendarDay {
	completed := make(map[string]struct{}, len(s.CompletedDays))
	for _, key := range s.CompletedDays {
		completed[key] = struct{}{}
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()

	grid := make([]CalendarDay, 0, int(first.Weekday())+daysInMonth)
	for i := 0; i < int(first.Weekday()); i++ {
		grid = append(grid, CalendarDay{})
	}
	for day := 1; day <= daysInMonth; day++ {
		key := period.DayKey(time.Date(year, month, day, 12, 0, 0, 0, time.Local))
		_, done := completed[key]
		grid = append(grid, CalendarDay{Day: day, Date: key, Completed: done})
	}
	return grid
}
