// Package period computes calendar-cycle identifiers. All three reset
// cadences share one key mechanism: two instants belong to the same cycle
// iff their keys are equal. Keys use the timestamp's own location, so the
// engine's notion of "today" follows local wall-clock time.
package period

import (
	"fmt"
	"time"

	"github.com/rowanvale/questlog/internal/model"
)

const dayLayout = "2006-01-02"

// KeyFunc maps an instant to its cycle identifier for one cadence.
type KeyFunc func(time.Time) string

// DayKey returns the calendar-day identifier, YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// WeekKey returns the ISO-8601 week identifier, YYYY-WW. The year is the
// ISO week-numbering year, so a week spanning a calendar-year boundary has
// one stable key.
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-%02d", year, week)
}

// MonthKey returns the calendar-month identifier, YYYY-MM.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ForType returns the key function for a quest cadence.
func ForType(qt model.QuestType) KeyFunc {
	switch qt {
	case model.QuestWeekly:
		return WeekKey
	case model.QuestMonthly:
		return MonthKey
	default:
		return DayKey
	}
}

// ParseDayKey parses a YYYY-MM-DD identifier back into a local-time date.
func ParseDayKey(key string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, key, time.Local)
}

// SameCycle reports whether two instants fall in the same cycle under key.
// A zero "last" instant never matches: an absent marker always reads as a
// new cycle, so callers fail open toward resetting.
func SameCycle(key KeyFunc, last, now time.Time) bool {
	if last.IsZero() {
		return false
	}
	return key(last) == key(now)
}
