package engine

import "time"

// Clock supplies wall-clock time. Injected so reset-boundary and level-up
// logic is testable against fixed dates.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
