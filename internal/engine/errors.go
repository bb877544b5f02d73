package engine

import "fmt"

// ValidationError indicates bad caller input: an empty title, a
// non-positive amount, an unknown cadence. It is surfaced synchronously so
// a UI boundary can show it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientFundsError indicates a purchase costing more than the
// current coin balance. The balance is left untouched.
type InsufficientFundsError struct {
	Have int
	Need int
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient coins: have %d, need %d", e.Have, e.Need)
}
