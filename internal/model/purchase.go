package model

import "time"

// Purchase records a real-life purchase paid with coins. Recording and
// paying are one transaction: a Purchase enters the log already bought.
// Deleting a purchase corrects the log, not the ledger — coins are never
// refunded.
type Purchase struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CoinCost    int       `json:"coin_cost"`
	RealCost    *float64  `json:"real_cost,omitempty"`
	PurchasedAt time.Time `json:"purchased_at"`
	CreatedAt   time.Time `json:"created_at"`
}
