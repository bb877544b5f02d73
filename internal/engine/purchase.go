package engine

import (
	"strings"

	"github.com/google/uuid"

	"github.com/rowanvale/questlog/internal/model"
)

// RecordPurchase debits coins and appends an immutable purchase record in
// one step — there is no separate wishlist state, recording and paying are
// the same transaction. A cost above the balance is rejected and leaves
// state unchanged; the balance can never go negative.
func (e *Engine) RecordPurchase(name string, coinCost int, realCost *float64, description string) (*model.Purchase, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if coinCost <= 0 {
		return nil, ValidationError{Field: "coin_cost", Reason: "must be positive"}
	}
	if realCost != nil && *realCost <= 0 {
		return nil, ValidationError{Field: "real_cost", Reason: "must be positive"}
	}

	e.mu.Lock()
	if e.state.Coins < coinCost {
		have := e.state.Coins
		e.mu.Unlock()
		return nil, InsufficientFundsError{Have: have, Need: coinCost}
	}

	now := e.clock.Now()
	p := model.Purchase{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CoinCost:    coinCost,
		RealCost:    realCost,
		PurchasedAt: now,
		CreatedAt:   now,
	}
	e.state.Coins -= coinCost
	e.state.Purchases = append(e.state.Purchases, p)
	rev, notify := e.bump()
	e.mu.Unlock()

	e.logger.Info("purchase recorded", "id", p.ID, "name", p.Name, "coins", coinCost)
	notifyChange(rev, notify)
	return &p, nil
}

// DeletePurchase removes a purchase record without refunding coins.
// Unknown ids are a silent no-op.
func (e *Engine) DeletePurchase(id string) {
	e.mu.Lock()
	found := false
	for i := range e.state.Purchases {
		if e.state.Purchases[i].ID == id {
			e.state.Purchases = append(e.state.Purchases[:i], e.state.Purchases[i+1:]...)
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

	e.logger.Info("purchase deleted", "id", id)
	notifyChange(rev, notify)
}

// Purchases returns a copy of the purchase log in insertion order.
func (e *Engine) Purchases() []model.Purchase {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.Purchase, len(e.state.Purchases))
	copy(out, e.state.Purchases)
	return out
}

// Coins returns the current balance.
func (e *Engine) Coins() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Coins
}
