package engine

import (
	"testing"

	"github.com/rowanvale/questlog/internal/model"
)

// earn seeds the balance by completing throwaway daily quests.
func earn(t *testing.T, e *Engine, coins int) {
	t.Helper()
	for earned := 0; earned < coins; earned += 5 {
		q, err := e.CreateQuest(model.QuestDaily, "Seed", "", model.TrackUnit, 1)
		if err != nil {
			t.Fatalf("CreateQuest error: %v", err)
		}
		if _, err := e.Complete(model.QuestDaily, q.ID); err != nil {
			t.Fatalf("Complete error: %v", err)
		}
	}
}

func TestRecordPurchase(t *testing.T) {
	e, _ := newTestEngine(t)
	earn(t, e, 100)

	real := 19.99
	p, err := e.RecordPurchase("Shirt", 80, &real, "birthday treat")
	if err != nil {
		t.Fatalf("RecordPurchase error: %v", err)
	}
	if p.ID == "" {
		t.Error("expected generated id")
	}
	if p.PurchasedAt.IsZero() {
		t.Error("purchased_at should be set")
	}
	if e.Coins() != 20 {
		t.Errorf("coins = %d, want 20", e.Coins())
	}

	purchases := e.Purchases()
	if len(purchases) != 1 || purchases[0].Name != "Shirt" {
		t.Fatalf("purchases = %v, want one Shirt", purchases)
	}
	if purchases[0].RealCost == nil || *purchases[0].RealCost != 19.99 {
		t.Errorf("real_cost = %v, want 19.99", purchases[0].RealCost)
	}
}

func TestRecordPurchaseInsufficientFunds(t *testing.T) {
	e, _ := newTestEngine(t)
	earn(t, e, 100)

	_, err := e.RecordPurchase("Shirt", 150, nil, "")
	if err == nil {
		t.Fatal("expected InsufficientFundsError")
	}
	ife, ok := err.(InsufficientFundsError)
	if !ok {
		t.Fatalf("error = %T, want InsufficientFundsError", err)
	}
	if ife.Have != 100 || ife.Need != 150 {
		t.Errorf("have/need = %d/%d, want 100/150", ife.Have, ife.Need)
	}

	// Rejection leaves state untouched.
	if e.Coins() != 100 {
		t.Errorf("coins = %d, want 100", e.Coins())
	}
	if len(e.Purchases()) != 0 {
		t.Error("no purchase should be recorded on rejection")
	}
}

func TestRecordPurchaseValidation(t *testing.T) {
	e, _ := newTestEngine(t)
	earn(t, e, 50)

	bad := -1.0
	tests := []struct {
		name     string
		itemName string
		coinCost int
		realCost *float64
	}{
		{"empty name", "  ", 10, nil},
		{"zero cost", "Shirt", 0, nil},
		{"negative cost", "Shirt", -5, nil},
		{"negative real cost", "Shirt", 10, &bad},
	}
	for _, tt := range tests {
		if _, err := e.RecordPurchase(tt.itemName, tt.coinCost, tt.realCost, ""); err == nil {
			t.Errorf("%s: expected ValidationError", tt.name)
		} else if _, ok := err.(ValidationError); !ok {
			t.Errorf("%s: error = %T, want ValidationError", tt.name, err)
		}
	}
	if e.Coins() != 50 {
		t.Errorf("coins = %d after rejected purchases, want 50", e.Coins())
	}
}

func TestDeletePurchaseNoRefund(t *testing.T) {
	e, _ := newTestEngine(t)
	earn(t, e, 50)

	p, err := e.RecordPurchase("Coffee", 30, nil, "")
	if err != nil {
		t.Fatalf("RecordPurchase error: %v", err)
	}

	e.DeletePurchase(p.ID)
	if len(e.Purchases()) != 0 {
		t.Error("purchase should be removed")
	}
	if e.Coins() != 20 {
		t.Errorf("coins = %d, want 20 (deletion corrects the log, not the ledger)", e.Coins())
	}

	// Unknown id is a no-op.
	rev := e.Revision()
	e.DeletePurchase("missing")
	if e.Revision() != rev {
		t.Error("no-op delete must not bump the revision")
	}
}

func TestCoinsNeverNegative(t *testing.T) {
	e, _ := newTestEngine(t)
	earn(t, e, 25)

	spent := 0
	for _, cost := range []int{10, 10, 10, 5} {
		if _, err := e.RecordPurchase("Snack", cost, nil, ""); err == nil {
			spent += cost
		}
	}
	if spent != 25 {
		t.Errorf("spent = %d, want 25", spent)
	}
	if e.Coins() < 0 {
		t.Fatalf("coins = %d, must never go negative", e.Coins())
	}
	if e.Coins() != 0 {
		t.Errorf("coins = %d, want 0", e.Coins())
	}
}
