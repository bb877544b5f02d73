package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rowanvale/questlog/internal/engine"
	"github.com/rowanvale/questlog/internal/model"
	"github.com/rowanvale/questlog/internal/websocket"
)

type PurchaseHandler struct {
	engine *engine.Engine
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewPurchaseHandler(eng *engine.Engine, hub *websocket.Hub, logger *slog.Logger) *PurchaseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PurchaseHandler{engine: eng, hub: hub, logger: logger}
}

func (h *PurchaseHandler) broadcast(ev websocket.Event) {
	if h.hub != nil {
		h.hub.Broadcast(ev)
	}
}

type purchaseRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CoinCost    int      `json:"coinCost"`
	RealCost    *float64 `json:"realCost"`
}

func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	purchase, err := h.engine.RecordPurchase(strings.TrimSpace(req.Name), req.CoinCost, req.RealCost, req.Description)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.broadcast(websocket.NewEvent("purchase", "created", h.engine.Revision(), purchase.ID))

	writeJSON(w, http.StatusCreated, purchase)
}

func (h *PurchaseHandler) List(w http.ResponseWriter, r *http.Request) {
	purchases := h.engine.Purchases()
	if purchases == nil {
		purchases = []model.Purchase{}
	}
	writeJSON(w, http.StatusOK, purchases)
}

// Delete removes a purchase record. Spent coins are not refunded.
func (h *PurchaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	h.engine.DeletePurchase(id)

	h.broadcast(websocket.NewEvent("purchase", "deleted", h.engine.Revision(), id))

	w.WriteHeader(http.StatusNoContent)
}
