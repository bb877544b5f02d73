package handler

import (
	"log/slog"
	"net/http"

	"github.com/rowanvale/questlog/internal/engine"
	"github.com/rowanvale/questlog/internal/websocket"
)

type StateHandler struct {
	engine *engine.Engine
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewStateHandler(eng *engine.Engine, hub *websocket.Hub, logger *slog.Logger) *StateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateHandler{engine: eng, hub: hub, logger: logger}
}

// Get serves the full snapshot plus its revision so a client can render
// everything in one request.
func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"revision": h.engine.Revision(),
		"state":    h.engine.State(),
	})
}

// RefreshCheck runs calendar-boundary resets if any cadence has rolled
// over since its last reset. Clients call it on focus/visibility changes;
// a no-op returns refreshed=false.
func (h *StateHandler) RefreshCheck(w http.ResponseWriter, r *http.Request) {
	if !h.engine.NeedsRefresh() {
		writeJSON(w, http.StatusOK, map[string]any{"refreshed": false})
		return
	}

	h.engine.ResetAll()
	rev := h.engine.Revision()
	h.logger.Info("cadence reset applied", "revision", rev)
	if h.hub != nil {
		h.hub.Broadcast(websocket.StateChanged(rev))
	}

	writeJSON(w, http.StatusOK, map[string]any{"refreshed": true, "revision": rev})
}
