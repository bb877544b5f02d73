package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rowanvale/questlog/internal/engine"
	"github.com/rowanvale/questlog/internal/handler"
	"github.com/rowanvale/questlog/internal/middleware"
	ws "github.com/rowanvale/questlog/internal/websocket"
)

// Server wires the engine to its HTTP and WebSocket boundary. Single-user
// app: there is no auth layer, every route is open on the bound address.
type Server struct {
	hub       *ws.Hub
	questH    *handler.QuestHandler
	purchaseH *handler.PurchaseHandler
	statsH    *handler.StatsHandler
	stateH    *handler.StateHandler
	wsH       *ws.Handler
	logger    *slog.Logger
}

func New(eng *engine.Engine, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	return &Server{
		hub:       hub,
		questH:    handler.NewQuestHandler(eng, hub, logger.With("component", "quest")),
		purchaseH: handler.NewPurchaseHandler(eng, hub, logger.With("component", "purchase")),
		statsH:    handler.NewStatsHandler(eng),
		stateH:    handler.NewStateHandler(eng, hub, logger.With("component", "state")),
		wsH:       ws.NewHandler(hub, logger.With("component", "websocket")),
		logger:    logger,
	}
}

// Hub exposes the broadcast hub so background tasks (resets, inbound
// sync) can notify connected clients.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Snapshot + refresh check
	mux.HandleFunc("GET /api/state", s.stateH.Get)
	mux.HandleFunc("POST /api/state/refresh-check", s.stateH.RefreshCheck)

	// Quest API routes, per cadence
	mux.HandleFunc("POST /api/quests/{type}", s.questH.Create)
	mux.HandleFunc("GET /api/quests/{type}", s.questH.List)
	mux.HandleFunc("GET /api/quests/{type}/{id}", s.questH.Get)
	mux.HandleFunc("PUT /api/quests/{type}/{id}", s.questH.Update)
	mux.HandleFunc("DELETE /api/quests/{type}/{id}", s.questH.Delete)
	mux.HandleFunc("POST /api/quests/{type}/{id}/progress", s.questH.AddProgress)
	mux.HandleFunc("POST /api/quests/{type}/{id}/complete", s.questH.Complete)

	// Purchase API routes
	mux.HandleFunc("POST /api/purchases", s.purchaseH.Create)
	mux.HandleFunc("GET /api/purchases", s.purchaseH.List)
	mux.HandleFunc("DELETE /api/purchases/{id}", s.purchaseH.Delete)

	// Stats API routes
	mux.HandleFunc("GET /api/stats", s.statsH.Summary)
	mux.HandleFunc("GET /api/stats/calendar", s.statsH.Calendar)

	// WebSocket
	mux.Handle("GET /ws", s.wsH)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
