package websocket

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
)

// Handler upgrades HTTP requests to WebSocket connections and attaches
// them to the hub.
type Handler struct {
	hub    *Hub
	logger *slog.Logger
}

func NewHandler(hub *Hub, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{hub: hub, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Same-origin single-user app; the UI is served from this
		// process.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Warn("websocket accept failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	client := NewClient(h.hub, conn, h.logger)
	client.Run(r.Context())
}
