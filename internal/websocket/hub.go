package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event is a state-change notification broadcast to all connected UI
// clients. Clients reload their views on receipt; the event carries no
// state itself, only what changed and the engine revision to fetch.
type Event struct {
	Type     string `json:"type"`
	Entity   string `json:"entity"`
	Action   string `json:"action"`
	Revision uint64 `json:"revision,omitempty"`
	ID       string `json:"id,omitempty"`
}

// NewEvent creates an Event with the Type field derived from entity and
// action.
func NewEvent(entity, action string, revision uint64, id string) Event {
	return Event{
		Type:     entity + "_" + action,
		Entity:   entity,
		Action:   action,
		Revision: revision,
		ID:       id,
	}
}

// StateChanged is the event sent after a wholesale state replacement
// (inbound remote snapshot or corrective reset), telling clients to
// reload everything.
func StateChanged(revision uint64) Event {
	return NewEvent("state", "changed", revision, "")
}

// Hub maintains the set of active WebSocket clients and broadcasts
// events.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends an event to every connected client. Clients whose send
// buffer is full are skipped rather than blocking the caller.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("client send buffer full, dropping event", "type", ev.Type)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
