package websocket

import (
	"context"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

const (
	writeTimeout   = 10 * time.Second
	sendBufferSize = 16
)

// Client is a single WebSocket connection registered with a Hub. The
// server only pushes events; anything the client sends is read and
// discarded to keep the connection's control frames flowing.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger
}

// NewClient wraps an accepted connection.
func NewClient(hub *Hub, conn *websocket.Conn, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: logger,
	}
}

// Run services the connection until the context is cancelled or the peer
// goes away. It blocks; the caller owns the goroutine.
func (c *Client) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.hub.Register(c)
	defer c.hub.Unregister(c)

	go c.readLoop(ctx, cancel)
	c.writeLoop(ctx)
}

func (c *Client) readLoop(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	for {
		// Inbound payloads are ignored; reading keeps ping/pong alive
		// and detects closure.
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

func (c *Client) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.conn.Close(websocket.StatusNormalClosure, "server shutting down")
			return
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				c.logger.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}
