// Package ws exposes the transport-event subscription endpoint over
// WebSocket.
package ws

import (
	"net/http"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	zlog "github.com/rs/zerolog/log"

	"github.com/hsaj/bridge/internal/app/broadcast"
)

// sendBufferSize bounds the per-subscriber outbound queue. A subscriber
// that falls this many frames behind is disconnected rather than allowed
// to grow memory without limit.
const sendBufferSize = 64

var (
	errBufferFull = errors.New("subscriber send buffer full")
	errClosed     = errors.New("subscriber closed")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Subscribers are local-network consumers (history logger, dev tools);
	// the bridge does no origin policing.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests to WebSocket connections and registers
// them with the hub. Connected clients receive only events emitted after
// they subscribed; there is no replay.
type Handler struct {
	hub *broadcast.Hub
}

// NewHandler creates a subscription handler backed by hub.
func NewHandler(hub *broadcast.Hub) *Handler {
	return &Handler{hub: hub}
}

// client adapts one WebSocket connection to broadcast.Subscriber. Frames
// are queued on a buffered channel and written by a single pump goroutine
// so per-subscriber delivery order matches emission order.
type client struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Deliver queues a frame without blocking. A full buffer means the
// subscriber is too slow; the hub drops it on the returned error.
func (c *client) Deliver(frame []byte) error {
	select {
	case <-c.done:
		return errClosed
	case c.send <- frame:
		return nil
	default:
		return errBufferFull
	}
}

// Close stops the write pump. Safe to call from both the hub and the
// read loop; frames still queued are discarded.
func (c *client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// writePump moves queued frames onto the wire until the client is closed
// or a write fails.
func (c *client) writePump() {
	defer c.conn.Close()
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}
}

// ServeHTTP handles GET <ws path> subscription requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zlog.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("WebSocket upgrade failed")
		return
	}

	c := newClient(conn)
	id := h.hub.Subscribe(c)
	go c.writePump()

	// Drain incoming frames (ping/pong, close) until the peer goes away,
	// then remove the subscriber.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.hub.Unsubscribe(id)
}
