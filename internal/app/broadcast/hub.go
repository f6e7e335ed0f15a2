// Package broadcast fans transport events out to connected subscribers.
package broadcast

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/hsaj/bridge/internal/app/transport"
)

// Subscriber is one connected downstream consumer. Deliver hands over a
// single serialized frame and must not block; an error means the
// subscriber can no longer keep up (closed connection, full buffer) and
// gets dropped from the hub.
type Subscriber interface {
	Deliver(frame []byte) error
	Close()
}

// Hub maintains the live subscriber set and delivers every broadcast
// frame to all of them. Delivery is best effort: no acknowledgment, no
// replay for late joiners, and a failing subscriber never surfaces an
// error to the producer.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]Subscriber
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]Subscriber)}
}

// Subscribe registers a subscriber and returns its ID.
func (h *Hub) Subscribe(sub Subscriber) string {
	h.mu.Lock()
	id := uuid.New().String()
	h.subscribers[id] = sub
	count := len(h.subscribers)
	h.mu.Unlock()

	zlog.Info().Str("subscriber_id", id).Int("subscribers", count).Msg("Subscriber connected")
	return id
}

// Unsubscribe removes a subscriber. Unknown IDs are a no-op.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	count := len(h.subscribers)
	h.mu.Unlock()

	if ok {
		sub.Close()
		zlog.Info().Str("subscriber_id", id).Int("subscribers", count).Msg("Subscriber disconnected")
	}
}

// Broadcast serializes the event into its wire envelope and delivers it
// to every subscriber. Subscribers whose Deliver fails are dropped;
// nothing propagates back to the caller.
func (h *Hub) Broadcast(ev transport.Event) {
	frame, err := json.Marshal(transport.NewEnvelope(ev))
	if err != nil {
		zlog.Error().Err(err).Str("track_id", ev.TrackID).Msg("Failed to encode transport event")
		return
	}

	h.mu.RLock()
	targets := make(map[string]Subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		targets[id] = sub
	}
	h.mu.RUnlock()

	var failed []string
	for id, sub := range targets {
		if err := sub.Deliver(frame); err != nil {
			zlog.Warn().Err(err).Str("subscriber_id", id).Msg("Dropping subscriber")
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		h.Unsubscribe(id)
	}
}

// Count returns the number of active subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close drops all subscribers and closes their connections.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subscribers
	h.subscribers = make(map[string]Subscriber)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}
