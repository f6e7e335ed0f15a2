// Package pairing tracks the pairing state of the Roon control-plane client.
package pairing

import (
	"sync"

	zlog "github.com/rs/zerolog/log"
)

// Status represents the control-plane pairing state.
type Status int

const (
	StatusDisconnected Status = iota // No paired core
	StatusConnected                  // Paired and reachable
)

// String returns the wire representation of the status.
func (s Status) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Source is the abstract pairing lifecycle of the vendor SDK client.
// The tracker never sees concrete SDK types; the bootstrap wires the real
// client (or a test double) through this interface.
type Source interface {
	OnPaired(func())
	OnUnpaired(func())
}

// Tracker holds the process-wide pairing status. All writes funnel through
// Set, serialized by a mutex so callbacks from any goroutine are safe.
type Tracker struct {
	mu     sync.RWMutex
	status Status
}

// NewTracker creates a tracker in the disconnected state.
func NewTracker() *Tracker {
	return &Tracker{status: StatusDisconnected}
}

// Set overwrites the stored status and reports the transition.
func (t *Tracker) Set(status Status) {
	t.mu.Lock()
	t.status = status
	t.mu.Unlock()

	zlog.Info().Str("roon", status.String()).Msg("Pairing status changed")
}

// Get returns the current status.
func (t *Tracker) Get() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Bind subscribes the tracker to a pairing source.
func (t *Tracker) Bind(src Source) {
	src.OnPaired(func() { t.Set(StatusConnected) })
	src.OnUnpaired(func() { t.Set(StatusDisconnected) })
}
