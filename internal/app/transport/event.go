// Package transport provides the canonical transport events and the state
// machine that derives them from raw control-plane notifications.
package transport

import "time"

// Event kinds.
const (
	EventTrackStart = "track_start"
	EventTrackStop  = "track_stop"
)

// EnvelopeType is the type tag on every broadcast frame.
const EnvelopeType = "transport_event"

// Track is a raw "this track is now playing" notification as delivered by
// the control-plane client (or the demo feed). Descriptive fields are
// optional and pass through to the emitted event unchanged.
type Track struct {
	TrackID     string `json:"track_id"`
	Title       string `json:"title,omitempty"`
	Album       string `json:"album,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Quality     string `json:"quality,omitempty"`
	DurationMS  int    `json:"duration_ms,omitempty"`
	TrackNumber int    `json:"track_number,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// Event is the canonical wire-level transport event.
type Event struct {
	Event       string `json:"event"`
	TrackID     string `json:"track_id"`
	Title       string `json:"title,omitempty"`
	Album       string `json:"album,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Quality     string `json:"quality,omitempty"`
	DurationMS  int    `json:"duration_ms,omitempty"`
	TrackNumber int    `json:"track_number,omitempty"`
	Timestamp   string `json:"timestamp"`
	Source      string `json:"source"`
}

// Envelope wraps an event for broadcast.
type Envelope struct {
	Type  string `json:"type"`
	Event Event  `json:"event"`
}

// NewEnvelope wraps the event with the transport_event type tag.
func NewEnvelope(ev Event) Envelope {
	return Envelope{Type: EnvelopeType, Event: ev}
}

// timestampOr returns the upstream timestamp when present, otherwise the
// current time in RFC3339 UTC.
func timestampOr(upstream string, now func() time.Time) string {
	if upstream != "" {
		return upstream
	}
	return now().UTC().Format(time.RFC3339)
}
