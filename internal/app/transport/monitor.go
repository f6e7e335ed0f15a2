package transport

import (
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"
)

// Sink receives every event the monitor emits, in emission order.
type Sink interface {
	Broadcast(Event)
}

// Monitor is the now-playing state machine. It holds at most one active
// play session and collapses the repeated "now playing" signals the
// control plane fires while a track continues into a single track_start.
//
// Two states: idle (no current track) and playing (one current track).
// A different track starting supersedes the previous session without an
// explicit track_stop; only NotifyStopped returns the monitor to idle.
type Monitor struct {
	mu      sync.Mutex
	current string // empty when idle

	sink   Sink
	source string
	now    func() time.Time
}

// NewMonitor creates an idle monitor emitting into sink. The source tag is
// stamped on every event.
func NewMonitor(sink Sink, source string) *Monitor {
	return &Monitor{
		sink:   sink,
		source: source,
		now:    time.Now,
	}
}

// NotifyPlaying processes a raw now-playing notification.
//
// A notification without a track ID is noise from the upstream client and
// is dropped. A notification for the already-active track is dropped so a
// continuing track never produces duplicate track_start events. Anything
// else becomes the new current track and emits track_start with the full
// descriptive payload.
func (m *Monitor) NotifyPlaying(t Track) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.TrackID == "" {
		zlog.Debug().Msg("Ignoring now-playing notification without track_id")
		return
	}
	if t.TrackID == m.current {
		zlog.Debug().Str("track_id", t.TrackID).Msg("Ignoring repeated now-playing notification")
		return
	}

	m.current = t.TrackID

	ev := Event{
		Event:       EventTrackStart,
		TrackID:     t.TrackID,
		Title:       t.Title,
		Album:       t.Album,
		Artist:      t.Artist,
		Quality:     t.Quality,
		DurationMS:  t.DurationMS,
		TrackNumber: t.TrackNumber,
		Timestamp:   timestampOr(t.Timestamp, m.now),
		Source:      m.source,
	}

	zlog.Info().Str("track_id", ev.TrackID).Str("title", ev.Title).Msg("Track started")
	m.sink.Broadcast(ev)
}

// NotifyStopped ends the current play session, emitting one stop event
// with the given reason (track_stop when empty) and no descriptive fields.
// A stop with no active session is dropped.
func (m *Monitor) NotifyStopped(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == "" {
		zlog.Debug().Msg("Ignoring stop notification with no active track")
		return
	}
	if reason == "" {
		reason = EventTrackStop
	}

	ev := Event{
		Event:     reason,
		TrackID:   m.current,
		Timestamp: timestampOr("", m.now),
		Source:    m.source,
	}
	m.current = ""

	zlog.Info().Str("track_id", ev.TrackID).Str("reason", reason).Msg("Track stopped")
	m.sink.Broadcast(ev)
}

// CurrentTrackID returns the active track ID, empty when idle.
func (m *Monitor) CurrentTrackID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
