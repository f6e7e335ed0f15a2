// Package demo provides a synthetic now-playing producer for running the
// bridge without a paired control plane.
package demo

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/hsaj/bridge/internal/app/transport"
	"github.com/hsaj/bridge/internal/domain/track"
)

// Notifier is the producer-facing surface of the state machine. The demo
// feed and the real control-plane client are interchangeable behind it.
type Notifier interface {
	NotifyPlaying(transport.Track)
}

// Feed cycles through the catalog on a fixed interval, pushing each track
// into the notifier as if the control plane had reported it.
type Feed struct {
	notifier Notifier
	tracks   []transport.Track
	interval time.Duration
}

// NewFeed builds a feed over the given catalog records.
func NewFeed(notifier Notifier, records []track.Record, interval time.Duration) *Feed {
	tracks := make([]transport.Track, 0, len(records))
	for _, r := range records {
		tracks = append(tracks, transport.Track{
			TrackID:     r.RoonTrackID,
			Title:       r.Title,
			Album:       r.Album,
			Artist:      r.Artist,
			Quality:     "lossless",
			DurationMS:  r.DurationMS,
			TrackNumber: r.TrackNumber,
		})
	}
	return &Feed{notifier: notifier, tracks: tracks, interval: interval}
}

// Run emits one track per tick until the context is cancelled. With an
// empty catalog it returns immediately.
func (f *Feed) Run(ctx context.Context) {
	if len(f.tracks) == 0 {
		zlog.Warn().Msg("Demo feed enabled but catalog is empty")
		return
	}

	zlog.Info().Dur("interval", f.interval).Int("tracks", len(f.tracks)).Msg("Demo feed started")

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	next := 0
	for {
		select {
		case <-ctx.Done():
			zlog.Info().Msg("Demo feed stopped")
			return
		case <-ticker.C:
			f.notifier.NotifyPlaying(f.tracks[next])
			next = (next + 1) % len(f.tracks)
		}
	}
}
