package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsaj/bridge/internal/app/broadcast"
	"github.com/hsaj/bridge/internal/app/transport"
)

func newTestEndpoint(t *testing.T) (*broadcast.Hub, string) {
	t.Helper()

	hub := broadcast.NewHub()
	server := httptest.NewServer(NewHandler(hub))
	t.Cleanup(server.Close)
	t.Cleanup(hub.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) transport.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env transport.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func waitForCount(t *testing.T, hub *broadcast.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != want {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber count never reached %d (now %d)", want, hub.Count())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSubscribeAndReceive(t *testing.T) {
	hub, url := newTestEndpoint(t)

	conns := []*websocket.Conn{dial(t, url), dial(t, url), dial(t, url)}
	waitForCount(t, hub, 3)

	hub.Broadcast(transport.Event{
		Event:     transport.EventTrackStart,
		TrackID:   "track-1",
		Title:     "Song",
		Timestamp: "2026-08-25T12:00:00Z",
		Source:    "test",
	})

	for _, conn := range conns {
		env := readEnvelope(t, conn)
		assert.Equal(t, transport.EnvelopeType, env.Type)
		assert.Equal(t, transport.EventTrackStart, env.Event.Event)
		assert.Equal(t, "track-1", env.Event.TrackID)
		assert.Equal(t, "Song", env.Event.Title)
	}
}

func TestNoReplayOnConnect(t *testing.T) {
	hub, url := newTestEndpoint(t)

	hub.Broadcast(transport.Event{Event: transport.EventTrackStart, TrackID: "before"})

	conn := dial(t, url)
	waitForCount(t, hub, 1)

	hub.Broadcast(transport.Event{Event: transport.EventTrackStart, TrackID: "after"})

	env := readEnvelope(t, conn)
	assert.Equal(t, "after", env.Event.TrackID, "a new subscriber must only see events emitted after it connected")
}

func TestDisconnectedSubscriberPruned(t *testing.T) {
	hub, url := newTestEndpoint(t)

	stay := dial(t, url)
	leave := dial(t, url)
	waitForCount(t, hub, 2)

	leave.Close()
	waitForCount(t, hub, 1)

	hub.Broadcast(transport.Event{Event: transport.EventTrackStart, TrackID: "track-1"})

	env := readEnvelope(t, stay)
	assert.Equal(t, "track-1", env.Event.TrackID)
}

func TestOrderingPerSubscriber(t *testing.T) {
	hub, url := newTestEndpoint(t)

	conn := dial(t, url)
	waitForCount(t, hub, 1)

	ids := []string{"track-1", "track-2", "track-3", "track-4"}
	for _, id := range ids {
		hub.Broadcast(transport.Event{Event: transport.EventTrackStart, TrackID: id})
	}

	for _, want := range ids {
		env := readEnvelope(t, conn)
		assert.Equal(t, want, env.Event.TrackID)
	}
}

func TestNonGetRejected(t *testing.T) {
	_, url := newTestEndpoint(t)

	httpURL := "http" + strings.TrimPrefix(url, "ws")
	resp, err := http.Post(httpURL, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
