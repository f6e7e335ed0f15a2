package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsaj/bridge/internal/app/pairing"
	"github.com/hsaj/bridge/internal/domain/blocked"
	"github.com/hsaj/bridge/internal/domain/track"
)

func newTestServer(t *testing.T, tracker *pairing.Tracker, items []blocked.Item, blockedEnabled bool) *httptest.Server {
	t.Helper()

	directory := track.NewDirectory([]track.Record{
		{
			RoonTrackID: "demo-track-1",
			Title:       "So What",
			Artist:      "Miles Davis",
			Album:       "Kind of Blue",
			DurationMS:  545000,
			TrackNumber: 1,
		},
		{RoonTrackID: "id with spaces", Title: "Oddly Named"},
	})

	mux := http.NewServeMux()
	NewHandler(tracker, directory, items, blockedEnabled).Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestHealth_ReflectsPairingStatus(t *testing.T) {
	tracker := pairing.NewTracker()
	server := newTestServer(t, tracker, nil, false)

	var body map[string]string
	code := getJSON(t, server.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "disconnected", body["roon"])

	tracker.Set(pairing.StatusConnected)
	code = getJSON(t, server.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "connected", body["roon"])

	tracker.Set(pairing.StatusDisconnected)
	code = getJSON(t, server.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "disconnected", body["roon"])
}

func TestTrackLookup_Found(t *testing.T) {
	server := newTestServer(t, pairing.NewTracker(), nil, false)

	var record track.Record
	code := getJSON(t, server.URL+"/track/demo-track-1", &record)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, track.Record{
		RoonTrackID: "demo-track-1",
		Title:       "So What",
		Artist:      "Miles Davis",
		Album:       "Kind of Blue",
		DurationMS:  545000,
		TrackNumber: 1,
	}, record)
}

func TestTrackLookup_NotFound(t *testing.T) {
	server := newTestServer(t, pairing.NewTracker(), nil, false)

	var body map[string]string
	code := getJSON(t, server.URL+"/track/unknown-id", &body)

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Track not found", body["message"])
	assert.Equal(t, "unknown-id", body["roon_track_id"])
}

func TestTrackLookup_PercentDecoding(t *testing.T) {
	server := newTestServer(t, pairing.NewTracker(), nil, false)

	var record track.Record
	code := getJSON(t, server.URL+"/track/id%20with%20spaces", &record)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Oddly Named", record.Title)

	// The decoded id is echoed verbatim on a miss.
	var body map[string]string
	code = getJSON(t, server.URL+"/track/no%2Fsuch%20id", &body)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "no/such id", body["roon_track_id"])
}

func TestBlocked_FlagGating(t *testing.T) {
	items := []blocked.Item{
		{Type: "artist", ID: "artist-9", Label: "Blocked Artist"},
		{Type: "track", ID: "track-3"},
	}

	t.Run("disabled returns 501 before any data access", func(t *testing.T) {
		server := newTestServer(t, pairing.NewTracker(), items, false)

		var body map[string]string
		code := getJSON(t, server.URL+"/blocked", &body)
		assert.Equal(t, http.StatusNotImplemented, code)
		assert.Equal(t, "Blocked endpoint is not implemented in this build", body["message"])
	})

	t.Run("enabled returns the configured list", func(t *testing.T) {
		server := newTestServer(t, pairing.NewTracker(), items, true)

		var got []blocked.Item
		code := getJSON(t, server.URL+"/blocked", &got)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, items, got)
	})

	t.Run("enabled with no items returns an empty array", func(t *testing.T) {
		server := newTestServer(t, pairing.NewTracker(), nil, true)

		var got []blocked.Item
		code := getJSON(t, server.URL+"/blocked", &got)
		assert.Equal(t, http.StatusOK, code)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestUnknownRoute(t *testing.T) {
	server := newTestServer(t, pairing.NewTracker(), nil, false)

	for _, path := range []string{"/", "/nope", "/track", "/health/extra"} {
		var body map[string]string
		code := getJSON(t, server.URL+path, &body)
		assert.Equal(t, http.StatusNotFound, code, "path %s", path)
		assert.Equal(t, "Not Found", body["message"])
	}
}
