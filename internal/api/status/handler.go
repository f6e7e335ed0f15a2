// Package status provides the synchronous HTTP status surface of the
// bridge: health, track lookup, and the blocked-items listing.
package status

import (
	"encoding/json"
	"net/http"

	zlog "github.com/rs/zerolog/log"

	"github.com/hsaj/bridge/internal/app/pairing"
	"github.com/hsaj/bridge/internal/domain/blocked"
	"github.com/hsaj/bridge/internal/domain/track"
)

// Handler serves the request/response endpoints. It only reads: pairing
// status from the tracker, metadata from the directory, and the static
// blocked list. It never touches the now-playing state machine.
type Handler struct {
	tracker        *pairing.Tracker
	directory      *track.Directory
	blockedItems   []blocked.Item
	blockedEnabled bool
}

// NewHandler creates the status handler.
func NewHandler(tracker *pairing.Tracker, directory *track.Directory, items []blocked.Item, blockedEnabled bool) *Handler {
	return &Handler{
		tracker:        tracker,
		directory:      directory,
		blockedItems:   items,
		blockedEnabled: blockedEnabled,
	}
}

// Register mounts the status endpoints and the catch-all 404 on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /track/{id}", h.trackLookup)
	mux.HandleFunc("GET /blocked", h.blockedList)
	mux.HandleFunc("/", h.notFound)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"roon":   h.tracker.Get().String(),
	})
}

func (h *Handler) trackLookup(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	record, ok := h.directory.Lookup(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"message":       "Track not found",
			"roon_track_id": id,
		})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) blockedList(w http.ResponseWriter, r *http.Request) {
	// Feature flag comes first: a disabled endpoint never reads data.
	if !h.blockedEnabled {
		writeJSON(w, http.StatusNotImplemented, map[string]string{
			"message": "Blocked endpoint is not implemented in this build",
		})
		return
	}

	items := h.blockedItems
	if items == nil {
		items = []blocked.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zlog.Warn().Err(err).Msg("Failed to write response body")
	}
}
