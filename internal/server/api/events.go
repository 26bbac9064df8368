package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/gesturify/internal/store"
)

// maxEvents caps the limit query parameter.
const maxEvents = 500

// EventsHandler serves GET /api/events, the most recent command outcomes.
type EventsHandler struct {
	store *store.Store
}

// NewEventsHandler creates a new EventsHandler with the given store.
func NewEventsHandler(s *store.Store) *EventsHandler {
	return &EventsHandler{store: s}
}

type listEventsResponse struct {
	Events []store.CommandEntry `json:"events"`
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(n, maxEvents)
	}

	entries, err := h.store.CommandLog().Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	if entries == nil {
		entries = []store.CommandEntry{}
	}

	writeJSON(w, http.StatusOK, listEventsResponse{Events: entries})
}
