package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/gesturify/internal/gesture"
	"github.com/ayusman/gesturify/internal/store"
)

// BindingHandler serves /api/bindings and /api/bindings/{gesture}.
type BindingHandler struct {
	store *store.Store
}

// NewBindingHandler creates a new BindingHandler with the given store.
func NewBindingHandler(s *store.Store) *BindingHandler {
	return &BindingHandler{store: s}
}

// ServeHTTP routes collection and item requests. The item path segment is
// the gesture label, e.g. /api/bindings/Thumbs%20Up.
func (h *BindingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/bindings")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	label := gesture.Label(path)
	if !label.Valid() {
		writeError(w, http.StatusNotFound, "Unknown gesture")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, label)
	case http.MethodPut:
		h.put(w, r, label)
	case http.MethodDelete:
		h.delete(w, r, label)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type bindingRequest struct {
	Key     string `json:"key"`
	Plugin  string `json:"plugin"`
	Action  string `json:"action"`
	Enabled *bool  `json:"enabled"`
}

type bindingResponse struct {
	ID        string        `json:"id"`
	Gesture   gesture.Label `json:"gesture"`
	Plugin    string        `json:"plugin"`
	Action    string        `json:"action"`
	Key       string        `json:"key"`
	Enabled   bool          `json:"enabled"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

type listBindingsResponse struct {
	Bindings []bindingResponse `json:"bindings"`
}

func toBindingResponse(b *store.Binding) bindingResponse {
	return bindingResponse{
		ID:        b.ID,
		Gesture:   b.Gesture,
		Plugin:    b.PluginName,
		Action:    b.ActionName,
		Key:       b.Key,
		Enabled:   b.Enabled,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
		UpdatedAt: b.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *BindingHandler) list(w http.ResponseWriter, r *http.Request) {
	bindings, err := h.store.Bindings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bindings")
		return
	}

	response := listBindingsResponse{
		Bindings: make([]bindingResponse, 0, len(bindings)),
	}
	for _, b := range bindings {
		response.Bindings = append(response.Bindings, toBindingResponse(b))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *BindingHandler) get(w http.ResponseWriter, r *http.Request, label gesture.Label) {
	binding, err := h.store.Bindings().GetByGesture(label)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get binding")
		return
	}

	writeJSON(w, http.StatusOK, toBindingResponse(binding))
}

// put updates the gesture's binding, creating it when absent. Omitted fields
// keep their current value; a new binding defaults to the media-keys press
// action and starts enabled.
func (h *BindingHandler) put(w http.ResponseWriter, r *http.Request, label gesture.Label) {
	var req bindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	repo := h.store.Bindings()
	binding, err := repo.GetByGesture(label)
	created := false
	switch {
	case errors.Is(err, store.ErrNotFound):
		if req.Key == "" {
			writeError(w, http.StatusBadRequest, "Key is required")
			return
		}
		binding = &store.Binding{
			Gesture:    label,
			PluginName: store.DefaultPlugin,
			ActionName: store.DefaultAction,
			Enabled:    true,
		}
		created = true
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to get binding")
		return
	}

	if req.Key != "" {
		binding.Key = req.Key
	}
	if req.Plugin != "" {
		binding.PluginName = req.Plugin
	}
	if req.Action != "" {
		binding.ActionName = req.Action
	}
	if req.Enabled != nil {
		binding.Enabled = *req.Enabled
	}

	if created {
		err = repo.Create(binding)
	} else {
		err = repo.Update(binding)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save binding")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toBindingResponse(binding))
}

func (h *BindingHandler) delete(w http.ResponseWriter, r *http.Request, label gesture.Label) {
	binding, err := h.store.Bindings().GetByGesture(label)
	if err == nil {
		err = h.store.Bindings().Delete(binding.ID)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete binding")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
