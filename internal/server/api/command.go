package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/ayusman/gesturify/internal/gesture"
	"github.com/ayusman/gesturify/internal/plugin"
	"github.com/ayusman/gesturify/internal/store"
	"github.com/ayusman/gesturify/internal/transport"
)

// NoActionMessage is returned for gestures without an enabled binding.
const NoActionMessage = "No action for this gesture"

// PluginSource looks up plugins by name.
type PluginSource interface {
	Resolve(name, action string) (*plugin.Plugin, error)
	List() []*plugin.Plugin
}

// PluginRunner executes a plugin request.
type PluginRunner interface {
	Execute(ctx context.Context, p *plugin.Plugin, req *plugin.Request) (*plugin.Response, error)
}

// CommandHandler serves POST /command: it presses the key bound to the
// posted gesture through the binding's plugin.
type CommandHandler struct {
	store   *store.Store
	plugins PluginSource
	runner  PluginRunner
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(s *store.Store, plugins PluginSource, runner PluginRunner) *CommandHandler {
	return &CommandHandler{store: s, plugins: plugins, runner: runner}
}

func (h *CommandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req transport.CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, http.StatusBadRequest, gesture.None, transport.CommandResponse{
			Status:  transport.StatusError,
			Message: "Invalid JSON",
		})
		return
	}

	log.Printf("Received gesture: %s", req.Gesture)

	key, err := h.execute(r.Context(), req.Gesture)
	switch {
	case errors.Is(err, errNoAction):
		h.respond(w, http.StatusOK, req.Gesture, transport.CommandResponse{
			Status:  transport.StatusIgnored,
			Message: NoActionMessage,
		})
	case err != nil:
		log.Printf("Command for %s failed: %v", req.Gesture, err)
		h.respond(w, http.StatusInternalServerError, req.Gesture, transport.CommandResponse{
			Status:  transport.StatusError,
			Message: err.Error(),
		})
	default:
		log.Printf("Pressed %s for gesture %s", key, req.Gesture)
		h.respond(w, http.StatusOK, req.Gesture, transport.CommandResponse{
			Status:          transport.StatusSuccess,
			CommandExecuted: key,
		})
	}
}

var errNoAction = errors.New("no action")

// execute runs the gesture's binding and returns the key it pressed.
func (h *CommandHandler) execute(ctx context.Context, label gesture.Label) (string, error) {
	binding, err := h.store.Bindings().GetByGesture(label)
	if errors.Is(err, store.ErrNotFound) {
		return "", errNoAction
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up binding: %w", err)
	}
	if !binding.Enabled {
		return "", errNoAction
	}

	p, err := h.plugins.Resolve(binding.PluginName, binding.ActionName)
	if err != nil {
		return "", err
	}

	req, err := plugin.NewKeyRequest(binding.ActionName, string(label), binding.Key)
	if err != nil {
		return "", err
	}

	resp, err := h.runner.Execute(ctx, p, req)
	if err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("%s: %s", p.Manifest.Name, resp.Error)
	}

	return binding.Key, nil
}

// respond writes the command response and records it in the command log.
func (h *CommandHandler) respond(w http.ResponseWriter, status int, label gesture.Label, resp transport.CommandResponse) {
	entry := &store.CommandEntry{
		Gesture: label,
		Status:  resp.Status,
		Command: resp.CommandExecuted,
		Message: resp.Message,
	}
	if err := h.store.CommandLog().Append(entry); err != nil {
		log.Printf("Failed to record command: %v", err)
	}

	writeJSON(w, status, resp)
}
