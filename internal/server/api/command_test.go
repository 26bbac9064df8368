package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ayusman/gesturify/internal/gesture"
	"github.com/ayusman/gesturify/internal/plugin"
	"github.com/ayusman/gesturify/internal/store"
	"github.com/ayusman/gesturify/internal/transport"
)

func postCommand(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, transport.CommandResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/command", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	var resp transport.CommandResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return rec, resp
}

func TestCommandHandler_Success(t *testing.T) {
	s := seededStore(t)
	runner := &fakeRunner{}
	h := NewCommandHandler(s, mediaKeys(), runner)

	rec, resp := postCommand(t, h, `{"gesture":"Point"}`)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if resp.Status != transport.StatusSuccess || resp.CommandExecuted != "nexttrack" {
		t.Errorf("unexpected response %+v", resp)
	}

	requests := runner.Requests()
	if len(requests) != 1 {
		t.Fatalf("expected 1 plugin request, got %d", len(requests))
	}
	if requests[0].Action != store.DefaultAction || requests[0].Gesture != "Point" {
		t.Errorf("unexpected plugin request %+v", requests[0])
	}
	var params plugin.KeyParams
	if err := json.Unmarshal(requests[0].Params, &params); err != nil {
		t.Fatalf("failed to decode params: %v", err)
	}
	if params.Key != "nexttrack" {
		t.Errorf("expected key nexttrack, got %q", params.Key)
	}

	entries, err := s.CommandLog().Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Status != transport.StatusSuccess || entries[0].Command != "nexttrack" {
		t.Errorf("unexpected command log %+v", entries)
	}
}

func TestCommandHandler_DefaultMappings(t *testing.T) {
	s := seededStore(t)
	h := NewCommandHandler(s, mediaKeys(), &fakeRunner{})

	want := map[gesture.Label]string{
		gesture.ThumbsUp:   "space",
		gesture.OpenPalm:   "space",
		gesture.Point:      "nexttrack",
		gesture.TwoFingers: "prevtrack",
		gesture.Shaka:      "volumeup",
		gesture.PointDown:  "volumedown",
		gesture.Fist:       "stop",
	}
	for label, key := range want {
		body, _ := json.Marshal(transport.CommandRequest{Gesture: label})
		_, resp := postCommand(t, h, string(body))
		if resp.CommandExecuted != key {
			t.Errorf("%s: expected %q, got %q", label, key, resp.CommandExecuted)
		}
	}
}

func TestCommandHandler_Ignored(t *testing.T) {
	s := seededStore(t)
	runner := &fakeRunner{}
	h := NewCommandHandler(s, mediaKeys(), runner)

	fist, err := s.Bindings().GetByGesture(gesture.Fist)
	if err != nil {
		t.Fatalf("GetByGesture() error = %v", err)
	}
	fist.Enabled = false
	if err := s.Bindings().Update(fist); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	for _, body := range []string{`{"gesture":"Wave"}`, `{"gesture":"Fist"}`, `{}`} {
		rec, resp := postCommand(t, h, body)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected status %d, got %d", body, http.StatusOK, rec.Code)
		}
		if resp.Status != transport.StatusIgnored || resp.Message != NoActionMessage {
			t.Errorf("%s: unexpected response %+v", body, resp)
		}
	}

	if len(runner.Requests()) != 0 {
		t.Error("expected no plugin to run for ignored gestures")
	}
}

func TestCommandHandler_InvalidJSON(t *testing.T) {
	s := seededStore(t)
	h := NewCommandHandler(s, mediaKeys(), &fakeRunner{})

	rec, resp := postCommand(t, h, `not json`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if resp.Status != transport.StatusError {
		t.Errorf("expected error status, got %+v", resp)
	}
}

func TestCommandHandler_Failures(t *testing.T) {
	tests := []struct {
		name    string
		plugins *fakePlugins
		runner  *fakeRunner
		errMsg  string
	}{
		{
			name:    "plugin missing",
			plugins: &fakePlugins{},
			runner:  &fakeRunner{},
			errMsg:  "plugin not found",
		},
		{
			name:    "plugin crashes",
			plugins: mediaKeys(),
			runner:  &fakeRunner{err: errCrashed},
			errMsg:  "plugin crashed",
		},
		{
			name:    "plugin reports failure",
			plugins: mediaKeys(),
			runner:  &fakeRunner{resp: &plugin.Response{Success: false, Error: "xdotool not installed"}},
			errMsg:  "xdotool not installed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seededStore(t)
			h := NewCommandHandler(s, tt.plugins, tt.runner)

			rec, resp := postCommand(t, h, `{"gesture":"Shaka"}`)

			if rec.Code != http.StatusInternalServerError {
				t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
			}
			if resp.Status != transport.StatusError || !strings.Contains(resp.Message, tt.errMsg) {
				t.Errorf("unexpected response %+v", resp)
			}

			entries, _ := s.CommandLog().Recent(1)
			if len(entries) != 1 || entries[0].Status != transport.StatusError || entries[0].Gesture != gesture.Shaka {
				t.Errorf("expected the failure to be logged, got %+v", entries)
			}
		})
	}
}

func TestCommandHandler_MethodNotAllowed(t *testing.T) {
	h := NewCommandHandler(seededStore(t), mediaKeys(), &fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/command", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
