package api

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ayusman/gesturify/internal/plugin"
	"github.com/ayusman/gesturify/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func seededStore(t *testing.T) *store.Store {
	t.Helper()

	s := newTestStore(t)
	if _, err := s.Bindings().Seed(store.DefaultBindings()); err != nil {
		t.Fatalf("failed to seed bindings: %v", err)
	}
	return s
}

// fakePlugins resolves a fixed set of plugins.
type fakePlugins struct {
	plugins map[string]*plugin.Plugin
}

func (f *fakePlugins) Resolve(name, action string) (*plugin.Plugin, error) {
	p, ok := f.plugins[name]
	if !ok {
		return nil, plugin.ErrPluginNotFound
	}
	if !p.Manifest.Supports(action) {
		return nil, plugin.ErrActionNotSupported
	}
	return p, nil
}

func (f *fakePlugins) List() []*plugin.Plugin {
	var out []*plugin.Plugin
	for _, p := range f.plugins {
		out = append(out, p)
	}
	return out
}

func mediaKeys() *fakePlugins {
	return &fakePlugins{plugins: map[string]*plugin.Plugin{
		store.DefaultPlugin: {
			Manifest: plugin.Manifest{
				Name:    store.DefaultPlugin,
				Version: "1.0.0",
				Actions: []string{store.DefaultAction},
			},
		},
	}}
}

// fakeRunner records requests and answers with a fixed response.
type fakeRunner struct {
	mu       sync.Mutex
	requests []*plugin.Request
	resp     *plugin.Response
	err      error
}

func (f *fakeRunner) Execute(ctx context.Context, p *plugin.Plugin, req *plugin.Request) (*plugin.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &plugin.Response{Success: true}, nil
}

func (f *fakeRunner) Requests() []*plugin.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*plugin.Request(nil), f.requests...)
}

var errCrashed = errors.New("plugin crashed")
