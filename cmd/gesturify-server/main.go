package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayusman/gesturify/internal/config"
	"github.com/ayusman/gesturify/internal/plugin"
	"github.com/ayusman/gesturify/internal/server"
	"github.com/ayusman/gesturify/internal/store"
)

func main() {
	fmt.Println("Gesturify - Command Server")

	cfg, err := config.Load("gesturify-server", os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	added, err := st.Bindings().Seed(store.DefaultBindings())
	if err != nil {
		log.Fatalf("Failed to seed bindings: %v", err)
	}
	if added > 0 {
		log.Printf("Installed %d default bindings", added)
	}

	plugins := plugin.NewManager(cfg.PluginDir)
	if err := plugins.Discover(); err != nil {
		log.Fatalf("Failed to discover plugins: %v", err)
	}
	for _, p := range plugins.List() {
		log.Printf("Loaded plugin %s %s", p.Manifest.Name, p.Manifest.Version)
	}
	if _, err := plugins.Get(store.DefaultPlugin); err != nil {
		log.Printf("Warning: %v (default bindings will fail until it is installed in %s)", err, plugins.PluginDir())
	}

	webDir := cfg.WebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Plugins:   plugins,
		Runner:    plugin.NewExecutor(cfg.PluginTimeout),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Printf("Starting server on %s\n", cfg.ListenAddr)
		return srv.ListenAndServe(cfg.ListenAddr)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}
