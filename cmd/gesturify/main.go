package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayusman/gesturify/internal/app"
	"github.com/ayusman/gesturify/internal/config"
	"github.com/ayusman/gesturify/internal/detector"
	"github.com/ayusman/gesturify/internal/gesture"
	"github.com/ayusman/gesturify/internal/server"
	"github.com/ayusman/gesturify/internal/transport"
	"github.com/ayusman/gesturify/internal/tray"
)

func main() {
	fmt.Println("Gesturify - Hand Gesture Recognition")

	cfg, err := config.Load("gesturify", os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hub *server.FrameHub
	if cfg.StatusAddr != "" {
		hub = server.NewFrameHub()
	}

	var icon *tray.Tray
	if cfg.Tray {
		icon = tray.New(true)
	}

	onStatus := func(status string) {
		log.Println(status)
		if hub != nil {
			hub.PublishStatus(status)
		}
		if icon != nil {
			icon.SetStatus(status)
		}
	}

	client := transport.NewClient(cfg.CommandURL, cfg.RequestTimeout)
	dispatcher := transport.NewDispatcher(client, cfg.QueueSize, onStatus)

	tracking := detector.DefaultConfig()
	tracking.MaxHands = cfg.MaxHands
	tracking.MinConfidence = cfg.MinConfidence
	tracking.MinTrackingConf = cfg.MinTracking

	application := app.New(app.Config{
		CameraID: cfg.CameraID,
		FPS:      cfg.FPS,
		Cooldown: cfg.Cooldown,
		Tracking: tracking,
		Sink:     dispatcher,
	})

	if hub != nil {
		application.OnFrame(func(frame app.FrameResult) {
			hub.PublishFrame(frame)
		})
	}
	if icon != nil {
		application.OnGesture(func(ev gesture.Event) {
			icon.SetLastGesture(ev.Gesture)
		})
	}

	application.SetEnabled(true)
	if err := application.Start(); err != nil {
		log.Fatalf("Failed to start detection: %v", err)
	}
	fmt.Printf("Sending gestures to %s\n", client.URL())

	g, gctx := errgroup.WithContext(ctx)

	if hub != nil {
		srv := server.New(server.Config{
			StaticDir: cfg.WebDir(),
			Frames:    hub,
		})

		g.Go(func() error {
			fmt.Printf("Live view on %s\n", cfg.StatusAddr)
			return srv.ListenAndServe(cfg.StatusAddr)
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		application.Stop()
		dispatcher.Close()
		return nil
	})

	if icon != nil {
		icon.OnToggle(func(enabled bool) {
			application.SetEnabled(enabled)
			log.Printf("Gesture recognition enabled: %v", enabled)
		})
		icon.OnOpen(func() {
			if err := openBrowser(liveViewURL(cfg.StatusAddr)); err != nil {
				log.Printf("Failed to open live view: %v", err)
			}
		})
		icon.OnQuit(stop)

		go func() {
			<-gctx.Done()
			icon.Quit()
		}()
		// systray needs the main goroutine.
		icon.Run()
		stop()
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("Gesturify failed: %v", err)
	}

	if n := dispatcher.Dropped(); n > 0 {
		log.Printf("Dropped %d gesture events while the command server was busy", n)
	}
}

func liveViewURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
