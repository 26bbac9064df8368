// Package app runs the recognition loop: camera frames go through the hand
// tracker, each hand is classified, and per-hand debouncers decide which
// gestures become events.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/gesturify/internal/capture"
	"github.com/ayusman/gesturify/internal/detector"
	"github.com/ayusman/gesturify/internal/gesture"
)

// EventSink receives debounced gesture events. Publish must not block the
// frame loop.
type EventSink interface {
	Publish(ev gesture.Event)
}

// Config holds configuration options for the application.
type Config struct {
	CameraID int
	FPS      int
	Cooldown time.Duration

	// Camera and Detector default to the device camera and the MediaPipe
	// tracker (falling back to a mock when MediaPipe is unavailable).
	Camera   capture.Camera
	Detector detector.Detector
	// Tracking configures the MediaPipe tracker; zero uses detector.DefaultConfig.
	Tracking detector.Config

	// Clock drives the debouncers; nil uses the system clock.
	Clock gesture.Clock
	Sink  EventSink
}

// App orchestrates frame capture, classification and event routing.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	clock    gesture.Clock
	sink     EventSink

	mu               sync.RWMutex
	debouncers       map[detector.Handedness]*gesture.Debouncer
	frameObservers   []func(FrameResult)
	gestureObservers []func(gesture.Event)
	enabled          bool
	stopCh           chan struct{}
	doneCh           chan struct{}
}

// New creates an App. Detection starts disabled.
func New(config Config) *App {
	if config.FPS <= 0 {
		config.FPS = capture.DefaultFPS
	}
	if config.Tracking == (detector.Config{}) {
		config.Tracking = detector.DefaultConfig()
	}
	if config.Clock == nil {
		config.Clock = gesture.SystemClock{}
	}

	a := &App{
		config:     config,
		camera:     config.Camera,
		detector:   config.Detector,
		clock:      config.Clock,
		sink:       config.Sink,
		debouncers: make(map[detector.Handedness]*gesture.Debouncer),
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(config.CameraID, config.FPS)
	}

	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(config.Tracking); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	return a
}

// OnFrame registers an observer for every processed frame.
func (a *App) OnFrame(fn func(FrameResult)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frameObservers = append(a.frameObservers, fn)
}

// OnGesture registers an observer for every emitted gesture event.
func (a *App) OnGesture(fn func(gesture.Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gestureObservers = append(a.gestureObservers, fn)
}

// SetEnabled enables or disables gesture detection. Disabling forgets any
// held gestures so they are reported again once detection resumes.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.enabled && !enabled {
		for _, d := range a.debouncers {
			d.Reset()
		}
	}
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Start opens the camera and begins the frame loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.config.FPS)

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.run(a.stopCh, a.doneCh)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the frame loop and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if err := a.detector.Close(); err != nil {
		log.Printf("Error closing detector: %v", err)
	}

	a.mu.Lock()
	for _, d := range a.debouncers {
		d.Reset()
	}
	a.mu.Unlock()

	log.Println("Detection pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	return a.detector
}

// debouncer returns the debouncer for one hand, creating it on first use.
func (a *App) debouncer(hand detector.Handedness) *gesture.Debouncer {
	a.mu.Lock()
	defer a.mu.Unlock()

	d, ok := a.debouncers[hand]
	if !ok {
		d = gesture.NewDebouncer(a.config.Cooldown, a.clock)
		a.debouncers[hand] = d
	}
	return d
}
