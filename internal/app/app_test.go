package app

import (
	"sync"
	"testing"
	"time"

	"github.com/ayusman/gesturify/internal/capture"
	"github.com/ayusman/gesturify/internal/detector"
	"github.com/ayusman/gesturify/internal/gesture"
)

// fixedClock never fires timers; cooldowns expire through their deadlines.
type fixedClock struct{ now time.Time }

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) AfterFunc(time.Duration, func()) gesture.Timer { return noopTimer{} }

type recordingSink struct {
	mu     sync.Mutex
	events []gesture.Event
	ch     chan gesture.Event
}

func (s *recordingSink) Publish(ev gesture.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	if s.ch != nil {
		select {
		case s.ch <- ev:
		default:
		}
	}
}

func (s *recordingSink) Events() []gesture.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gesture.Event(nil), s.events...)
}

func newTestApp(t *testing.T) (*App, *recordingSink, *detector.MockDetector) {
	t.Helper()

	sink := &recordingSink{}
	mock := detector.NewMockDetector()
	a := New(Config{
		Cooldown: time.Second,
		Camera:   capture.NewMockCamera(nil, false),
		Detector: mock,
		Clock:    &fixedClock{now: time.Unix(1700000000, 0)},
		Sink:     sink,
	})
	return a, sink, mock
}

func unrecognizedHand() detector.HandLandmarks {
	h := detector.FistLandmarks()
	h.Points[detector.MiddleTip].Y = 0.30
	return h
}

func TestProcessHands_NoHands(t *testing.T) {
	a, sink, _ := newTestApp(t)

	result := a.ProcessHands(nil, time.Unix(0, 0))

	if result.Status != NoHandDetected {
		t.Errorf("expected status %q, got %q", NoHandDetected, result.Status)
	}
	if len(result.Hands) != 0 {
		t.Errorf("expected no hand results, got %d", len(result.Hands))
	}
	if len(sink.Events()) != 0 {
		t.Error("expected no events")
	}
}

func TestProcessHands_DebouncesEvents(t *testing.T) {
	a, sink, _ := newTestApp(t)
	start := time.Unix(1700000000, 0)
	hands := []detector.HandLandmarks{detector.PointLandmarks()}

	result := a.ProcessHands(hands, start)
	if len(result.Hands) != 1 {
		t.Fatalf("expected 1 hand result, got %d", len(result.Hands))
	}
	hr := result.Hands[0]
	if hr.Gesture != gesture.Point || hr.Display != "Point" || hr.Handedness != detector.Right {
		t.Errorf("unexpected hand result %+v", hr)
	}
	if result.Status != "Point" {
		t.Errorf("expected status Point, got %q", result.Status)
	}

	// Display keeps reporting the label while the event is suppressed.
	result = a.ProcessHands(hands, start.Add(500*time.Millisecond))
	if result.Hands[0].Gesture != gesture.Point {
		t.Errorf("expected raw label Point during cooldown, got %q", result.Hands[0].Gesture)
	}

	a.ProcessHands(hands, start.Add(1001*time.Millisecond))

	events := sink.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for _, ev := range events {
		if ev.Gesture != gesture.Point || ev.Handedness != detector.Right {
			t.Errorf("unexpected event %+v", ev)
		}
	}
	if !events[1].At.Equal(start.Add(1001 * time.Millisecond)) {
		t.Errorf("unexpected second event time %v", events[1].At)
	}
}

func TestProcessHands_Unrecognized(t *testing.T) {
	a, sink, _ := newTestApp(t)

	result := a.ProcessHands([]detector.HandLandmarks{unrecognizedHand()}, time.Unix(0, 0))

	if result.Hands[0].Gesture != gesture.None {
		t.Errorf("expected no gesture, got %q", result.Hands[0].Gesture)
	}
	if result.Hands[0].Display != NoGesture || result.Status != NoGesture {
		t.Errorf("expected %q display, got %+v", NoGesture, result)
	}
	if len(sink.Events()) != 0 {
		t.Error("unrecognized hand should not emit")
	}
}

func TestProcessHands_HandsDebounceIndependently(t *testing.T) {
	a, sink, _ := newTestApp(t)
	now := time.Unix(1700000000, 0)

	right := detector.FistLandmarks()
	left := *right.Mirror()

	result := a.ProcessHands([]detector.HandLandmarks{right, left}, now)
	if len(result.Hands) != 2 {
		t.Fatalf("expected 2 hand results, got %d", len(result.Hands))
	}
	if result.Hands[1].Handedness != detector.Left || result.Hands[1].Gesture != gesture.Fist {
		t.Errorf("unexpected left hand result %+v", result.Hands[1])
	}

	events := sink.Events()
	if len(events) != 2 {
		t.Fatalf("expected one event per hand, got %d", len(events))
	}
	if events[0].Handedness != detector.Right || events[1].Handedness != detector.Left {
		t.Errorf("unexpected event handedness %s, %s", events[0].Handedness, events[1].Handedness)
	}

	// The left hand changing pose does not re-arm the right hand.
	shaka := detector.ShakaLandmarks()
	a.ProcessHands([]detector.HandLandmarks{right, *shaka.Mirror()}, now.Add(100*time.Millisecond))
	events = sink.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[2].Gesture != gesture.Shaka || events[2].Handedness != detector.Left {
		t.Errorf("unexpected third event %+v", events[2])
	}
}

func TestProcessHands_NoneFlickerKeepsHold(t *testing.T) {
	a, sink, _ := newTestApp(t)
	now := time.Unix(1700000000, 0)
	point := []detector.HandLandmarks{detector.PointLandmarks()}

	a.ProcessHands(point, now)
	a.ProcessHands([]detector.HandLandmarks{unrecognizedHand()}, now.Add(100*time.Millisecond))
	a.ProcessHands(nil, now.Add(200*time.Millisecond))
	a.ProcessHands(point, now.Add(300*time.Millisecond))

	if n := len(sink.Events()); n != 1 {
		t.Errorf("expected 1 event, got %d", n)
	}
}

func TestProcessHands_Observers(t *testing.T) {
	a, _, _ := newTestApp(t)

	var frames []FrameResult
	var gestures []gesture.Event
	a.OnFrame(func(r FrameResult) { frames = append(frames, r) })
	a.OnGesture(func(ev gesture.Event) { gestures = append(gestures, ev) })

	now := time.Unix(1700000000, 0)
	a.ProcessHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()}, now)
	a.ProcessHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()}, now.Add(50*time.Millisecond))
	a.ProcessHands(nil, now.Add(100*time.Millisecond))

	if len(frames) != 3 {
		t.Errorf("expected every frame observed, got %d", len(frames))
	}
	if len(gestures) != 1 || gestures[0].Gesture != gesture.OpenPalm {
		t.Errorf("expected a single Open Palm event, got %+v", gestures)
	}
	if frames[2].Status != NoHandDetected {
		t.Errorf("expected last frame status %q, got %q", NoHandDetected, frames[2].Status)
	}
}

func TestProcessHands_NilSink(t *testing.T) {
	a := New(Config{
		Camera:   capture.NewMockCamera(nil, false),
		Detector: detector.NewMockDetector(),
	})

	result := a.ProcessHands([]detector.HandLandmarks{detector.ThumbsUpLandmarks()}, time.Now())
	if result.Hands[0].Gesture != gesture.ThumbsUp {
		t.Errorf("expected Thumbs Up, got %q", result.Hands[0].Gesture)
	}
}

func TestApp_SetEnabled(t *testing.T) {
	a, sink, _ := newTestApp(t)
	now := time.Unix(1700000000, 0)
	fist := []detector.HandLandmarks{detector.FistLandmarks()}

	if a.IsEnabled() {
		t.Error("expected detection to start disabled")
	}

	a.SetEnabled(true)
	a.ProcessHands(fist, now)

	// Toggling off and on forgets the held gesture.
	a.SetEnabled(false)
	a.SetEnabled(true)
	if !a.IsEnabled() {
		t.Error("expected detection to be enabled")
	}
	a.ProcessHands(fist, now.Add(100*time.Millisecond))

	if n := len(sink.Events()); n != 2 {
		t.Errorf("expected the held gesture to be reported again, got %d events", n)
	}
}

func TestApp_New_Defaults(t *testing.T) {
	a := New(Config{
		Camera:   capture.NewMockCamera(nil, false),
		Detector: detector.NewMockDetector(),
	})

	if a.config.FPS != capture.DefaultFPS {
		t.Errorf("expected default FPS %d, got %d", capture.DefaultFPS, a.config.FPS)
	}
	if _, ok := a.clock.(gesture.SystemClock); !ok {
		t.Errorf("expected SystemClock, got %T", a.clock)
	}
	if a.debouncer(detector.Left).Cooldown() != gesture.DefaultCooldown {
		t.Error("expected default cooldown")
	}
	if a.config.Tracking != detector.DefaultConfig() {
		t.Errorf("expected default tracking config, got %+v", a.config.Tracking)
	}

	custom := detector.Config{MaxHands: 2, MinConfidence: 0.5, MinTrackingConf: 0.4}
	b := New(Config{
		Camera:   capture.NewMockCamera(nil, false),
		Detector: detector.NewMockDetector(),
		Tracking: custom,
	})
	if b.config.Tracking != custom {
		t.Errorf("expected tracking config to be kept, got %+v", b.config.Tracking)
	}
}
