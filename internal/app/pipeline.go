package app

import (
	"log"
	"time"

	"github.com/ayusman/gesturify/internal/detector"
	"github.com/ayusman/gesturify/internal/gesture"
)

// Display strings shown for a frame without a recognized gesture.
const (
	NoGesture      = "No Gesture"
	NoHandDetected = "No Hand Detected"
)

// HandResult is the raw classification of one hand in one frame.
type HandResult struct {
	Handedness detector.Handedness `json:"handedness"`
	Gesture    gesture.Label       `json:"gesture"`
	Display    string              `json:"display"`
}

// FrameResult is the per-frame classification, independent of debouncing.
// Status is the text a live view shows for the frame.
type FrameResult struct {
	Timestamp time.Time    `json:"timestamp"`
	Hands     []HandResult `json:"hands"`
	Status    string       `json:"status"`
}

// ProcessHands classifies every hand of one tracking frame, routes each label
// through that hand's debouncer, publishes the resulting events and notifies
// observers. It returns the raw classification for display.
func (a *App) ProcessHands(hands []detector.HandLandmarks, now time.Time) FrameResult {
	result := FrameResult{
		Timestamp: now,
		Hands:     make([]HandResult, 0, len(hands)),
		Status:    NoHandDetected,
	}

	var events []gesture.Event
	for i := range hands {
		hand := &hands[i]
		handedness := detector.ParseHandedness(string(hand.Handedness))
		label := gesture.ClassifyHand(hand)

		display := NoGesture
		if label != gesture.None {
			display = string(label)
		}
		result.Hands = append(result.Hands, HandResult{
			Handedness: handedness,
			Gesture:    label,
			Display:    display,
		})
		result.Status = display

		if ev, ok := a.debouncer(handedness).Evaluate(label, now); ok {
			ev.Handedness = handedness
			events = append(events, ev)
		}
	}

	a.mu.RLock()
	frameObservers := a.frameObservers
	gestureObservers := a.gestureObservers
	a.mu.RUnlock()

	for _, ev := range events {
		log.Printf("Recognized gesture: %s (%s hand)", ev.Gesture, ev.Handedness)
		if a.sink != nil {
			a.sink.Publish(ev)
		}
		for _, fn := range gestureObservers {
			fn(ev)
		}
	}
	for _, fn := range frameObservers {
		fn(result)
	}

	return result
}

// run is the frame loop. Read and detection errors are logged and the frame skipped.
func (a *App) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(time.Second / time.Duration(a.config.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}
			a.step()
		}
	}
}

// step processes one camera frame.
func (a *App) step() {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		log.Printf("Error reading frame: %v", err)
		return
	}

	hands, err := a.detector.Detect(frame)
	frame.Close()
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		return
	}

	a.ProcessHands(hands, a.clock.Now())
}
