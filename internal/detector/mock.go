package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It replays a queue of frames; once the queue is drained it keeps
// returning the last configured hands.
type MockDetector struct {
	mu     sync.Mutex
	queue  [][]HandLandmarks
	hands  []HandLandmarks
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// QueueFrames appends per-frame results that Detect returns in order.
func (m *MockDetector) QueueFrames(frames ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the next queued frame, the configured hands, or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		m.hands = next
		return next, nil
	}
	return m.hands, nil
}

// Calls returns how many times Detect was invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Finger poses used by the preset hands.
type fingerPose int

const (
	curled fingerPose = iota
	raised
	lowered
)

// fingerChains lists the MCP, PIP, DIP and tip indices of each non-thumb finger
// with the x column it is drawn at for a right hand.
var fingerChains = []struct {
	joints [4]int
	x      float64
}{
	{[4]int{IndexMCP, IndexPIP, IndexDIP, IndexTip}, 0.56},
	{[4]int{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip}, 0.50},
	{[4]int{RingMCP, RingPIP, RingDIP, RingTip}, 0.45},
	{[4]int{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip}, 0.40},
}

// thumbPose describes where the thumb points.
type thumbPose int

const (
	thumbTucked thumbPose = iota
	thumbUp
	thumbOut
)

// buildHand lays out a right hand with the given finger poses (index, middle,
// ring, pinky) and thumb pose.
func buildHand(thumb thumbPose, fingers [4]fingerPose) HandLandmarks {
	h := HandLandmarks{Handedness: Right, Score: 0.95}
	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.85}

	for i, chain := range fingerChains {
		mcpY := 0.65
		var ys [4]float64
		switch fingers[i] {
		case raised:
			ys = [4]float64{mcpY, 0.52, 0.42, 0.32}
		case lowered:
			ys = [4]float64{mcpY, 0.60, 0.70, 0.78}
		default:
			// Tip level with the PIP joint: neither extended nor pointing down.
			ys = [4]float64{mcpY, 0.60, 0.64, 0.60}
		}
		for j, idx := range chain.joints {
			h.Points[idx] = Point3D{X: chain.x, Y: ys[j], Z: -0.02 * float64(j)}
		}
	}

	// Right hand thumb "out" means toward smaller x.
	h.Points[ThumbCMC] = Point3D{X: 0.58, Y: 0.78}
	switch thumb {
	case thumbUp:
		h.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.60}
		h.Points[ThumbIP] = Point3D{X: 0.55, Y: 0.45}
		h.Points[ThumbTip] = Point3D{X: 0.50, Y: 0.30}
	case thumbOut:
		h.Points[ThumbMCP] = Point3D{X: 0.54, Y: 0.74}
		h.Points[ThumbIP] = Point3D{X: 0.48, Y: 0.72}
		h.Points[ThumbTip] = Point3D{X: 0.42, Y: 0.71}
	default:
		h.Points[ThumbMCP] = Point3D{X: 0.56, Y: 0.72}
		h.Points[ThumbIP] = Point3D{X: 0.55, Y: 0.68}
		h.Points[ThumbTip] = Point3D{X: 0.57, Y: 0.66}
	}

	return h
}

// ThumbsUpLandmarks returns a right hand with the thumb raised and fingers curled.
func ThumbsUpLandmarks() HandLandmarks {
	return buildHand(thumbUp, [4]fingerPose{curled, curled, curled, curled})
}

// OpenPalmLandmarks returns a right hand with all fingers raised.
func OpenPalmLandmarks() HandLandmarks {
	return buildHand(thumbOut, [4]fingerPose{raised, raised, raised, raised})
}

// TwoFingersLandmarks returns a right hand with index and middle raised.
func TwoFingersLandmarks() HandLandmarks {
	return buildHand(thumbTucked, [4]fingerPose{raised, raised, curled, curled})
}

// ShakaLandmarks returns a right hand with thumb and pinky out.
func ShakaLandmarks() HandLandmarks {
	return buildHand(thumbOut, [4]fingerPose{curled, curled, curled, raised})
}

// PointLandmarks returns a right hand with only the index raised.
func PointLandmarks() HandLandmarks {
	return buildHand(thumbTucked, [4]fingerPose{raised, curled, curled, curled})
}

// PointDownLandmarks returns a right hand with the index hanging below its PIP joint.
func PointDownLandmarks() HandLandmarks {
	return buildHand(thumbTucked, [4]fingerPose{lowered, curled, curled, curled})
}

// FistLandmarks returns a right hand with everything curled.
func FistLandmarks() HandLandmarks {
	return buildHand(thumbTucked, [4]fingerPose{curled, curled, curled, curled})
}
