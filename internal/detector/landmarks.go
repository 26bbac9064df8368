// Package detector provides hand tracking interfaces and the landmark data model
// consumed by gesture classification.
package detector

import (
	"errors"
	"fmt"
	"strings"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ErrMalformedHand is returned when a tracking provider reports a hand
// without exactly NumLandmarks points.
var ErrMalformedHand = errors.New("malformed hand landmarks")

// Handedness identifies which hand a landmark set belongs to.
type Handedness string

const (
	Left  Handedness = "Left"
	Right Handedness = "Right"
)

// ParseHandedness converts a tracking provider label to a Handedness.
// Anything other than "Left" (including an empty label) is treated as Right.
func ParseHandedness(label string) Handedness {
	if strings.EqualFold(strings.TrimSpace(label), string(Left)) {
		return Left
	}
	return Right
}

// Opposite returns the other hand.
func (h Handedness) Opposite() Handedness {
	if h == Left {
		return Right
	}
	return Left
}

// Point3D represents a normalized image-relative point with x, y, z coordinates.
// Y grows downward, so a smaller Y is higher in the image.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks of one detected hand in one frame.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness Handedness            `json:"handedness"`
	Score      float64               `json:"score"`
}

// Mirror returns a copy of the hand reflected horizontally (x -> 1-x) with
// the opposite handedness. A mirrored hand describes the same pose.
func (h *HandLandmarks) Mirror() *HandLandmarks {
	if h == nil {
		return nil
	}

	mirrored := &HandLandmarks{
		Handedness: ParseHandedness(string(h.Handedness)).Opposite(),
		Score:      h.Score,
	}
	for i, p := range h.Points {
		mirrored.Points[i] = Point3D{X: 1 - p.X, Y: p.Y, Z: p.Z}
	}

	return mirrored
}

// FromPoints builds a HandLandmarks from a variable-length point list.
// It returns ErrMalformedHand unless exactly NumLandmarks points are given.
func FromPoints(points []Point3D, handedness string, score float64) (HandLandmarks, error) {
	if len(points) != NumLandmarks {
		return HandLandmarks{}, fmt.Errorf("%w: got %d points, want %d", ErrMalformedHand, len(points), NumLandmarks)
	}

	h := HandLandmarks{
		Handedness: ParseHandedness(handedness),
		Score:      score,
	}
	copy(h.Points[:], points)

	return h, nil
}
