// Package gesture turns hand landmarks into named static gestures and filters
// the per-frame results into discrete gesture events.
package gesture

import "github.com/ayusman/gesturify/internal/detector"

// Label names a recognized static hand pose. The zero value None means no
// pose was recognized.
type Label string

// Recognized labels. The strings are the names used on the command wire.
const (
	None       Label = ""
	ThumbsUp   Label = "Thumbs Up"
	OpenPalm   Label = "Open Palm"
	TwoFingers Label = "Two Fingers"
	Shaka      Label = "Shaka"
	Point      Label = "Point"
	PointDown  Label = "Point Down"
	Fist       Label = "Fist"
)

// Labels lists every recognized label in classification priority order.
var Labels = []Label{ThumbsUp, OpenPalm, TwoFingers, Shaka, Point, PointDown, Fist}

// Valid reports whether l is one of the recognized labels.
func (l Label) Valid() bool {
	for _, known := range Labels {
		if l == known {
			return true
		}
	}
	return false
}

// String returns the label, or "none" for None.
func (l Label) String() string {
	if l == None {
		return "none"
	}
	return string(l)
}

// above reports whether landmark a is higher in the image than landmark b.
func above(p *[detector.NumLandmarks]detector.Point3D, a, b int) bool {
	return p[a].Y < p[b].Y
}

// outward reports whether landmark a lies on the thumb's outward side of b.
// For a right hand that is toward smaller x; the left hand mirrors it.
func outward(p *[detector.NumLandmarks]detector.Point3D, hand detector.Handedness, a, b int) bool {
	if hand == detector.Left {
		return p[a].X > p[b].X
	}
	return p[a].X < p[b].X
}

// Classify maps one hand's landmarks to a gesture label. The rules are
// evaluated in priority order and the first match wins; None means the pose
// is ambiguous or transitional.
func Classify(points *[detector.NumLandmarks]detector.Point3D, hand detector.Handedness) Label {
	index := above(points, detector.IndexTip, detector.IndexPIP)
	middle := above(points, detector.MiddleTip, detector.MiddlePIP)
	ring := above(points, detector.RingTip, detector.RingPIP)
	pinky := above(points, detector.PinkyTip, detector.PinkyPIP)
	closed := !index && !middle && !ring && !pinky

	thumbOut := outward(points, hand, detector.ThumbTip, detector.ThumbIP)

	// Two-joint check: the tip must clear both the IP and MCP joints.
	thumbsUp := closed &&
		above(points, detector.ThumbTip, detector.ThumbIP) &&
		above(points, detector.ThumbTip, detector.ThumbMCP) &&
		outward(points, hand, detector.ThumbTip, detector.ThumbIP) &&
		outward(points, hand, detector.ThumbTip, detector.ThumbMCP)

	indexDown := points[detector.IndexTip].Y > points[detector.IndexPIP].Y

	switch {
	case thumbsUp:
		return ThumbsUp
	case index && middle && ring && pinky:
		return OpenPalm
	case index && middle && !ring && !pinky:
		return TwoFingers
	case thumbOut && !index && !middle && !ring && pinky:
		return Shaka
	case index && !middle && !ring && !pinky:
		return Point
	case indexDown && !middle && !ring && !pinky:
		return PointDown
	case closed:
		return Fist
	}

	return None
}

// ClassifyHand classifies a detected hand using its own handedness.
func ClassifyHand(h *detector.HandLandmarks) Label {
	if h == nil {
		return None
	}
	return Classify(&h.Points, detector.ParseHandedness(string(h.Handedness)))
}
