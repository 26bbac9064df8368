package gesture

import (
	"sync"
	"time"

	"github.com/ayusman/gesturify/internal/detector"
)

// DefaultCooldown is how long repeats of the same label are suppressed.
const DefaultCooldown = 1000 * time.Millisecond

// Event is a debounced notification that a label newly appeared, or
// reappeared after its cooldown.
type Event struct {
	Gesture    Label               `json:"gesture"`
	Handedness detector.Handedness `json:"-"`
	At         time.Time           `json:"-"`
}

// State is the debouncer's memory: the last emitted label and when its
// cooldown ends. A zero Deadline means no cooldown is pending.
type State struct {
	Last     Label
	Deadline time.Time
}

// Holding reports whether a label is currently being held.
func (s State) Holding() bool {
	return s.Last != None
}

// Debouncer turns a per-frame stream of labels into discrete events.
//
// States are Idle (Last == None) and Holding(L). A differing label emits an
// event and starts a fresh cooldown; repeats of the held label are dropped
// until the cooldown expires, at which point the debouncer silently returns
// to Idle. None never emits and never changes state.
type Debouncer struct {
	cooldown time.Duration
	clock    Clock

	mu    sync.Mutex
	state State
	timer Timer
}

// NewDebouncer creates a Debouncer. A non-positive cooldown uses
// DefaultCooldown; a nil clock uses SystemClock.
func NewDebouncer(cooldown time.Duration, clock Clock) *Debouncer {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Debouncer{
		cooldown: cooldown,
		clock:    clock,
	}
}

// Cooldown returns the configured cooldown window.
func (d *Debouncer) Cooldown() time.Duration {
	return d.cooldown
}

// Evaluate feeds one frame's label. It returns the event to surface and true
// when the label differs from the one being held.
func (d *Debouncer) Evaluate(candidate Label, now time.Time) (Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Covers clocks whose timers have not fired yet for the given instant.
	if !d.state.Deadline.IsZero() && !now.Before(d.state.Deadline) {
		d.resetLocked()
	}

	if candidate == None || candidate == d.state.Last {
		return Event{}, false
	}

	if d.timer != nil {
		d.timer.Stop()
	}

	deadline := now.Add(d.cooldown)
	d.state = State{Last: candidate, Deadline: deadline}
	d.timer = d.clock.AfterFunc(d.cooldown, func() {
		d.expire(deadline)
	})

	return Event{Gesture: candidate, At: now}, true
}

// expire resets the state if the cooldown that scheduled it is still current.
func (d *Debouncer) expire(deadline time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.Deadline.Equal(deadline) {
		d.resetLocked()
	}
}

func (d *Debouncer) resetLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.state = State{}
}

// Reset returns the debouncer to Idle and cancels any pending cooldown.
func (d *Debouncer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
}

// State returns a snapshot of the current state.
func (d *Debouncer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}
