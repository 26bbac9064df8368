package transport

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/ayusman/gesturify/internal/gesture"
)

// Sender delivers one gesture to the command server.
type Sender interface {
	Send(ctx context.Context, label gesture.Label) (*CommandResponse, error)
}

// ConnectError is the status reported when a command cannot be delivered.
const ConnectError = "Error: Cannot connect to command server."

// Dispatcher queues gesture events and delivers them on a single worker
// goroutine, so publishing never waits on the network.
type Dispatcher struct {
	sender   Sender
	queue    chan gesture.Event
	onStatus func(string)

	mu      sync.RWMutex
	closed  bool
	status  string
	dropped atomic.Int64
	done    chan struct{}
}

// NewDispatcher starts a dispatcher holding up to queueSize pending events.
// onStatus, if set, receives a status line after every delivery attempt.
func NewDispatcher(sender Sender, queueSize int, onStatus func(string)) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}

	d := &Dispatcher{
		sender:   sender,
		queue:    make(chan gesture.Event, queueSize),
		onStatus: onStatus,
		done:     make(chan struct{}),
	}
	go d.run()

	return d
}

// Publish enqueues ev. When the queue is full or the dispatcher is closed the
// event is dropped.
func (d *Dispatcher) Publish(ev gesture.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.dropped.Add(1)
		log.Printf("Command queue full, dropping gesture %s", ev.Gesture)
	}
}

// Close stops accepting events, delivers what is queued and waits for the worker.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}

// Dropped returns how many events were discarded because the queue was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Status returns the most recent status line.
func (d *Dispatcher) Status() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for ev := range d.queue {
		d.report(d.deliver(ev))
	}
}

func (d *Dispatcher) deliver(ev gesture.Event) string {
	log.Printf("Sending command for gesture: %s", ev.Gesture)

	resp, err := d.sender.Send(context.Background(), ev.Gesture)
	if err != nil {
		log.Printf("Could not send command to server: %v", err)
		return ConnectError
	}

	if resp.Status == StatusSuccess {
		return fmt.Sprintf("Command Sent: %s (%s)", ev.Gesture, resp.CommandExecuted)
	}
	return fmt.Sprintf("Gesture Ignored: %s", ev.Gesture)
}

func (d *Dispatcher) report(status string) {
	d.mu.Lock()
	d.status = status
	d.mu.Unlock()

	if d.onStatus != nil {
		d.onStatus(status)
	}
}
