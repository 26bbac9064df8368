package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Message is one update on the live feed. Type is "frame" for a per-frame
// classification and "status" for a command delivery status line.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// sendBuffer is how many messages may wait for a slow client before new
// ones are dropped for it.
const sendBuffer = 16

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// FrameHub broadcasts live feed messages to WebSocket clients. Each client
// has its own writer goroutine, so publishing never waits on the network.
type FrameHub struct {
	clients map[*feedClient]bool
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewFrameHub creates an empty hub.
func NewFrameHub() *FrameHub {
	return &FrameHub{clients: make(map[*feedClient]bool)}
}

// ServeHTTP upgrades the request and keeps the client until it disconnects.
func (h *FrameHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &feedClient{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.clients[c] = true
	h.mu.Unlock()

	go c.writeLoop()
	defer h.remove(c)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writeLoop sends queued messages until the hub closes the send channel.
func (c *feedClient) writeLoop() {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}

	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
}

func (h *FrameHub) remove(c *feedClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *FrameHub) removeLocked(c *feedClient) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// PublishFrame sends a per-frame classification to every client.
func (h *FrameHub) PublishFrame(frame any) {
	h.publish(Message{Type: "frame", Data: frame})
}

// PublishStatus sends a command status line to every client.
func (h *FrameHub) PublishStatus(status string) {
	h.publish(Message{Type: "status", Data: status})
}

// publish queues m for every client. A client whose queue is full misses
// the message.
func (h *FrameHub) publish(m Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(m)
	if err != nil {
		log.Printf("Failed to encode feed message: %v", err)
		return
	}

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.dropped.Add(1)
		}
	}
}

// Clients returns the number of connected clients.
func (h *FrameHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many messages were skipped for busy clients.
func (h *FrameHub) Dropped() int64 {
	return h.dropped.Load()
}

// Close disconnects every client and rejects new ones.
func (h *FrameHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}
