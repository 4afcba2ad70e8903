package server

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is the wire format pushed to viewers: one flat JSON object per
// message.
type Event struct {
	Type      string  `json:"type"`
	Path      string  `json:"path"`
	Filename  string  `json:"filename"`
	Timestamp float64 `json:"timestamp"`
}

const (
	eventNewImage     = "new_image"
	eventCurrentImage = "current_image"
)

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

func newHubClient(conn *websocket.Conn) *hubClient {
	c := &hubClient{
		conn: conn,
		send: make(chan []byte, 64),
	}
	go c.writePump()
	return c
}

func (c *hubClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *hubClient) close() {
	close(c.send)
}

// Hub tracks connected viewers and fans events out to them. Each client
// gets a buffered send channel drained by its own write pump; a client
// that cannot keep up is disconnected rather than allowed to stall the
// feed.
type Hub struct {
	mu      sync.RWMutex
	clients map[*hubClient]bool
	latest  *Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*hubClient]bool)}
}

// Add registers a connection. The newest known image, if any, is sent
// immediately as a current_image event so a fresh viewer has something to
// show.
func (h *Hub) Add(conn *websocket.Conn) *hubClient {
	c := newHubClient(conn)

	h.mu.Lock()
	h.clients[c] = true
	latest := h.latest
	h.mu.Unlock()

	if latest != nil {
		ev := *latest
		ev.Type = eventCurrentImage
		if data, err := json.Marshal(ev); err == nil {
			select {
			case c.send <- data:
			default:
				// Client too slow for even the greeting; drop the event.
			}
		}
	}
	return c
}

// Remove unregisters a connection and stops its write pump.
func (h *Hub) Remove(c *hubClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

// BroadcastNew records info as the newest image and pushes a new_image
// event to every connected viewer.
func (h *Hub) BroadcastNew(info ImageInfo) {
	ev := Event{
		Type:      eventNewImage,
		Path:      "/static/" + info.Path,
		Filename:  info.Filename,
		Timestamp: float64(info.ModTime.UnixNano()) / 1e9,
	}

	h.mu.Lock()
	h.latest = &ev
	clients := make([]*hubClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("broadcast marshal error: %v", err)
		return
	}

	for _, c := range clients {
		select {
		case c.send <- data:
		default:
			log.Printf("ws client too slow, disconnecting")
			h.Remove(c)
		}
	}
}

// SetLatest records info as the newest known image without broadcasting,
// used when the daemon starts against a directory that already has files.
func (h *Hub) SetLatest(info ImageInfo) {
	ev := Event{
		Type:      eventNewImage,
		Path:      "/static/" + info.Path,
		Filename:  info.Filename,
		Timestamp: float64(info.ModTime.UnixNano()) / 1e9,
	}
	h.mu.Lock()
	h.latest = &ev
	h.mu.Unlock()
}

// Latest returns the newest known event, or nil.
func (h *Hub) Latest() *Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return nil
	}
	ev := *h.latest
	return &ev
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
