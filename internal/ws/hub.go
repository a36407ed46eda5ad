// Package ws implements the realtime room hub backing notifications and
// in-trip location broadcast.
package ws

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"biketaxi/internal/service"
)

// writeTimeout bounds how long a send may wait on a slow socket before
// the client is treated as dead.
const writeTimeout = 10 * time.Second

// Client is one websocket connection. Writes are serialized per connection.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn}
}

func (c *Client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// Envelope is the wire format for outbound hub messages.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Hub tracks room membership and broadcasts to rooms. Rooms are named
// "<channel>_<id>": rider_42, driver_7, ride_abc.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]struct{})}
}

// Join subscribes a client to a room.
func (h *Hub) Join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
}

// Drop removes a client from every room.
func (h *Hub) Drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast sends an event to every client in a room. Send errors evict the
// client; delivery is best effort.
func (h *Hub) Broadcast(room string, event string, payload any) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		if err := c.send(Envelope{Event: event, Payload: payload}); err != nil {
			log.Printf("ws send to room %s failed: %v", room, err)
			h.Drop(c)
			_ = c.conn.Close()
		}
	}
}

// Notify implements service.NotificationSink by broadcasting to the
// channel's room. The broadcast runs on a background goroutine; a slow
// socket never delays the state transition that produced the event.
func (h *Hub) Notify(_ context.Context, channel service.Channel, id string, event string, payload any) {
	go h.Broadcast(string(channel)+"_"+id, event, payload)
}

var _ service.NotificationSink = (*Hub)(nil)
