package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"biketaxi/internal/service"
)

// dialHub spins up a server that joins every incoming connection to the
// given room, then dials it. It returns the client-side connection.
func dialHub(t *testing.T, hub *Hub, room string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	joined := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Join(room, newClient(conn))
		close(joined)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	<-joined
	return conn
}

func TestHubNotifyDeliversToChannelRoom(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "rider_42")

	hub.Notify(context.Background(), service.ChannelRider, "42", service.EventRideAccepted, map[string]string{"ride_id": "ride-1"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("failed to read broadcast: %v", err)
	}
	if env.Event != service.EventRideAccepted {
		t.Errorf("expected event %s, got %s", service.EventRideAccepted, env.Event)
	}
}

func TestHubBroadcastSkipsOtherRooms(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "driver_7")

	hub.Broadcast("rider_42", service.EventRideAccepted, nil)

	_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var env Envelope
	if err := conn.ReadJSON(&env); err == nil {
		t.Errorf("expected no delivery to a different room, got event %s", env.Event)
	}
}

func TestHubDropRemovesClientFromAllRooms(t *testing.T) {
	hub := NewHub()
	c := &Client{}
	hub.Join("rider_1", c)
	hub.Join("ride_9", c)

	hub.Drop(c)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if len(hub.rooms) != 0 {
		t.Errorf("expected empty rooms after drop, got %d", len(hub.rooms))
	}
}
