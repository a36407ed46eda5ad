package ws

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"biketaxi/internal/domain"
	"biketaxi/internal/redis"
	"biketaxi/internal/repository"
	"biketaxi/internal/service"
)

// Every persistEvery-th sample (by client sequence) is written to Postgres;
// the rest only live in the expiring Redis store and the broadcast.
const persistEvery = 5

// LocationHandler terminates websocket connections for drivers and riders:
// room joins and in-trip driver location pings.
type LocationHandler struct {
	hub              *Hub
	rideLocations    redis.RideLocationStoreInterface
	rideRepo         repository.RideRepository
	rideLocationRepo repository.RideLocationRepository
	upgrader         websocket.Upgrader
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(
	hub *Hub,
	rideLocations redis.RideLocationStoreInterface,
	rideRepo repository.RideRepository,
	rideLocationRepo repository.RideLocationRepository,
) *LocationHandler {
	return &LocationHandler{
		hub:              hub,
		rideLocations:    rideLocations,
		rideRepo:         rideRepo,
		rideLocationRepo: rideLocationRepo,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin checks are the API gateway's concern.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type     string  `json:"type"` // "join" or "driver_location"
	Room     string  `json:"room,omitempty"`
	RideID   string  `json:"ride_id,omitempty"`
	RiderID  string  `json:"rider_id,omitempty"`
	DriverID string  `json:"driver_id,omitempty"`
	Lat      float64 `json:"lat,omitempty"`
	Lng      float64 `json:"lng,omitempty"`
	// Milliseconds since epoch, set by the sending client.
	Timestamp int64 `json:"timestamp,omitempty"`
	// Incremented by the driver client per sample.
	Sequence int `json:"sequence,omitempty"`
}

// Serve handles GET /ws: upgrades the connection and pumps messages until
// the peer goes away.
func (h *LocationHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := newClient(conn)
	defer func() {
		h.hub.Drop(client)
		_ = conn.Close()
	}()

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "join":
			if msg.Room != "" {
				h.hub.Join(msg.Room, client)
			}
		case "driver_location":
			h.handleLocationUpdate(c.Request.Context(), msg)
		}
	}
}

func (h *LocationHandler) handleLocationUpdate(ctx context.Context, msg inboundMessage) {
	if msg.RideID == "" {
		return
	}

	at := time.UnixMilli(msg.Timestamp)
	if msg.Timestamp == 0 {
		at = time.Now()
	}

	if err := h.rideLocations.Set(ctx, msg.RideID, msg.Lat, msg.Lng, at); err != nil {
		log.Printf("ride location store failed: %v", err)
	}

	h.hub.Broadcast("ride_"+msg.RideID, service.EventLocationUpdate, msg)
	if msg.RiderID != "" {
		h.hub.Broadcast("rider_"+msg.RiderID, service.EventLocationUpdate, msg)
	}

	if msg.Sequence%persistEvery == 0 {
		h.persistWaypoint(ctx, msg, at)
	}
}

func (h *LocationHandler) persistWaypoint(ctx context.Context, msg inboundMessage, at time.Time) {
	// Only waypoints of rides that still exist are kept.
	if _, err := h.rideRepo.GetByID(ctx, msg.RideID); err != nil {
		return
	}

	err := h.rideLocationRepo.Create(ctx, &domain.RideLocation{
		RideID:     msg.RideID,
		Lat:        msg.Lat,
		Lng:        msg.Lng,
		RecordedAt: at,
	})
	if err != nil {
		log.Printf("ride waypoint persist failed: %v", err)
	}
}
