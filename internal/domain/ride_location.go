package domain

import "time"

// RideLocation is a persisted waypoint sampled from a driver's in-trip
// location stream. Only a subset of the stream is persisted; the full
// stream lives in the expiring Redis store and the websocket broadcast.
type RideLocation struct {
	ID         int64
	RideID     string
	Lat        float64
	Lng        float64
	RecordedAt time.Time
}
