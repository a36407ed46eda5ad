package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusRequested RideStatus = "REQUESTED"
	RideStatusAccepted  RideStatus = "ACCEPTED"
	RideStatusStarted   RideStatus = "STARTED"
	RideStatusCompleted RideStatus = "COMPLETED"
	RideStatusCancelled RideStatus = "CANCELLED"
)

// Terminal reports whether no further transition may leave the status.
func (s RideStatus) Terminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// Ride represents a ride request and its lifecycle.
//
// DriverID is empty until a driver accepts. Each timestamp is set exactly
// once, at its transition. OTP is issued at acceptance and must match for
// the OTP-verified start.
type Ride struct {
	ID              string
	RiderID         string
	DriverID        string
	VehicleType     VehicleType
	PickupLat       float64
	PickupLng       float64
	PickupAddress   string
	DropLat         float64
	DropLng         float64
	DropAddress     string
	Status          RideStatus
	EstimatedFare   float64
	FinalFare       float64
	SurgeMultiplier float64
	OTP             string
	RequestedAt     time.Time
	AcceptedAt      time.Time
	StartedAt       time.Time
	CompletedAt     time.Time
	CancelledAt     time.Time
	CancelReason    string
}
