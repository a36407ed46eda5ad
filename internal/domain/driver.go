package domain

import "time"

// DriverStatus represents the current status of a driver.
type DriverStatus string

const (
	DriverStatusOffline   DriverStatus = "OFFLINE"
	DriverStatusOnline    DriverStatus = "ONLINE"
	DriverStatusAvailable DriverStatus = "AVAILABLE"
	DriverStatusOnRide    DriverStatus = "ON_RIDE"
)

// Connected reports whether the status counts as logged in to the platform.
func (s DriverStatus) Connected() bool {
	return s == DriverStatusOnline || s == DriverStatusAvailable || s == DriverStatusOnRide
}

// VehicleType represents the vehicle category a ride is requested for.
type VehicleType string

const (
	VehicleTypeBike VehicleType = "BIKE"
	VehicleTypeAuto VehicleType = "AUTO"
	VehicleTypeCar  VehicleType = "CAR"
)

// Driver represents a driver in the system.
//
// Rating is nil until the driver has received at least one rating.
// LastLat/LastLng hold the persisted last-known position and are nil for
// drivers that have never reported a location; the live position lives in
// the Redis location store and expires on its own.
type Driver struct {
	ID           string
	Name         string
	Phone        string
	Status       DriverStatus
	Rating       *float64
	TotalRides   int
	LastLat      *float64
	LastLng      *float64
	RegisteredAt time.Time
}
