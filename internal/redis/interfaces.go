package redis

import (
	"context"
	"time"
)

// DriverLocationStoreInterface defines the interface for driver location
// operations.
type DriverLocationStoreInterface interface {
	Set(ctx context.Context, driverID string, lat, lng float64, at time.Time) error
	Get(ctx context.Context, driverID string) (*LocationSample, error)
	Remove(ctx context.Context, driverID string) error
}

// RideLocationStoreInterface defines the interface for in-trip location
// operations.
type RideLocationStoreInterface interface {
	Set(ctx context.Context, rideID string, lat, lng float64, at time.Time) error
	Get(ctx context.Context, rideID string) (*LocationSample, error)
}

// Ensure concrete types implement interfaces.
var (
	_ DriverLocationStoreInterface = (*DriverLocationStore)(nil)
	_ RideLocationStoreInterface   = (*RideLocationStore)(nil)
)
