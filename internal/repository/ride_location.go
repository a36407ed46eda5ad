package repository

import (
	"context"

	"biketaxi/internal/domain"
)

// RideLocationRepository defines the persistence operations for in-trip
// location waypoints.
type RideLocationRepository interface {
	// Create persists a waypoint.
	Create(ctx context.Context, loc *domain.RideLocation) error

	// GetByRide retrieves all persisted waypoints for a ride, oldest first.
	GetByRide(ctx context.Context, rideID string) ([]*domain.RideLocation, error)
}
