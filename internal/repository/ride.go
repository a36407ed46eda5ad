package repository

import (
	"context"

	"biketaxi/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetAll retrieves all rides.
	GetAll(ctx context.Context) ([]*domain.Ride, error)

	// GetByRider retrieves all rides requested by the given rider.
	GetByRider(ctx context.Context, riderID string) ([]*domain.Ride, error)

	// Update updates an existing ride.
	Update(ctx context.Context, ride *domain.Ride) error

	// UpdateIfStatus updates the ride only if its stored status still equals
	// expected. Returns ErrConflict when the guard fails, so concurrent
	// transitions out of the same state resolve to exactly one winner.
	UpdateIfStatus(ctx context.Context, ride *domain.Ride, expected domain.RideStatus) error
}
