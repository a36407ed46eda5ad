package repository

import (
	"context"

	"biketaxi/internal/domain"
)

// UserRepository defines the persistence operations for riders.
type UserRepository interface {
	// Create adds a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByPhone retrieves a user by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)

	// GetAll retrieves all users.
	GetAll(ctx context.Context) ([]*domain.User, error)

	// IncrementRides increments the user's completed ride counter.
	IncrementRides(ctx context.Context, id string) error
}
