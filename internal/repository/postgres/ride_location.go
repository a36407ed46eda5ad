package postgres

import (
	"context"
	"database/sql"

	"biketaxi/internal/domain"
)

// RideLocationRepository is a PostgreSQL implementation of
// repository.RideLocationRepository.
type RideLocationRepository struct {
	q Querier
}

// NewRideLocationRepository creates a new PostgreSQL ride location repository.
func NewRideLocationRepository(db *sql.DB) *RideLocationRepository {
	return &RideLocationRepository{q: db}
}

// Create persists a waypoint.
func (r *RideLocationRepository) Create(ctx context.Context, loc *domain.RideLocation) error {
	query := `INSERT INTO ride_locations (ride_id, lat, lng, recorded_at) VALUES ($1, $2, $3, $4)`
	_, err := r.q.ExecContext(ctx, query, loc.RideID, loc.Lat, loc.Lng, loc.RecordedAt)
	return err
}

// GetByRide retrieves all persisted waypoints for a ride, oldest first.
func (r *RideLocationRepository) GetByRide(ctx context.Context, rideID string) ([]*domain.RideLocation, error) {
	query := `SELECT id, ride_id, lat, lng, recorded_at FROM ride_locations WHERE ride_id = $1 ORDER BY recorded_at`

	rows, err := r.q.QueryContext(ctx, query, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*domain.RideLocation
	for rows.Next() {
		var loc domain.RideLocation
		if err := rows.Scan(&loc.ID, &loc.RideID, &loc.Lat, &loc.Lng, &loc.RecordedAt); err != nil {
			return nil, err
		}
		locations = append(locations, &loc)
	}
	return locations, rows.Err()
}
