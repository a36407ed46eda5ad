package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"biketaxi/internal/domain"
	"biketaxi/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

const rideColumns = `id, rider_id, driver_id, vehicle_type, pickup_lat, pickup_lng, pickup_address,
		drop_lat, drop_lng, drop_address, status, estimated_fare, final_fare, surge_multiplier, otp,
		requested_at, accepted_at, started_at, completed_at, cancelled_at, cancel_reason`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.RiderID,
		nullString(ride.DriverID),
		ride.VehicleType,
		ride.PickupLat,
		ride.PickupLng,
		nullString(ride.PickupAddress),
		ride.DropLat,
		ride.DropLng,
		nullString(ride.DropAddress),
		ride.Status,
		ride.EstimatedFare,
		ride.FinalFare,
		ride.SurgeMultiplier,
		nullString(ride.OTP),
		ride.RequestedAt,
		nullTime(ride.AcceptedAt),
		nullTime(ride.StartedAt),
		nullTime(ride.CompletedAt),
		nullTime(ride.CancelledAt),
		nullString(ride.CancelReason),
	)
	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// GetAll retrieves all rides.
func (r *RideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides ORDER BY requested_at DESC`
	return r.queryRides(ctx, query)
}

// GetByRider retrieves all rides requested by the given rider.
func (r *RideRepository) GetByRider(ctx context.Context, riderID string) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE rider_id = $1 ORDER BY requested_at DESC`
	return r.queryRides(ctx, query, riderID)
}

// Update updates an existing ride.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	result, err := r.q.ExecContext(ctx, updateQuery(""), updateArgs(ride)...)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// UpdateIfStatus updates the ride only if its stored status still equals
// expected. ErrConflict means another transition won the race.
func (r *RideRepository) UpdateIfStatus(ctx context.Context, ride *domain.Ride, expected domain.RideStatus) error {
	args := append(updateArgs(ride), expected)
	result, err := r.q.ExecContext(ctx, updateQuery(" AND status = $14"), args...)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a missing ride from a lost race.
		if _, err := r.GetByID(ctx, ride.ID); err != nil {
			return err
		}
		return repository.ErrConflict
	}
	return nil
}

func updateQuery(guard string) string {
	return `
		UPDATE rides
		SET driver_id = $2, status = $3, estimated_fare = $4, final_fare = $5, surge_multiplier = $6,
		    otp = $7, accepted_at = $8, started_at = $9, completed_at = $10, cancelled_at = $11,
		    cancel_reason = $12, vehicle_type = $13
		WHERE id = $1` + guard
}

func updateArgs(ride *domain.Ride) []any {
	return []any{
		ride.ID,
		nullString(ride.DriverID),
		ride.Status,
		ride.EstimatedFare,
		ride.FinalFare,
		ride.SurgeMultiplier,
		nullString(ride.OTP),
		nullTime(ride.AcceptedAt),
		nullTime(ride.StartedAt),
		nullTime(ride.CompletedAt),
		nullTime(ride.CancelledAt),
		nullString(ride.CancelReason),
		ride.VehicleType,
	}
}

func (r *RideRepository) queryRides(ctx context.Context, query string, args ...any) ([]*domain.Ride, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var driverID, pickupAddress, dropAddress, otp, cancelReason sql.NullString
	var acceptedAt, startedAt, completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&ride.ID,
		&ride.RiderID,
		&driverID,
		&ride.VehicleType,
		&ride.PickupLat,
		&ride.PickupLng,
		&pickupAddress,
		&ride.DropLat,
		&ride.DropLng,
		&dropAddress,
		&ride.Status,
		&ride.EstimatedFare,
		&ride.FinalFare,
		&ride.SurgeMultiplier,
		&otp,
		&ride.RequestedAt,
		&acceptedAt,
		&startedAt,
		&completedAt,
		&cancelledAt,
		&cancelReason,
	)
	if err != nil {
		return nil, err
	}

	ride.DriverID = driverID.String
	ride.PickupAddress = pickupAddress.String
	ride.DropAddress = dropAddress.String
	ride.OTP = otp.String
	ride.CancelReason = cancelReason.String
	if acceptedAt.Valid {
		ride.AcceptedAt = acceptedAt.Time
	}
	if startedAt.Valid {
		ride.StartedAt = startedAt.Time
	}
	if completedAt.Valid {
		ride.CompletedAt = completedAt.Time
	}
	if cancelledAt.Valid {
		ride.CancelledAt = cancelledAt.Time
	}
	return &ride, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
