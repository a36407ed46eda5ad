package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"biketaxi/internal/domain"
	"biketaxi/internal/redis"
	"biketaxi/internal/repository"
)

// DriverService handles driver registration, presence and location updates.
type DriverService struct {
	driverRepo    repository.DriverRepository
	locationStore redis.DriverLocationStoreInterface
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	driverRepo repository.DriverRepository,
	locationStore redis.DriverLocationStoreInterface,
) *DriverService {
	return &DriverService{
		driverRepo:    driverRepo,
		locationStore: locationStore,
	}
}

// Register adds a new driver in OFFLINE state.
func (s *DriverService) Register(ctx context.Context, name, phone string) (*domain.Driver, error) {
	if name == "" {
		return nil, ErrMissingName
	}

	if phone != "" {
		if _, err := s.driverRepo.GetByPhone(ctx, phone); err == nil {
			return nil, ErrPhoneAlreadyRegistered
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	driver := &domain.Driver{
		ID:           uuid.New().String(),
		Name:         name,
		Phone:        phone,
		Status:       domain.DriverStatusOffline,
		RegisteredAt: time.Now(),
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

// UpdateStatus sets the driver's availability status. Going OFFLINE also
// drops the live location sample so the matcher stops seeing the driver
// before the TTL would expire it.
func (s *DriverService) UpdateStatus(ctx context.Context, driverID string, status domain.DriverStatus) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	switch status {
	case domain.DriverStatusOffline, domain.DriverStatusOnline,
		domain.DriverStatusAvailable, domain.DriverStatusOnRide:
	default:
		return ErrInvalidDriverStatus
	}

	if err := s.driverRepo.UpdateStatus(ctx, driverID, status); err != nil {
		return err
	}

	if status == domain.DriverStatusOffline {
		_ = s.locationStore.Remove(ctx, driverID)
	}
	return nil
}

// UpdateLocation writes the driver's position to the expiring Redis store
// and to the persisted snapshot on the driver record. The Redis sample is
// authoritative while it lives; the snapshot is the fallback.
func (s *DriverService) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if !isValidLatitude(lat) || !isValidLongitude(lng) {
		return ErrInvalidLocation
	}

	if err := s.locationStore.Set(ctx, driverID, lat, lng, time.Now()); err != nil {
		return err
	}
	return s.driverRepo.UpdateLocation(ctx, driverID, lat, lng)
}

// GetDriver retrieves a driver by ID.
func (s *DriverService) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.driverRepo.GetByID(ctx, driverID)
}
