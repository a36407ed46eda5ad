package service

import (
	"context"

	"biketaxi/internal/domain"
	"biketaxi/internal/geo"
	"biketaxi/internal/redis"
	"biketaxi/internal/repository"
)

// SurgeService calculates surge pricing based on supply and demand around a
// point. It backs the standalone fare estimate endpoint; ride creation keeps
// a flat multiplier.
type SurgeService struct {
	driverRepo    repository.DriverRepository
	locationStore redis.DriverLocationStoreInterface
	rideRepo      repository.RideRepository
}

// NewSurgeService creates a new SurgeService.
func NewSurgeService(
	driverRepo repository.DriverRepository,
	locationStore redis.DriverLocationStoreInterface,
	rideRepo repository.RideRepository,
) *SurgeService {
	return &SurgeService{
		driverRepo:    driverRepo,
		locationStore: locationStore,
		rideRepo:      rideRepo,
	}
}

// SurgeConfig contains surge pricing configuration.
type SurgeConfig struct {
	RadiusKm       float64 // Radius to check for supply/demand
	LowSurgeRatio  float64 // Demand/supply ratio for 1.25x surge
	MedSurgeRatio  float64 // Demand/supply ratio for 1.5x surge
	HighSurgeRatio float64 // Demand/supply ratio for 2.0x surge
	MaxSurge       float64 // Maximum surge multiplier
}

// DefaultSurgeConfig returns the default surge configuration.
func DefaultSurgeConfig() SurgeConfig {
	return SurgeConfig{
		RadiusKm:       5.0,
		LowSurgeRatio:  1.2,
		MedSurgeRatio:  1.5,
		HighSurgeRatio: 2.0,
		MaxSurge:       2.0,
	}
}

// GetMultiplier calculates the surge multiplier for a given location.
// Returns 1.0 if no surge, up to MaxSurge if demand outruns supply.
func (s *SurgeService) GetMultiplier(ctx context.Context, lat, lng float64) float64 {
	config := DefaultSurgeConfig()

	supply := s.countDriversInArea(ctx, lat, lng, config.RadiusKm)
	demand := s.countActiveRequestsInArea(ctx, lat, lng, config.RadiusKm)

	return calculateSurgeMultiplier(supply, demand, config)
}

// countDriversInArea returns the number of matchable drivers within radius.
// Drivers already on a ride are demand-side, not supply.
func (s *SurgeService) countDriversInArea(ctx context.Context, lat, lng, radiusKm float64) int {
	drivers, err := s.driverRepo.GetAll(ctx)
	if err != nil {
		// Fail open with a roomy default supply so an outage never fakes
		// a surge.
		return 10
	}

	count := 0
	for _, driver := range drivers {
		if driver.Status != domain.DriverStatusAvailable {
			continue
		}

		var dLat, dLng float64
		if sample, err := s.locationStore.Get(ctx, driver.ID); err == nil && sample != nil {
			dLat, dLng = sample.Lat, sample.Lng
		} else if driver.LastLat != nil && driver.LastLng != nil {
			dLat, dLng = *driver.LastLat, *driver.LastLng
		} else {
			continue
		}

		if geo.DistanceKm(lat, lng, dLat, dLng) <= radiusKm {
			count++
		}
	}
	return count
}

// countActiveRequestsInArea returns the number of active rides whose pickup
// falls in the area. Distance uses a planar approximation; demand counting
// does not need haversine precision.
func (s *SurgeService) countActiveRequestsInArea(ctx context.Context, lat, lng, radiusKm float64) int {
	rides, err := s.rideRepo.GetAll(ctx)
	if err != nil {
		return 0
	}

	count := 0
	for _, ride := range rides {
		if ride.Status.Terminal() {
			continue
		}

		latDiff := ride.PickupLat - lat
		lngDiff := ride.PickupLng - lng

		// 1 degree is roughly 111 km at the equator.
		distSq := (latDiff*latDiff + lngDiff*lngDiff) * 111 * 111
		if distSq <= radiusKm*radiusKm {
			count++
		}
	}
	return count
}

// calculateSurgeMultiplier determines the multiplier from the demand/supply
// ratio.
func calculateSurgeMultiplier(supply, demand int, config SurgeConfig) float64 {
	if supply == 0 {
		if demand > 0 {
			return config.MaxSurge
		}
		return 1.0
	}

	ratio := float64(demand) / float64(supply)
	switch {
	case ratio >= config.HighSurgeRatio:
		return config.MaxSurge
	case ratio >= config.MedSurgeRatio:
		return 1.5
	case ratio >= config.LowSurgeRatio:
		return 1.25
	default:
		return 1.0
	}
}
