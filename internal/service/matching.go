package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"biketaxi/internal/domain"
	"biketaxi/internal/geo"
	"biketaxi/internal/redis"
	"biketaxi/internal/repository"
)

// nearbyResultCap bounds how many candidates a radius search returns.
const nearbyResultCap = 5

// searchRadiiKm are tried in order until a radius yields candidates.
var searchRadiiKm = []float64{3, 4, 6}

// MatchingService ranks available drivers by proximity to a pickup point.
type MatchingService struct {
	driverRepo    repository.DriverRepository
	locationStore redis.DriverLocationStoreInterface
}

// NewMatchingService creates a new MatchingService.
func NewMatchingService(
	driverRepo repository.DriverRepository,
	locationStore redis.DriverLocationStoreInterface,
) *MatchingService {
	return &MatchingService{
		driverRepo:    driverRepo,
		locationStore: locationStore,
	}
}

// NearbyRequest contains the parameters for a proximity search.
type NearbyRequest struct {
	PickupLat   float64
	PickupLng   float64
	VehicleType domain.VehicleType
	MinRating   float64
	RadiusKm    float64
	MaxResults  int
}

// NearbyDriver is a ranked candidate for a pickup.
type NearbyDriver struct {
	Driver           *domain.Driver
	DistanceKm       float64
	EstimatedArrival string
}

// FindNearby scans the driver directory and returns candidates within
// RadiusKm of the pickup, ordered by ascending distance and truncated to
// MaxResults.
//
// The scan is a full enumeration of the directory, acceptable at current
// fleet scale; a geocell index would replace it before the fleet grows.
// The requested vehicle type is not yet matched against the driver's
// vehicle; every driver is assumed to serve the requested type.
func (s *MatchingService) FindNearby(ctx context.Context, req NearbyRequest) ([]NearbyDriver, error) {
	drivers, err := s.driverRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]NearbyDriver, 0, len(drivers))
	for _, driver := range drivers {
		if driver.Status != domain.DriverStatusAvailable {
			continue
		}
		// Unrated drivers are excluded; a driver at exactly MinRating passes.
		if driver.Rating == nil || *driver.Rating < req.MinRating {
			continue
		}

		lat, lng, ok := s.resolvePosition(ctx, driver)
		if !ok {
			continue
		}

		distance := geo.DistanceKm(req.PickupLat, req.PickupLng, lat, lng)
		if distance > req.RadiusKm {
			continue
		}

		matches = append(matches, NearbyDriver{
			Driver:           driver,
			DistanceKm:       distance,
			EstimatedArrival: estimateArrival(distance),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].DistanceKm < matches[j].DistanceKm
	})

	if req.MaxResults > 0 && len(matches) > req.MaxResults {
		matches = matches[:req.MaxResults]
	}
	return matches, nil
}

// resolvePosition prefers the live Redis sample over the persisted snapshot.
// A driver with neither cannot be matched.
func (s *MatchingService) resolvePosition(ctx context.Context, driver *domain.Driver) (float64, float64, bool) {
	sample, err := s.locationStore.Get(ctx, driver.ID)
	if err == nil && sample != nil {
		return sample.Lat, sample.Lng, true
	}
	if driver.LastLat != nil && driver.LastLng != nil {
		return *driver.LastLat, *driver.LastLng, true
	}
	return 0, 0, false
}

// estimateArrival formats a pickup ETA from distance at an assumed average
// speed. The constant is a tunable, not a law.
func estimateArrival(distanceKm float64) string {
	mins := int(math.Round(distanceKm / 0.5 * 2))
	return fmt.Sprintf("%d mins", mins)
}

// NearbySearchResult is the outcome of an expanding-radius search.
type NearbySearchResult struct {
	Drivers        []NearbyDriver
	SearchRadiusKm float64
	TotalFound     int
}

// SearchNearby tries successive radii and returns the first non-empty
// candidate set, tagged with the radius that produced it. When every radius
// comes up empty the result carries the largest radius attempted.
func (s *MatchingService) SearchNearby(ctx context.Context, req NearbyRequest) (*NearbySearchResult, error) {
	req.MaxResults = nearbyResultCap

	for _, radius := range searchRadiiKm {
		req.RadiusKm = radius

		drivers, err := s.FindNearby(ctx, req)
		if err != nil {
			return nil, err
		}
		if len(drivers) > 0 {
			return &NearbySearchResult{
				Drivers:        drivers,
				SearchRadiusKm: radius,
				TotalFound:     len(drivers),
			}, nil
		}
	}

	return &NearbySearchResult{
		Drivers:        []NearbyDriver{},
		SearchRadiusKm: searchRadiiKm[len(searchRadiiKm)-1],
	}, nil
}
