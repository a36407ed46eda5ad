package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	driverLocationKeyPrefix = "driver:location:"
	driverLocationTTL       = 60 * time.Second

	rideLocationKeyPrefix = "ride:location:"
	rideLocationTTL       = 10 * time.Minute
)

// LocationSample is a driver's last reported position.
type LocationSample struct {
	Lat       float64
	Lng       float64
	Timestamp time.Time
}

// DriverLocationStore holds ephemeral driver positions in Redis. Entries
// expire after 60 seconds; readers fall back to the persisted position on
// the driver record when a sample is gone.
type DriverLocationStore struct {
	client *redis.Client
}

// NewDriverLocationStore creates a new DriverLocationStore.
func NewDriverLocationStore(client *redis.Client) *DriverLocationStore {
	return &DriverLocationStore{client: client}
}

// Set stores a driver's position and re-arms the TTL.
func (s *DriverLocationStore) Set(ctx context.Context, driverID string, lat, lng float64, at time.Time) error {
	key := driverLocationKeyPrefix + driverID

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, "lat", lat, "lng", lng, "timestamp", at.UnixMilli())
	pipe.Expire(ctx, key, driverLocationTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Get returns the driver's live position, or nil when no fresh sample exists.
func (s *DriverLocationStore) Get(ctx context.Context, driverID string) (*LocationSample, error) {
	values, err := s.client.HGetAll(ctx, driverLocationKeyPrefix+driverID).Result()
	if err != nil {
		return nil, err
	}
	return parseSample(values)
}

// Remove deletes the driver's live position.
func (s *DriverLocationStore) Remove(ctx context.Context, driverID string) error {
	return s.client.Del(ctx, driverLocationKeyPrefix+driverID).Err()
}

// RideLocationStore holds the latest in-trip position per ride. The TTL is
// longer than the driver ping TTL because samples keep arriving for the
// whole trip.
type RideLocationStore struct {
	client *redis.Client
}

// NewRideLocationStore creates a new RideLocationStore.
func NewRideLocationStore(client *redis.Client) *RideLocationStore {
	return &RideLocationStore{client: client}
}

// Set stores the latest in-trip position for a ride.
func (s *RideLocationStore) Set(ctx context.Context, rideID string, lat, lng float64, at time.Time) error {
	key := rideLocationKeyPrefix + rideID

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, "lat", lat, "lng", lng, "timestamp", at.UnixMilli())
	pipe.Expire(ctx, key, rideLocationTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Get returns the latest in-trip position, or nil when none is live.
func (s *RideLocationStore) Get(ctx context.Context, rideID string) (*LocationSample, error) {
	values, err := s.client.HGetAll(ctx, rideLocationKeyPrefix+rideID).Result()
	if err != nil {
		return nil, err
	}
	return parseSample(values)
}

func parseSample(values map[string]string) (*LocationSample, error) {
	if len(values) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(values["lat"], 64)
	if err != nil {
		return nil, err
	}
	lng, err := strconv.ParseFloat(values["lng"], 64)
	if err != nil {
		return nil, err
	}

	sample := &LocationSample{Lat: lat, Lng: lng}
	if ms, err := strconv.ParseInt(values["timestamp"], 10, 64); err == nil {
		sample.Timestamp = time.UnixMilli(ms)
	}
	return sample, nil
}
