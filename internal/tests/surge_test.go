package tests

import (
	"context"
	"fmt"
	"testing"

	"biketaxi/internal/domain"
	"biketaxi/internal/service"
)

type surgeFixture struct {
	driverRepo    *MockDriverRepository
	locationStore *MockDriverLocationStore
	rideRepo      *MockRideRepository
	svc           *service.SurgeService
}

func newSurgeFixture() *surgeFixture {
	f := &surgeFixture{
		driverRepo:    NewMockDriverRepository(),
		locationStore: NewMockDriverLocationStore(),
		rideRepo:      NewMockRideRepository(),
	}
	f.svc = service.NewSurgeService(f.driverRepo, f.locationStore, f.rideRepo)
	return f
}

// addSupply places n connected drivers at the given point.
func (f *surgeFixture) addSupply(n int, lat, lng float64) {
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("surge-driver-%d", i)
		f.driverRepo.AddDriver(&domain.Driver{
			ID:     id,
			Status: domain.DriverStatusAvailable,
			Rating: ratingOf(4.5),
		})
		f.locationStore.AddSample(id, lat, lng)
	}
}

// addDemand creates n active ride requests picking up at the given point.
func (f *surgeFixture) addDemand(n int, lat, lng float64) {
	for i := 0; i < n; i++ {
		f.rideRepo.AddRide(&domain.Ride{
			ID:        fmt.Sprintf("surge-ride-%d", i),
			RiderID:   "rider-1",
			PickupLat: lat,
			PickupLng: lng,
			Status:    domain.RideStatusRequested,
		})
	}
}

func TestSurge_NoDemandNoSurge(t *testing.T) {
	f := newSurgeFixture()
	f.addSupply(4, 12.97, 77.59)

	if got := f.svc.GetMultiplier(context.Background(), 12.97, 77.59); got != 1.0 {
		t.Errorf("expected multiplier 1.0, got %f", got)
	}
}

func TestSurge_DemandWithoutSupplyMaxesOut(t *testing.T) {
	f := newSurgeFixture()
	f.addDemand(3, 12.97, 77.59)

	if got := f.svc.GetMultiplier(context.Background(), 12.97, 77.59); got != 2.0 {
		t.Errorf("expected max multiplier 2.0, got %f", got)
	}
}

func TestSurge_TierThresholds(t *testing.T) {
	cases := []struct {
		name     string
		supply   int
		demand   int
		expected float64
	}{
		{"balanced", 4, 4, 1.0},
		{"just below low tier", 10, 11, 1.0},
		{"low tier", 10, 12, 1.25},
		{"mid tier", 10, 15, 1.5},
		{"high tier", 10, 20, 2.0},
		{"beyond high tier stays capped", 2, 10, 2.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newSurgeFixture()
			f.addSupply(tc.supply, 12.97, 77.59)
			f.addDemand(tc.demand, 12.97, 77.59)

			if got := f.svc.GetMultiplier(context.Background(), 12.97, 77.59); got != tc.expected {
				t.Errorf("supply=%d demand=%d: expected %f, got %f", tc.supply, tc.demand, tc.expected, got)
			}
		})
	}
}

func TestSurge_IgnoresTerminalRidesAndFarAwayDemand(t *testing.T) {
	f := newSurgeFixture()
	f.addSupply(1, 12.97, 77.59)

	// Completed and cancelled rides are not demand.
	f.rideRepo.AddRide(&domain.Ride{
		ID:        "ride-done",
		PickupLat: 12.97,
		PickupLng: 77.59,
		Status:    domain.RideStatusCompleted,
	})
	f.rideRepo.AddRide(&domain.Ride{
		ID:        "ride-gone",
		PickupLat: 12.97,
		PickupLng: 77.59,
		Status:    domain.RideStatusCancelled,
	})
	// An active request far outside the radius is not demand here.
	f.rideRepo.AddRide(&domain.Ride{
		ID:        "ride-far",
		PickupLat: 13.50,
		PickupLng: 78.20,
		Status:    domain.RideStatusRequested,
	})

	if got := f.svc.GetMultiplier(context.Background(), 12.97, 77.59); got != 1.0 {
		t.Errorf("expected multiplier 1.0, got %f", got)
	}
}

func TestSurge_DisconnectedDriversDoNotCountAsSupply(t *testing.T) {
	f := newSurgeFixture()

	f.driverRepo.AddDriver(&domain.Driver{
		ID:     "driver-offline",
		Status: domain.DriverStatusOffline,
	})
	f.locationStore.AddSample("driver-offline", 12.97, 77.59)
	f.addDemand(2, 12.97, 77.59)

	// Only offline supply in the area: demand with zero supply maxes out.
	if got := f.svc.GetMultiplier(context.Background(), 12.97, 77.59); got != 2.0 {
		t.Errorf("expected max multiplier 2.0, got %f", got)
	}
}
