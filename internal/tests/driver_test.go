package tests

import (
	"context"
	"errors"
	"testing"

	"biketaxi/internal/domain"
	"biketaxi/internal/service"
)

func TestDriverRegister_StartsOffline(t *testing.T) {
	driverRepo := NewMockDriverRepository()
	svc := service.NewDriverService(driverRepo, NewMockDriverLocationStore())

	driver, err := svc.Register(context.Background(), "Ravi", "9800000010")
	if err != nil {
		t.Fatalf("failed to register driver: %v", err)
	}

	if driver.Status != domain.DriverStatusOffline {
		t.Errorf("expected new driver OFFLINE, got %s", driver.Status)
	}
	if driver.ID == "" {
		t.Error("expected driver ID to be assigned")
	}
	if driver.Rating != nil {
		t.Error("expected new driver to be unrated")
	}
}

func TestDriverRegister_RejectsMissingNameAndDuplicatePhone(t *testing.T) {
	driverRepo := NewMockDriverRepository()
	svc := service.NewDriverService(driverRepo, NewMockDriverLocationStore())

	if _, err := svc.Register(context.Background(), "", "9800000010"); !errors.Is(err, service.ErrMissingName) {
		t.Errorf("expected ErrMissingName, got %v", err)
	}

	if _, err := svc.Register(context.Background(), "Ravi", "9800000010"); err != nil {
		t.Fatalf("failed to register driver: %v", err)
	}
	if _, err := svc.Register(context.Background(), "Raju", "9800000010"); !errors.Is(err, service.ErrPhoneAlreadyRegistered) {
		t.Errorf("expected ErrPhoneAlreadyRegistered, got %v", err)
	}
}

func TestDriverUpdateStatus_ValidatesStatus(t *testing.T) {
	driverRepo := NewMockDriverRepository()
	svc := service.NewDriverService(driverRepo, NewMockDriverLocationStore())
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusOffline})

	if err := svc.UpdateStatus(context.Background(), "driver-1", "PARKED"); !errors.Is(err, service.ErrInvalidDriverStatus) {
		t.Errorf("expected ErrInvalidDriverStatus, got %v", err)
	}

	if err := svc.UpdateStatus(context.Background(), "driver-1", domain.DriverStatusAvailable); err != nil {
		t.Fatalf("failed to update status: %v", err)
	}
	if driverRepo.GetDriver("driver-1").Status != domain.DriverStatusAvailable {
		t.Errorf("expected AVAILABLE, got %s", driverRepo.GetDriver("driver-1").Status)
	}
}

func TestDriverUpdateStatus_GoingOfflineDropsLiveSample(t *testing.T) {
	driverRepo := NewMockDriverRepository()
	locationStore := NewMockDriverLocationStore()
	svc := service.NewDriverService(driverRepo, locationStore)

	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusAvailable})
	locationStore.AddSample("driver-1", 12.97, 77.59)

	if err := svc.UpdateStatus(context.Background(), "driver-1", domain.DriverStatusOffline); err != nil {
		t.Fatalf("failed to update status: %v", err)
	}

	if locationStore.HasSample("driver-1") {
		t.Error("expected live sample removed when driver goes offline")
	}
}

func TestDriverUpdateLocation_WritesBothStores(t *testing.T) {
	driverRepo := NewMockDriverRepository()
	locationStore := NewMockDriverLocationStore()
	svc := service.NewDriverService(driverRepo, locationStore)

	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusAvailable})

	if err := svc.UpdateLocation(context.Background(), "driver-1", 12.97, 77.59); err != nil {
		t.Fatalf("failed to update location: %v", err)
	}

	if !locationStore.HasSample("driver-1") {
		t.Error("expected live sample written")
	}
	stored := driverRepo.GetDriver("driver-1")
	if stored.LastLat == nil || *stored.LastLat != 12.97 {
		t.Error("expected persisted snapshot updated")
	}
}

func TestDriverUpdateLocation_RejectsInvalidCoordinates(t *testing.T) {
	driverRepo := NewMockDriverRepository()
	svc := service.NewDriverService(driverRepo, NewMockDriverLocationStore())
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1"})

	if err := svc.UpdateLocation(context.Background(), "driver-1", 95.0, 77.59); !errors.Is(err, service.ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}
}
