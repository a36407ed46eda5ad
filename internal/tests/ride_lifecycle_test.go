package tests

import (
	"context"
	"errors"
	"math"
	"testing"

	"biketaxi/internal/domain"
	"biketaxi/internal/repository"
	"biketaxi/internal/service"
)

type rideFixture struct {
	rideRepo   *MockRideRepository
	userRepo   *MockUserRepository
	driverRepo *MockDriverRepository
	sink       *RecordingSink
	svc        *service.RideService
}

func newRideFixture() *rideFixture {
	f := &rideFixture{
		rideRepo:   NewMockRideRepository(),
		userRepo:   NewMockUserRepository(),
		driverRepo: NewMockDriverRepository(),
		sink:       NewRecordingSink(),
	}
	f.svc = service.NewRideService(f.rideRepo, f.userRepo, f.driverRepo, f.sink)
	f.userRepo.AddUser(&domain.User{ID: "rider-1", Name: "Asha", Phone: "9800000001"})
	f.driverRepo.AddDriver(&domain.Driver{
		ID:     "driver-1",
		Name:   "Ravi",
		Status: domain.DriverStatusAvailable,
		Rating: ratingOf(4.6),
	})
	return f
}

func (f *rideFixture) requestRide(t *testing.T) *domain.Ride {
	t.Helper()
	ride, err := f.svc.RequestRide(context.Background(), service.RequestRideRequest{
		RiderID:     "rider-1",
		VehicleType: domain.VehicleTypeBike,
		PickupLat:   12.97,
		PickupLng:   77.59,
		DropLat:     13.00,
		DropLng:     77.62,
	})
	if err != nil {
		t.Fatalf("failed to request ride: %v", err)
	}
	return ride
}

func TestRequestRide_CreatesRequestedRideWithEstimate(t *testing.T) {
	f := newRideFixture()

	ride := f.requestRide(t)

	if ride.Status != domain.RideStatusRequested {
		t.Errorf("expected status REQUESTED, got %s", ride.Status)
	}
	if ride.SurgeMultiplier != 1.0 {
		t.Errorf("expected surge 1.0 at request time, got %f", ride.SurgeMultiplier)
	}

	// Estimate uses the flat planar distance, not haversine.
	distanceKm := math.Sqrt(math.Pow(12.97-13.00, 2)+math.Pow(77.59-77.62, 2)) * 111
	expected := service.EstimateFare(distanceKm, domain.VehicleTypeBike, 1.0, 15).TotalFare
	if math.Abs(ride.EstimatedFare-expected) > 1e-9 {
		t.Errorf("expected estimated fare %f, got %f", expected, ride.EstimatedFare)
	}

	if f.sink.CountFor(service.ChannelRider, "rider-1") != 1 {
		t.Errorf("expected one rider notification, got %d", f.sink.CountFor(service.ChannelRider, "rider-1"))
	}
	if f.rideRepo.CountRides() != 1 {
		t.Errorf("expected 1 stored ride, got %d", f.rideRepo.CountRides())
	}
}

func TestRequestRide_UnknownRider(t *testing.T) {
	f := newRideFixture()

	_, err := f.svc.RequestRide(context.Background(), service.RequestRideRequest{
		RiderID:   "rider-missing",
		PickupLat: 12.97,
		PickupLng: 77.59,
		DropLat:   13.00,
		DropLng:   77.62,
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRequestRide_RejectsInvalidCoordinates(t *testing.T) {
	f := newRideFixture()

	_, err := f.svc.RequestRide(context.Background(), service.RequestRideRequest{
		RiderID:   "rider-1",
		PickupLat: 91.0,
		PickupLng: 77.59,
		DropLat:   13.00,
		DropLng:   77.62,
	})
	if !errors.Is(err, service.ErrInvalidPickupLocation) {
		t.Errorf("expected ErrInvalidPickupLocation, got %v", err)
	}

	_, err = f.svc.RequestRide(context.Background(), service.RequestRideRequest{
		RiderID:   "rider-1",
		PickupLat: 12.97,
		PickupLng: 77.59,
		DropLat:   13.00,
		DropLng:   181.0,
	})
	if !errors.Is(err, service.ErrInvalidDropLocation) {
		t.Errorf("expected ErrInvalidDropLocation, got %v", err)
	}
}

func TestAcceptRide_AssignsDriverAndIssuesOtp(t *testing.T) {
	f := newRideFixture()
	ride := f.requestRide(t)
	f.sink.Reset()

	accepted, err := f.svc.AcceptRide(context.Background(), ride.ID, "driver-1")
	if err != nil {
		t.Fatalf("failed to accept ride: %v", err)
	}

	if accepted.Status != domain.RideStatusAccepted {
		t.Errorf("expected status ACCEPTED, got %s", accepted.Status)
	}
	if accepted.DriverID != "driver-1" {
		t.Errorf("expected driver-1 assigned, got %s", accepted.DriverID)
	}

	// OTP is a 4-digit numeric code.
	if len(accepted.OTP) != 4 {
		t.Fatalf("expected 4-digit OTP, got %q", accepted.OTP)
	}
	for _, r := range accepted.OTP {
		if r < '0' || r > '9' {
			t.Fatalf("expected numeric OTP, got %q", accepted.OTP)
		}
	}

	// Driver leaves the matchable pool.
	if f.driverRepo.GetDriver("driver-1").Status != domain.DriverStatusOnRide {
		t.Errorf("expected driver ON_RIDE, got %s", f.driverRepo.GetDriver("driver-1").Status)
	}

	if f.sink.CountFor(service.ChannelRider, "rider-1") != 1 {
		t.Errorf("expected rider notified of accept")
	}
	if f.sink.CountFor(service.ChannelDriver, "driver-1") != 1 {
		t.Errorf("expected driver notified of accept")
	}
}

func TestAcceptRide_SecondAcceptLoses(t *testing.T) {
	f := newRideFixture()
	f.driverRepo.AddDriver(&domain.Driver{
		ID:     "driver-2",
		Status: domain.DriverStatusAvailable,
		Rating: ratingOf(4.2),
	})
	ride := f.requestRide(t)

	if _, err := f.svc.AcceptRide(context.Background(), ride.ID, "driver-1"); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}

	_, err := f.svc.AcceptRide(context.Background(), ride.ID, "driver-2")
	if !errors.Is(err, service.ErrRideAlreadyAccepted) {
		t.Fatalf("expected ErrRideAlreadyAccepted, got %v", err)
	}

	// The stored ride keeps the first driver.
	if stored := f.rideRepo.GetRide(ride.ID); stored.DriverID != "driver-1" {
		t.Errorf("expected driver-1 to keep the ride, got %s", stored.DriverID)
	}
}

func TestAcceptRide_CancelledRideReportsCancellation(t *testing.T) {
	f := newRideFixture()
	ride := f.requestRide(t)
	if _, err := f.svc.CancelRide(context.Background(), service.CancelRideRequest{RideID: ride.ID}); err != nil {
		t.Fatalf("failed to cancel ride: %v", err)
	}

	_, err := f.svc.AcceptRide(context.Background(), ride.ID, "driver-1")
	if !errors.Is(err, service.ErrRideAlreadyCancelled) {
		t.Fatalf("expected ErrRideAlreadyCancelled, got %v", err)
	}
}

func TestAcceptRide_StartedRideReportsAlreadyAccepted(t *testing.T) {
	f := newRideFixture()
	ride := f.requestRide(t)
	if _, err := f.svc.StartRide(context.Background(), ride.ID, "driver-1"); err != nil {
		t.Fatalf("failed to start ride: %v", err)
	}

	_, err := f.svc.AcceptRide(context.Background(), ride.ID, "driver-1")
	if !errors.Is(err, service.ErrRideAlreadyAccepted) {
		t.Fatalf("expected ErrRideAlreadyAccepted, got %v", err)
	}
}

func TestVerifyOtp_WrongCodeLeavesRideUntouched(t *testing.T) {
	f := newRideFixture()
	ride := f.requestRide(t)
	accepted, err := f.svc.AcceptRide(context.Background(), ride.ID, "driver-1")
	if err != nil {
		t.Fatalf("failed to accept ride: %v", err)
	}
	f.sink.Reset()

	wrong := "0000"
	if accepted.OTP == wrong {
		wrong = "0001"
	}

	_, err = f.svc.VerifyOtpAndStart(context.Background(), ride.ID, "driver-1", wrong)
	if !errors.Is(err, service.ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP, got %v", err)
	}

	if stored := f.rideRepo.GetRide(ride.ID); stored.Status != domain.RideStatusAccepted {
		t.Errorf("expected ride still ACCEPTED, got %s", stored.Status)
	}
	if len(f.sink.Notifications()) != 0 {
		t.Errorf("expected no notifications on OTP mismatch, got %d", len(f.sink.Notifications()))
	}
}

func TestVerifyOtp_EmptyCodeRejected(t *testing.T) {
	f := newRideFixture()
	ride := f.requestRide(t)
	if _, err := f.svc.AcceptRide(context.Background(), ride.ID, "driver-1"); err != nil {
		t.Fatalf("failed to accept ride: %v", err)
	}

	_, err := f.svc.VerifyOtpAndStart(context.Background(), ride.ID, "driver-1", "")
	if !errors.Is(err, service.ErrInvalidOTP) {
		t.Errorf("expected ErrInvalidOTP for empty code, got %v", err)
	}
}

func TestVerifyOtp_CorrectCodeStartsRide(t *testing.T) {
	f := newRideFixture()
	ride := f.requestRide(t)
	accepted, err := f.svc.AcceptRide(context.Background(), ride.ID, "driver-1")
	if err != nil {
		t.Fatalf("failed to accept ride: %v", err)
	}
	f.sink.Reset()

	started, err := f.svc.VerifyOtpAndStart(context.Background(), ride.ID, "driver-1", accepted.OTP)
	if err != nil {
		t.Fatalf("failed to verify OTP: %v", err)
	}

	if started.Status != domain.RideStatusStarted {
		t.Errorf("expected status STARTED, got %s", started.Status)
	}
	if started.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}
	if f.sink.CountFor(service.ChannelRider, "rider-1") != 1 || f.sink.CountFor(service.ChannelDriver, "driver-1") != 1 {
		t.Error("expected rider and driver notified of start")
	}
}

func TestVerifyOtp_CodeStaysValidAfterStart(t *testing.T) {
	f := newRideFixture()
	ride := f.requestRide(t)
	accepted, err := f.svc.AcceptRide(context.Background(), ride.ID, "driver-1")
	if err != nil {
		t.Fatalf("failed to accept ride: %v", err)
	}
	if _, err := f.svc.VerifyOtpAndStart(context.Background(), ride.ID, "driver-1", accepted.OTP); err != nil {
		t.Fatalf("failed to start ride: %v", err)
	}

	// The code is never cleared, so verifying again on a started ride succeeds.
	replayed, err := f.svc.VerifyOtpAndStart(context.Background(), ride.ID, "driver-1", accepted.OTP)
	if err != nil {
		t.Fatalf("expected replayed code to still verify, got %v", err)
	}
	if replayed.Status != domain.RideStatusStarted {
		t.Errorf("expected ride to remain STARTED, got %s", replayed.Status)
	}
}

func TestStartRide_BypassesOtpAndStateChecks(t *testing.T) {
	f := newRideFixture()
	ride := f.requestRide(t)

	// No accept, no OTP: the fallback start still transitions.
	started, err := f.svc.StartRide(context.Background(), ride.ID, "driver-1")
	if err != nil {
		t.Fatalf("failed to start ride: %v", err)
	}
	if started.Status != domain.RideStatusStarted {
		t.Errorf("expected status STARTED, got %s", started.Status)
	}
}

func TestCompleteRide_IncrementsRideCounters(t *testing.T) {
	f := newRideFixture()
	ride := f.requestRide(t)
	accepted, err := f.svc.AcceptRide(context.Background(), ride.ID, "driver-1")
	if err != nil {
		t.Fatalf("failed to accept ride: %v", err)
	}
	if _, err := f.svc.VerifyOtpAndStart(context.Background(), ride.ID, "driver-1", accepted.OTP); err != nil {
		t.Fatalf("failed to start ride: %v", err)
	}

	completed, err := f.svc.CompleteRide(context.Background(), ride.ID, "driver-1")
	if err != nil {
		t.Fatalf("failed to complete ride: %v", err)
	}

	if completed.Status != domain.RideStatusCompleted {
		t.Errorf("expected status COMPLETED, got %s", completed.Status)
	}
	if got := f.driverRepo.GetDriver("driver-1").TotalRides; got != 1 {
		t.Errorf("expected driver ride count 1, got %d", got)
	}
	if got := f.userRepo.GetUser("rider-1").TotalRides; got != 1 {
		t.Errorf("expected rider ride count 1, got %d", got)
	}
	if f.driverRepo.GetDriver("driver-1").Status != domain.DriverStatusAvailable {
		t.Errorf("expected driver back to AVAILABLE, got %s", f.driverRepo.GetDriver("driver-1").Status)
	}
}

func TestCompleteRide_DoubleCompletionDoubleCounts(t *testing.T) {
	f := newRideFixture()
	ride := f.requestRide(t)
	if _, err := f.svc.AcceptRide(context.Background(), ride.ID, "driver-1"); err != nil {
		t.Fatalf("failed to accept ride: %v", err)
	}

	// Completion is unguarded; a replay bumps the counters again.
	if _, err := f.svc.CompleteRide(context.Background(), ride.ID, "driver-1"); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	if _, err := f.svc.CompleteRide(context.Background(), ride.ID, "driver-1"); err != nil {
		t.Fatalf("second completion failed: %v", err)
	}

	if got := f.driverRepo.GetDriver("driver-1").TotalRides; got != 2 {
		t.Errorf("expected driver ride count 2 after replayed completion, got %d", got)
	}
	if got := f.userRepo.GetUser("rider-1").TotalRides; got != 2 {
		t.Errorf("expected rider ride count 2 after replayed completion, got %d", got)
	}
}

func TestCancelRide_RequestedRideNotifiesRiderOnly(t *testing.T) {
	f := newRideFixture()
	ride := f.requestRide(t)
	f.sink.Reset()

	cancelled, err := f.svc.CancelRide(context.Background(), service.CancelRideRequest{
		RideID:      ride.ID,
		CancelledBy: "rider-1",
		Reason:      "changed plans",
	})
	if err != nil {
		t.Fatalf("failed to cancel ride: %v", err)
	}

	if cancelled.Status != domain.RideStatusCancelled {
		t.Errorf("expected status CANCELLED, got %s", cancelled.Status)
	}
	if cancelled.CancelReason != "changed plans" {
		t.Errorf("expected cancel reason recorded, got %q", cancelled.CancelReason)
	}
	if f.sink.CountFor(service.ChannelRider, "rider-1") != 1 {
		t.Errorf("expected rider notified of cancel")
	}
	if f.sink.CountFor(service.ChannelDriver, "driver-1") != 0 {
		t.Errorf("expected no driver notification for an unassigned ride")
	}
}

func TestCancelRide_AcceptedRideNotifiesBothAndFreesDriver(t *testing.T) {
	f := newRideFixture()
	ride := f.requestRide(t)
	if _, err := f.svc.AcceptRide(context.Background(), ride.ID, "driver-1"); err != nil {
		t.Fatalf("failed to accept ride: %v", err)
	}
	f.sink.Reset()

	_, err := f.svc.CancelRide(context.Background(), service.CancelRideRequest{
		RideID:      ride.ID,
		CancelledBy: "rider-1",
	})
	if err != nil {
		t.Fatalf("failed to cancel ride: %v", err)
	}

	if f.sink.CountFor(service.ChannelRider, "rider-1") != 1 {
		t.Errorf("expected rider notified of cancel")
	}
	if f.sink.CountFor(service.ChannelDriver, "driver-1") != 1 {
		t.Errorf("expected driver notified of cancel")
	}
	if f.driverRepo.GetDriver("driver-1").Status != domain.DriverStatusAvailable {
		t.Errorf("expected driver back to AVAILABLE, got %s", f.driverRepo.GetDriver("driver-1").Status)
	}
}

func TestCancelRide_TerminalStatesRejected(t *testing.T) {
	f := newRideFixture()
	ride := f.requestRide(t)

	if _, err := f.svc.CancelRide(context.Background(), service.CancelRideRequest{RideID: ride.ID}); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}

	_, err := f.svc.CancelRide(context.Background(), service.CancelRideRequest{RideID: ride.ID})
	if !errors.Is(err, service.ErrRideAlreadyCancelled) {
		t.Errorf("expected ErrRideAlreadyCancelled, got %v", err)
	}

	completedRide := f.requestRide(t)
	if _, err := f.svc.CompleteRide(context.Background(), completedRide.ID, ""); err != nil {
		t.Fatalf("failed to complete ride: %v", err)
	}
	_, err = f.svc.CancelRide(context.Background(), service.CancelRideRequest{RideID: completedRide.ID})
	if !errors.Is(err, service.ErrRideCannotBeCancelled) {
		t.Errorf("expected ErrRideCannotBeCancelled, got %v", err)
	}
}

func TestCancelRide_UnknownRide(t *testing.T) {
	f := newRideFixture()

	_, err := f.svc.CancelRide(context.Background(), service.CancelRideRequest{RideID: "ride-missing"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListRides_FiltersByRider(t *testing.T) {
	f := newRideFixture()
	f.userRepo.AddUser(&domain.User{ID: "rider-2", Name: "Meera", Phone: "9800000002"})

	f.requestRide(t)
	f.requestRide(t)
	if _, err := f.svc.RequestRide(context.Background(), service.RequestRideRequest{
		RiderID:   "rider-2",
		PickupLat: 12.90,
		PickupLng: 77.50,
		DropLat:   12.95,
		DropLng:   77.55,
	}); err != nil {
		t.Fatalf("failed to request ride: %v", err)
	}

	mine, err := f.svc.ListRides(context.Background(), "rider-1")
	if err != nil {
		t.Fatalf("failed to list rides: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("expected 2 rides for rider-1, got %d", len(mine))
	}

	all, err := f.svc.ListRides(context.Background(), "")
	if err != nil {
		t.Fatalf("failed to list rides: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 rides total, got %d", len(all))
	}
}
