package service

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"biketaxi/internal/domain"
	"biketaxi/internal/repository"
)

// Fare estimation at request time uses a flat planar approximation of the
// pickup-to-drop distance, a fixed trip duration and no surge. Matching
// uses the haversine formula instead; the mismatch is intentional and kept
// for parity with the tariffs riders already see.
const (
	degreesToKm          = 111
	requestTimeSurge     = 1.0
	requestTimeEtaMinute = 15
)

// RideService owns the ride lifecycle state machine.
type RideService struct {
	rideRepo   repository.RideRepository
	userRepo   repository.UserRepository
	driverRepo repository.DriverRepository
	sink       NotificationSink
}

// NewRideService creates a new RideService. The sink may be nil; all
// notifications are best-effort.
func NewRideService(
	rideRepo repository.RideRepository,
	userRepo repository.UserRepository,
	driverRepo repository.DriverRepository,
	sink NotificationSink,
) *RideService {
	return &RideService{
		rideRepo:   rideRepo,
		userRepo:   userRepo,
		driverRepo: driverRepo,
		sink:       sink,
	}
}

// RequestRideRequest contains the parameters for creating a ride.
type RequestRideRequest struct {
	RiderID       string
	VehicleType   domain.VehicleType
	PickupLat     float64
	PickupLng     float64
	PickupAddress string
	DropLat       float64
	DropLng       float64
	DropAddress   string
}

// RequestRide creates a ride in REQUESTED state with an estimated fare.
func (s *RideService) RequestRide(ctx context.Context, req RequestRideRequest) (*domain.Ride, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	rider, err := s.userRepo.GetByID(ctx, req.RiderID)
	if err != nil {
		return nil, err
	}

	distanceKm := planarDistanceKm(req.PickupLat, req.PickupLng, req.DropLat, req.DropLng)
	fare := EstimateFare(distanceKm, req.VehicleType, requestTimeSurge, requestTimeEtaMinute)

	ride := &domain.Ride{
		ID:              uuid.New().String(),
		RiderID:         rider.ID,
		VehicleType:     req.VehicleType,
		PickupLat:       req.PickupLat,
		PickupLng:       req.PickupLng,
		PickupAddress:   req.PickupAddress,
		DropLat:         req.DropLat,
		DropLng:         req.DropLng,
		DropAddress:     req.DropAddress,
		Status:          domain.RideStatusRequested,
		EstimatedFare:   fare.TotalFare,
		SurgeMultiplier: requestTimeSurge,
		RequestedAt:     time.Now(),
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	s.notify(ctx, ChannelRider, ride.RiderID, EventRideRequested, ride)
	return ride, nil
}

// AcceptRide assigns a driver and issues the OTP. The REQUESTED->ACCEPTED
// transition is a compare-and-set: of two concurrent accepts exactly one
// wins, the loser gets ErrRideAlreadyAccepted.
func (s *RideService) AcceptRide(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	// A ride that already left REQUESTED reports why, not a generic race.
	switch {
	case ride.Status == domain.RideStatusCancelled:
		return nil, ErrRideAlreadyCancelled
	case ride.Status != domain.RideStatusRequested:
		return nil, ErrRideAlreadyAccepted
	}

	ride.DriverID = driver.ID
	ride.Status = domain.RideStatusAccepted
	ride.AcceptedAt = time.Now()
	ride.OTP = generateOTP()

	if err := s.rideRepo.UpdateIfStatus(ctx, ride, domain.RideStatusRequested); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrRideAlreadyAccepted
		}
		return nil, err
	}

	// The driver leaves the matchable pool. Best effort; the accepted ride
	// is already the source of truth.
	_ = s.driverRepo.UpdateStatus(ctx, driver.ID, domain.DriverStatusOnRide)

	s.notify(ctx, ChannelRider, ride.RiderID, EventRideAccepted, ride)
	s.notify(ctx, ChannelDriver, driver.ID, EventRideAccepted, ride)
	return ride, nil
}

// VerifyOtpAndStart moves an accepted ride to STARTED when the submitted
// OTP matches the issued one. On mismatch the ride is left untouched and
// no notification is sent. The OTP is not invalidated after a successful
// start; the stored code keeps matching on replay.
func (s *RideService) VerifyOtpAndStart(ctx context.Context, rideID, driverID, otp string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if otp == "" || otp != ride.OTP {
		return nil, ErrInvalidOTP
	}

	ride.Status = domain.RideStatusStarted
	ride.StartedAt = time.Now()

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	s.notify(ctx, ChannelRider, ride.RiderID, EventRideStarted, ride)
	s.notify(ctx, ChannelDriver, driverID, EventRideStarted, ride)
	return ride, nil
}

// StartRide moves a ride to STARTED without any OTP or state check. This
// bypass mirrors the driver-app fallback flow and contradicts the OTP gate;
// it is kept until the product owner retires it.
func (s *RideService) StartRide(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	ride.Status = domain.RideStatusStarted
	ride.StartedAt = time.Now()

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	s.notify(ctx, ChannelRider, ride.RiderID, EventRideStarted, ride)
	s.notify(ctx, ChannelDriver, driverID, EventRideStarted, ride)
	return ride, nil
}

// CompleteRide moves a ride to COMPLETED and bumps both ride counters.
// Calling it twice double-increments; completion is not guarded today.
func (s *RideService) CompleteRide(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	ride.Status = domain.RideStatusCompleted
	ride.CompletedAt = time.Now()

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	if ride.DriverID != "" {
		_ = s.driverRepo.IncrementRides(ctx, ride.DriverID)
		_ = s.driverRepo.UpdateStatus(ctx, ride.DriverID, domain.DriverStatusAvailable)
	}
	_ = s.userRepo.IncrementRides(ctx, ride.RiderID)

	s.notify(ctx, ChannelRider, ride.RiderID, EventRideCompleted, ride)
	s.notify(ctx, ChannelDriver, driverID, EventRideCompleted, ride)
	return ride, nil
}

// CancelRideRequest contains the parameters for cancelling a ride.
type CancelRideRequest struct {
	RideID      string
	CancelledBy string
	Reason      string
}

// CancelRide cancels a ride from any non-terminal state.
func (s *RideService) CancelRide(ctx context.Context, req CancelRideRequest) (*domain.Ride, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	if ride.Status == domain.RideStatusCancelled {
		return nil, ErrRideAlreadyCancelled
	}
	if ride.Status.Terminal() {
		return nil, ErrRideCannotBeCancelled
	}

	ride.Status = domain.RideStatusCancelled
	ride.CancelledAt = time.Now()
	ride.CancelReason = req.Reason

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	if ride.DriverID != "" {
		_ = s.driverRepo.UpdateStatus(ctx, ride.DriverID, domain.DriverStatusAvailable)
	}

	s.notify(ctx, ChannelRider, ride.RiderID, EventRideCancelled, ride)
	if ride.DriverID != "" {
		s.notify(ctx, ChannelDriver, ride.DriverID, EventRideCancelled, ride)
	}
	return ride, nil
}

// GetRide retrieves a ride by ID.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	return s.rideRepo.GetByID(ctx, rideID)
}

// ListRides returns ride history, optionally filtered by rider.
func (s *RideService) ListRides(ctx context.Context, riderID string) ([]*domain.Ride, error) {
	if riderID != "" {
		return s.rideRepo.GetByRider(ctx, riderID)
	}
	return s.rideRepo.GetAll(ctx)
}

func (s *RideService) validateRequest(req RequestRideRequest) error {
	if req.RiderID == "" {
		return ErrInvalidRiderID
	}
	if !isValidLatitude(req.PickupLat) || !isValidLongitude(req.PickupLng) {
		return ErrInvalidPickupLocation
	}
	if !isValidLatitude(req.DropLat) || !isValidLongitude(req.DropLng) {
		return ErrInvalidDropLocation
	}
	return nil
}

func (s *RideService) notify(ctx context.Context, channel Channel, id, event string, ride *domain.Ride) {
	if s.sink == nil || id == "" {
		return
	}
	s.sink.Notify(ctx, channel, id, event, ride)
}

// generateOTP returns a 4-digit numeric code in [1000, 9999].
func generateOTP() string {
	return strconv.Itoa(1000 + rand.Intn(9000))
}

// planarDistanceKm approximates pickup-to-drop distance as a straight line
// in degree space scaled to kilometers.
func planarDistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	return math.Sqrt(math.Pow(lat1-lat2, 2)+math.Pow(lng1-lng2, 2)) * degreesToKm
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
