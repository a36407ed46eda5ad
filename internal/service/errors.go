package service

import "errors"

var (
	// ErrInvalidRiderID is returned when rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidPickupLocation is returned when pickup coordinates are invalid.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDropLocation is returned when drop coordinates are invalid.
	ErrInvalidDropLocation = errors.New("invalid drop location")

	// ErrInvalidLocation is returned when location coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidOTP is returned when the submitted OTP is empty or does not
	// match the one issued at acceptance.
	ErrInvalidOTP = errors.New("invalid otp")

	// ErrInvalidDriverStatus is returned when a driver status update carries
	// an unknown status value.
	ErrInvalidDriverStatus = errors.New("invalid driver status")

	// ErrRideAlreadyAccepted is returned when a concurrent accept already
	// moved the ride out of REQUESTED.
	ErrRideAlreadyAccepted = errors.New("ride already accepted")

	// ErrRideAlreadyCancelled is returned when trying to cancel an already
	// cancelled ride.
	ErrRideAlreadyCancelled = errors.New("ride already cancelled")

	// ErrRideCannotBeCancelled is returned when the ride is in a terminal
	// state that cannot be cancelled.
	ErrRideCannotBeCancelled = errors.New("ride cannot be cancelled in current state")

	// ErrPhoneAlreadyRegistered is returned when registering a duplicate phone.
	ErrPhoneAlreadyRegistered = errors.New("phone already registered")

	// ErrMissingName is returned when a registration carries no name.
	ErrMissingName = errors.New("name is required")
)
