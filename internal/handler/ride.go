package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"biketaxi/internal/domain"
	"biketaxi/internal/service"
)

// RideHandler handles HTTP requests for the ride lifecycle.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// RequestRideRequest is the HTTP request body for creating a ride.
type RequestRideRequest struct {
	RiderID       string  `json:"rider_id"`
	VehicleType   string  `json:"vehicle_type,omitempty"`
	PickupLat     float64 `json:"pickup_lat"`
	PickupLng     float64 `json:"pickup_lng"`
	PickupAddress string  `json:"pickup_address,omitempty"`
	DropLat       float64 `json:"drop_lat"`
	DropLng       float64 `json:"drop_lng"`
	DropAddress   string  `json:"drop_address,omitempty"`
}

// DriverActionRequest is the HTTP request body for driver-side transitions.
type DriverActionRequest struct {
	DriverID string `json:"driver_id"`
}

// VerifyOtpRequest is the HTTP request body for the OTP-verified start.
type VerifyOtpRequest struct {
	DriverID string `json:"driver_id"`
	OTP      string `json:"otp"`
}

// CancelRideRequest is the HTTP request body for cancelling a ride.
type CancelRideRequest struct {
	CancelledBy string `json:"cancelled_by"`
	Reason      string `json:"reason,omitempty"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID              string  `json:"id"`
	RiderID         string  `json:"rider_id"`
	DriverID        string  `json:"driver_id,omitempty"`
	VehicleType     string  `json:"vehicle_type,omitempty"`
	PickupLat       float64 `json:"pickup_lat"`
	PickupLng       float64 `json:"pickup_lng"`
	PickupAddress   string  `json:"pickup_address,omitempty"`
	DropLat         float64 `json:"drop_lat"`
	DropLng         float64 `json:"drop_lng"`
	DropAddress     string  `json:"drop_address,omitempty"`
	Status          string  `json:"status"`
	EstimatedFare   float64 `json:"estimated_fare"`
	FinalFare       float64 `json:"final_fare,omitempty"`
	SurgeMultiplier float64 `json:"surge_multiplier"`
	OTP             string  `json:"otp,omitempty"`
	RequestedAt     string  `json:"requested_at,omitempty"`
	AcceptedAt      string  `json:"accepted_at,omitempty"`
	StartedAt       string  `json:"started_at,omitempty"`
	CompletedAt     string  `json:"completed_at,omitempty"`
	CancelledAt     string  `json:"cancelled_at,omitempty"`
	CancelReason    string  `json:"cancel_reason,omitempty"`
}

func toRideResponse(ride *domain.Ride) RideResponse {
	return RideResponse{
		ID:              ride.ID,
		RiderID:         ride.RiderID,
		DriverID:        ride.DriverID,
		VehicleType:     string(ride.VehicleType),
		PickupLat:       ride.PickupLat,
		PickupLng:       ride.PickupLng,
		PickupAddress:   ride.PickupAddress,
		DropLat:         ride.DropLat,
		DropLng:         ride.DropLng,
		DropAddress:     ride.DropAddress,
		Status:          string(ride.Status),
		EstimatedFare:   ride.EstimatedFare,
		FinalFare:       ride.FinalFare,
		SurgeMultiplier: ride.SurgeMultiplier,
		OTP:             ride.OTP,
		RequestedAt:     formatTime(ride.RequestedAt),
		AcceptedAt:      formatTime(ride.AcceptedAt),
		StartedAt:       formatTime(ride.StartedAt),
		CompletedAt:     formatTime(ride.CompletedAt),
		CancelledAt:     formatTime(ride.CancelledAt),
		CancelReason:    ride.CancelReason,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// RequestRide handles POST /v1/rides
func (h *RideHandler) RequestRide(c *gin.Context) {
	var req RequestRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	vehicleType := domain.VehicleType(req.VehicleType)
	if vehicleType == "" {
		vehicleType = domain.VehicleTypeBike
	}

	ride, err := h.rideService.RequestRide(c.Request.Context(), service.RequestRideRequest{
		RiderID:       req.RiderID,
		VehicleType:   vehicleType,
		PickupLat:     req.PickupLat,
		PickupLng:     req.PickupLng,
		PickupAddress: req.PickupAddress,
		DropLat:       req.DropLat,
		DropLng:       req.DropLng,
		DropAddress:   req.DropAddress,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// GetAll handles GET /v1/rides with an optional rider_id filter.
func (h *RideHandler) GetAll(c *gin.Context) {
	rides, err := h.rideService.ListRides(c.Request.Context(), c.Query("rider_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, ride := range rides {
		response = append(response, toRideResponse(ride))
	}
	respondJSON(c, http.StatusOK, response)
}

// AcceptRide handles POST /v1/rides/:id/accept
func (h *RideHandler) AcceptRide(c *gin.Context) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.AcceptRide(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// VerifyOtp handles POST /v1/rides/:id/verify-otp
func (h *RideHandler) VerifyOtp(c *gin.Context) {
	var req VerifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.VerifyOtpAndStart(c.Request.Context(), c.Param("id"), req.DriverID, req.OTP)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// StartRide handles POST /v1/rides/:id/start
func (h *RideHandler) StartRide(c *gin.Context) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.StartRide(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// CompleteRide handles POST /v1/rides/:id/complete
func (h *RideHandler) CompleteRide(c *gin.Context) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.CompleteRide(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	var req CancelRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.CancelRide(c.Request.Context(), service.CancelRideRequest{
		RideID:      c.Param("id"),
		CancelledBy: req.CancelledBy,
		Reason:      req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}
