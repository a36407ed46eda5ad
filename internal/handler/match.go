package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"biketaxi/internal/domain"
	"biketaxi/internal/service"
)

// MatchHandler handles HTTP requests for nearby-driver search.
type MatchHandler struct {
	matchingService *service.MatchingService
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(matchingService *service.MatchingService) *MatchHandler {
	return &MatchHandler{matchingService: matchingService}
}

// NearbyRequest is the HTTP request body for a nearby-driver search.
type NearbyRequest struct {
	PickupLat       float64 `json:"pickup_lat"`
	PickupLng       float64 `json:"pickup_lng"`
	VehicleType     string  `json:"vehicle_type,omitempty"`
	PreferredRating float64 `json:"preferred_rating,omitempty"`
}

// NearbyDriverResponse is one ranked candidate.
type NearbyDriverResponse struct {
	DriverID         string  `json:"driver_id"`
	Name             string  `json:"name"`
	Rating           float64 `json:"rating"`
	DistanceKm       float64 `json:"distance_km"`
	EstimatedArrival string  `json:"estimated_arrival"`
}

// NearbyResponse is the HTTP response for a nearby-driver search.
type NearbyResponse struct {
	Drivers           []NearbyDriverResponse `json:"drivers"`
	SearchRadiusUsed  float64                `json:"search_radius_used_km"`
	TotalDriversFound int                    `json:"total_drivers_found"`
}

// FindNearby handles POST /v1/rides/nearby
func (h *MatchHandler) FindNearby(c *gin.Context) {
	var req NearbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.matchingService.SearchNearby(c.Request.Context(), service.NearbyRequest{
		PickupLat:   req.PickupLat,
		PickupLng:   req.PickupLng,
		VehicleType: domain.VehicleType(req.VehicleType),
		MinRating:   req.PreferredRating,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	drivers := make([]NearbyDriverResponse, 0, len(result.Drivers))
	for _, candidate := range result.Drivers {
		rating := 0.0
		if candidate.Driver.Rating != nil {
			rating = *candidate.Driver.Rating
		}
		drivers = append(drivers, NearbyDriverResponse{
			DriverID:         candidate.Driver.ID,
			Name:             candidate.Driver.Name,
			Rating:           rating,
			DistanceKm:       candidate.DistanceKm,
			EstimatedArrival: candidate.EstimatedArrival,
		})
	}

	respondJSON(c, http.StatusOK, NearbyResponse{
		Drivers:           drivers,
		SearchRadiusUsed:  result.SearchRadiusKm,
		TotalDriversFound: result.TotalFound,
	})
}
