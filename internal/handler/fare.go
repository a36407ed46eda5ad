package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"biketaxi/internal/domain"
	"biketaxi/internal/service"
)

// FareHandler handles HTTP requests for standalone fare estimates.
type FareHandler struct {
	surgeService *service.SurgeService
}

// NewFareHandler creates a new FareHandler.
func NewFareHandler(surgeService *service.SurgeService) *FareHandler {
	return &FareHandler{surgeService: surgeService}
}

// FareEstimateResponse is the HTTP response for a fare estimate.
type FareEstimateResponse struct {
	BaseFare        float64 `json:"base_fare"`
	DistanceCost    float64 `json:"distance_cost"`
	SurgeCost       float64 `json:"surge_cost"`
	TimeCost        float64 `json:"time_cost"`
	TotalFare       float64 `json:"total_fare"`
	DistanceKm      float64 `json:"distance_km"`
	SurgeMultiplier float64 `json:"surge_multiplier"`
	Currency        string  `json:"currency"`
}

// Estimate handles GET /v1/fare/estimate.
//
// When the surge parameter is omitted and pickup coordinates are given, the
// surge multiplier is computed from live supply and demand at the pickup.
func (h *FareHandler) Estimate(c *gin.Context) {
	distanceKm, err := strconv.ParseFloat(c.Query("distance_km"), 64)
	if err != nil || distanceKm < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid distance_km"})
		return
	}

	minutes := 15
	if v := c.Query("minutes"); v != "" {
		minutes, err = strconv.Atoi(v)
		if err != nil || minutes < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid minutes"})
			return
		}
	}

	vehicleType := domain.VehicleType(c.DefaultQuery("vehicle_type", string(domain.VehicleTypeBike)))

	surge := 1.0
	if v := c.Query("surge"); v != "" {
		surge, err = strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid surge"})
			return
		}
	} else if h.surgeService != nil {
		lat, latErr := strconv.ParseFloat(c.Query("pickup_lat"), 64)
		lng, lngErr := strconv.ParseFloat(c.Query("pickup_lng"), 64)
		if latErr == nil && lngErr == nil {
			surge = h.surgeService.GetMultiplier(c.Request.Context(), lat, lng)
		}
	}

	breakdown := service.EstimateFare(distanceKm, vehicleType, surge, minutes)

	respondJSON(c, http.StatusOK, FareEstimateResponse{
		BaseFare:        breakdown.BaseFare,
		DistanceCost:    breakdown.DistanceCost,
		SurgeCost:       breakdown.SurgeCost,
		TimeCost:        breakdown.TimeCost,
		TotalFare:       breakdown.TotalFare,
		DistanceKm:      breakdown.DistanceKm,
		SurgeMultiplier: breakdown.SurgeMultiplier,
		Currency:        breakdown.Currency,
	})
}
