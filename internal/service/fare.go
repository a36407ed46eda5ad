package service

import "biketaxi/internal/domain"

// FareRates holds the tariff for one vehicle type.
type FareRates struct {
	BaseFare   float64
	RatePerKm  float64
	TimeFactor float64 // per minute
}

// fareRates is the configured tariff table. Only the bike tier is tuned;
// other vehicle types fall back to it until their tariffs are configured.
var fareRates = map[domain.VehicleType]FareRates{
	domain.VehicleTypeBike: {BaseFare: 25.0, RatePerKm: 8.0, TimeFactor: 1.0},
}

var defaultRates = FareRates{BaseFare: 25.0, RatePerKm: 8.0, TimeFactor: 1.0}

// FareBreakdown is an itemized fare estimate.
type FareBreakdown struct {
	BaseFare        float64
	DistanceCost    float64
	SurgeCost       float64
	TimeCost        float64
	TotalFare       float64
	DistanceKm      float64
	SurgeMultiplier float64
	Currency        string
}

// EstimateFare computes an itemized fare. Pure and deterministic.
//
// SurgeCost is the surcharge on the distance component: zero at surge 1.0,
// negative below 1.0 (an allowed discount, no floor is enforced).
func EstimateFare(distanceKm float64, vehicleType domain.VehicleType, surgeMultiplier float64, estimatedTimeMinutes int) FareBreakdown {
	rates, ok := fareRates[vehicleType]
	if !ok {
		rates = defaultRates
	}

	distanceCost := rates.RatePerKm * distanceKm
	surgeCost := distanceCost * (surgeMultiplier - 1)
	timeCost := rates.TimeFactor * float64(estimatedTimeMinutes)

	return FareBreakdown{
		BaseFare:        rates.BaseFare,
		DistanceCost:    distanceCost,
		SurgeCost:       surgeCost,
		TimeCost:        timeCost,
		TotalFare:       rates.BaseFare + distanceCost + surgeCost + timeCost,
		DistanceKm:      distanceKm,
		SurgeMultiplier: surgeMultiplier,
		Currency:        "INR",
	}
}
