package tests

import (
	"math"
	"testing"

	"biketaxi/internal/domain"
	"biketaxi/internal/service"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEstimateFare_BikeTenKilometers(t *testing.T) {
	fare := service.EstimateFare(10, domain.VehicleTypeBike, 1.0, 15)

	if !almostEqual(fare.BaseFare, 25.0) {
		t.Errorf("expected base fare 25, got %f", fare.BaseFare)
	}
	if !almostEqual(fare.DistanceCost, 80.0) {
		t.Errorf("expected distance cost 80, got %f", fare.DistanceCost)
	}
	if !almostEqual(fare.SurgeCost, 0.0) {
		t.Errorf("expected no surcharge at surge 1.0, got %f", fare.SurgeCost)
	}
	if !almostEqual(fare.TimeCost, 15.0) {
		t.Errorf("expected time cost 15, got %f", fare.TimeCost)
	}
	if !almostEqual(fare.TotalFare, 120.0) {
		t.Errorf("expected total fare 120, got %f", fare.TotalFare)
	}
	if fare.Currency != "INR" {
		t.Errorf("expected currency INR, got %s", fare.Currency)
	}
}

func TestEstimateFare_SurgeAppliesToDistanceComponent(t *testing.T) {
	fare := service.EstimateFare(10, domain.VehicleTypeBike, 2.0, 15)

	// Surcharge doubles the distance component only.
	if !almostEqual(fare.SurgeCost, 80.0) {
		t.Errorf("expected surge cost 80, got %f", fare.SurgeCost)
	}
	if !almostEqual(fare.TotalFare, 200.0) {
		t.Errorf("expected total fare 200, got %f", fare.TotalFare)
	}
}

func TestEstimateFare_SubUnitySurgeDiscounts(t *testing.T) {
	fare := service.EstimateFare(10, domain.VehicleTypeBike, 0.5, 15)

	if !almostEqual(fare.SurgeCost, -40.0) {
		t.Errorf("expected surge cost -40, got %f", fare.SurgeCost)
	}
	if !almostEqual(fare.TotalFare, 80.0) {
		t.Errorf("expected total fare 80, got %f", fare.TotalFare)
	}
}

func TestEstimateFare_UnknownVehicleTypeUsesDefaultRates(t *testing.T) {
	known := service.EstimateFare(10, domain.VehicleTypeBike, 1.0, 15)
	unknown := service.EstimateFare(10, domain.VehicleType("RICKSHAW"), 1.0, 15)

	if !almostEqual(known.TotalFare, unknown.TotalFare) {
		t.Errorf("expected fallback to default rates, got %f vs %f", unknown.TotalFare, known.TotalFare)
	}
}

func TestEstimateFare_ZeroDistance(t *testing.T) {
	fare := service.EstimateFare(0, domain.VehicleTypeBike, 1.0, 15)

	// Base fare and time cost still apply for a zero-length trip.
	if !almostEqual(fare.TotalFare, 40.0) {
		t.Errorf("expected total fare 40, got %f", fare.TotalFare)
	}
}
