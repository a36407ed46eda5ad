package geo

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestDistanceKm_SamePointIsZero(t *testing.T) {
	d := DistanceKm(12.9716, 77.5946, 12.9716, 77.5946)
	if math.Abs(d) > epsilon {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestDistanceKm_IsSymmetric(t *testing.T) {
	points := [][4]float64{
		{12.9716, 77.5946, 13.0827, 80.2707}, // Bangalore -> Chennai
		{28.6139, 77.2090, 19.0760, 72.8777}, // Delhi -> Mumbai
		{-33.8688, 151.2093, 51.5074, -0.1278},
	}
	for _, p := range points {
		ab := DistanceKm(p[0], p[1], p[2], p[3])
		ba := DistanceKm(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > epsilon {
			t.Errorf("asymmetric distance: %f vs %f", ab, ba)
		}
	}
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	// Bangalore to Chennai is roughly 290 km great-circle.
	d := DistanceKm(12.9716, 77.5946, 13.0827, 80.2707)
	if d < 280 || d > 300 {
		t.Errorf("Bangalore-Chennai distance out of range: %f km", d)
	}
}

func TestDistanceKm_ShortDistance(t *testing.T) {
	// One degree of latitude is about 111 km.
	d := DistanceKm(12.0, 77.0, 13.0, 77.0)
	if d < 110 || d > 112 {
		t.Errorf("one degree latitude should be ~111 km, got %f", d)
	}
}
