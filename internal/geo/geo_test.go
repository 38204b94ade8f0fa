package geo

import (
	"math"
	"testing"
)

func TestDistanceCoincidentPoints(t *testing.T) {
	points := []Position{
		{Lat: 0, Lon: 0},
		{Lat: 48.8566, Lon: 2.3522},
		{Lat: -33.8688, Lon: 151.2093},
	}
	for _, p := range points {
		if d := Distance(p, p); d != 0 {
			t.Fatalf("expected zero distance for coincident points, got %f", d)
		}
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := Position{Lat: 48.8566, Lon: 2.3522}
	b := Position{Lat: 34.0209, Lon: -6.8416}
	if d1, d2 := Distance(a, b), Distance(b, a); d1 != d2 {
		t.Fatalf("expected symmetric distance, got %f and %f", d1, d2)
	}
}

func TestDistanceOneDegreeAtEquator(t *testing.T) {
	// One degree of longitude at the equator is about 111,195 m with the
	// mean Earth radius.
	d := Distance(Position{Lat: 0, Lon: 0}, Position{Lat: 0, Lon: 1})
	if math.Abs(d-111195) > 5 {
		t.Fatalf("expected ~111195 m, got %f", d)
	}
}

func TestDistanceIsNonNegative(t *testing.T) {
	a := Position{Lat: -89.9, Lon: 179.9}
	b := Position{Lat: 89.9, Lon: -179.9}
	if d := Distance(a, b); d < 0 {
		t.Fatalf("expected non-negative distance, got %f", d)
	}
}

func TestFenceContains(t *testing.T) {
	center := Position{Lat: 48.8566, Lon: 2.3522}
	fence := Fence{Center: center, RadiusMeters: 100}

	if !fence.Contains(center) {
		t.Fatal("expected fence to contain its own center")
	}

	// About 150 m north of the center.
	outside := Position{Lat: center.Lat + 150.0/EarthRadiusMeters*180/math.Pi, Lon: center.Lon}
	if fence.Contains(outside) {
		t.Fatalf("expected point at %.1f m to be outside a 100 m fence", fence.DistanceTo(outside))
	}

	// About 50 m north of the center.
	inside := Position{Lat: center.Lat + 50.0/EarthRadiusMeters*180/math.Pi, Lon: center.Lon}
	if !fence.Contains(inside) {
		t.Fatalf("expected point at %.1f m to be inside a 100 m fence", fence.DistanceTo(inside))
	}
}
