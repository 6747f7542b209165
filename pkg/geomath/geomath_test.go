package geomath

import (
	"math"
	"testing"
)

const (
	lhrLat = 51.47
	lhrLon = -0.4543
	jfkLat = 40.64
	jfkLon = -73.78
)

func TestHaversineDistanceLHRJFK(t *testing.T) {
	d := HaversineDistance(lhrLat, lhrLon, jfkLat, jfkLon)

	// Published great-circle distance is roughly 5540km.
	if d < 5_400_000 || d > 5_700_000 {
		t.Fatalf("LHR-JFK distance out of range: %.0f", d)
	}
}

func TestHaversineDistanceZero(t *testing.T) {
	if d := HaversineDistance(lhrLat, lhrLon, lhrLat, lhrLon); d != 0 {
		t.Fatalf("expected zero distance, got %f", d)
	}
}

func TestInitialBearingWestbound(t *testing.T) {
	b := InitialBearing(lhrLat, lhrLon, jfkLat, jfkLon)

	// Transatlantic westbound departures head a little north of due west.
	if b < 250 || b > 300 {
		t.Fatalf("unexpected bearing %f", b)
	}
}

func TestInterpolateEndpoints(t *testing.T) {
	lat, lon := Interpolate(lhrLat, lhrLon, jfkLat, jfkLon, 0)
	if math.Abs(lat-lhrLat) > 1e-9 || math.Abs(lon-lhrLon) > 1e-9 {
		t.Fatalf("f=0 should return start, got %f,%f", lat, lon)
	}

	lat, lon = Interpolate(lhrLat, lhrLon, jfkLat, jfkLon, 1)
	if math.Abs(lat-jfkLat) > 1e-6 || math.Abs(lon-jfkLon) > 1e-6 {
		t.Fatalf("f=1 should return end, got %f,%f", lat, lon)
	}
}

func TestInterpolateMidpointOnPath(t *testing.T) {
	lat, lon := Interpolate(lhrLat, lhrLon, jfkLat, jfkLon, 0.5)

	toStart := HaversineDistance(lat, lon, lhrLat, lhrLon)
	toEnd := HaversineDistance(lat, lon, jfkLat, jfkLon)

	if math.Abs(toStart-toEnd) > 1000 {
		t.Fatalf("midpoint not equidistant: %f vs %f", toStart, toEnd)
	}

	// Great-circle midpoint sits well north of the straight lat/lon average.
	if lat < (lhrLat+jfkLat)/2 {
		t.Fatalf("midpoint latitude %f should be north of chord", lat)
	}
}

func TestDestinationRoundTrip(t *testing.T) {
	lat, lon := Destination(lhrLat, lhrLon, 270, 100_000)

	d := HaversineDistance(lhrLat, lhrLon, lat, lon)
	if math.Abs(d-100_000) > 100 {
		t.Fatalf("destination distance %f, want ~100000", d)
	}
}
