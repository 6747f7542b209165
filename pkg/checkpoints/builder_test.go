package checkpoints

import (
	"testing"

	"github.com/windowseat/windowseat/pkg/geomath"
	"github.com/windowseat/windowseat/pkg/skydf"
)

func greatCircleRoute(lat1, lon1, lat2, lon2 float64, samples int) []skydf.RoutePoint {
	route := make([]skydf.RoutePoint, samples)
	for i := 0; i < samples; i++ {
		f := float64(i) / float64(samples-1)
		lat, lon := geomath.Interpolate(lat1, lon1, lat2, lon2, f)
		route[i] = skydf.RoutePoint{Latitude: lat, Longitude: lon, Altitude: 11000}
	}
	return route
}

func lhrToJFK(samples int) []skydf.RoutePoint {
	return greatCircleRoute(51.47, -0.4543, 40.64, -73.78, samples)
}

func TestBuildEmptyForShortRoutes(t *testing.T) {
	if got := Build(nil, DefaultBuildOptions()); len(got) != 0 {
		t.Fatalf("nil route: got %d checkpoints", len(got))
	}

	single := []skydf.RoutePoint{{Latitude: 51.47, Longitude: -0.4543}}
	if got := Build(single, DefaultBuildOptions()); len(got) != 0 {
		t.Fatalf("single point route: got %d checkpoints", len(got))
	}
}

func TestBuildDepartureAndArrivalBookends(t *testing.T) {
	route := lhrToJFK(200)
	cps := Build(route, DefaultBuildOptions())

	if len(cps) < 2 {
		t.Fatalf("expected at least 2 checkpoints, got %d", len(cps))
	}

	first := cps[0]
	if first.Kind != skydf.CheckpointKindDeparture || first.Index != 0 {
		t.Fatalf("first checkpoint: kind=%s index=%d", first.Kind, first.Index)
	}
	if first.Latitude != route[0].Latitude || first.Longitude != route[0].Longitude {
		t.Fatalf("departure not at route start")
	}

	last := cps[len(cps)-1]
	if last.Kind != skydf.CheckpointKindArrival || last.Index != len(cps)-1 {
		t.Fatalf("last checkpoint: kind=%s index=%d", last.Kind, last.Index)
	}
	if last.Latitude != route[len(route)-1].Latitude || last.Longitude != route[len(route)-1].Longitude {
		t.Fatalf("arrival not at route end")
	}

	for _, cp := range cps[1 : len(cps)-1] {
		if cp.Kind != skydf.CheckpointKindWaypoint {
			t.Fatalf("interior checkpoint %s has kind %s", cp.ID, cp.Kind)
		}
	}
}

func TestBuildIDsUniqueAndDeterministic(t *testing.T) {
	route := lhrToJFK(200)

	first := Build(route, DefaultBuildOptions())
	second := Build(route, DefaultBuildOptions())

	if len(first) != len(second) {
		t.Fatalf("rebuild changed count: %d vs %d", len(first), len(second))
	}

	seen := map[string]bool{}
	for i := range first {
		if seen[first[i].ID] {
			t.Fatalf("duplicate checkpoint id %s", first[i].ID)
		}
		seen[first[i].ID] = true

		if first[i].ID != second[i].ID {
			t.Fatalf("id %s != %s at index %d", first[i].ID, second[i].ID, i)
		}
		if first[i].Latitude != second[i].Latitude || first[i].Longitude != second[i].Longitude {
			t.Fatalf("coordinates differ at index %d", i)
		}
	}
}

func TestBuildLongHaulHitsConfiguredTotal(t *testing.T) {
	opts := DefaultBuildOptions()
	opts.GeofenceRadiusMetres = 15_000

	cps := Build(lhrToJFK(400), opts)

	if len(cps) != 20 {
		t.Fatalf("expected exactly 20 checkpoints, got %d", len(cps))
	}

	for _, cp := range cps {
		if cp.RadiusMetres != 15_000 {
			t.Fatalf("checkpoint %s radius %f", cp.ID, cp.RadiusMetres)
		}
	}
}

func TestBuildShortHopOnlyBookends(t *testing.T) {
	// LCY to LHR is well under the minimum spacing.
	route := greatCircleRoute(51.5048, 0.0495, 51.47, -0.4543, 50)

	cps := Build(route, DefaultBuildOptions())

	if len(cps) != 2 {
		t.Fatalf("expected departure+arrival only, got %d", len(cps))
	}
	if cps[0].Kind != skydf.CheckpointKindDeparture || cps[1].Kind != skydf.CheckpointKindArrival {
		t.Fatalf("unexpected kinds %s, %s", cps[0].Kind, cps[1].Kind)
	}
}
