// Package checkpoints derives the bounded set of narration checkpoints from a
// flight route polyline.
package checkpoints

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/windowseat/windowseat/pkg/geomath"
	"github.com/windowseat/windowseat/pkg/skydf"
)

type BuildOptions struct {
	// NumCheckpoints is the target total including departure and arrival.
	NumCheckpoints int

	MinSpacingMetres     float64
	GeofenceRadiusMetres float64
}

func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		NumCheckpoints:       20,
		MinSpacingMetres:     50_000,
		GeofenceRadiusMetres: 10_000,
	}
}

// Build walks the route emitting evenly spaced checkpoints. The first route
// point always becomes the departure checkpoint and the last the arrival;
// routes with fewer than two points produce nothing. Output is deterministic
// for a given route and options, so re-running a download yields the same
// checkpoint ids.
func Build(route []skydf.RoutePoint, opts BuildOptions) []skydf.Checkpoint {
	if opts.NumCheckpoints <= 0 {
		opts.NumCheckpoints = DefaultBuildOptions().NumCheckpoints
	}
	if opts.MinSpacingMetres <= 0 {
		opts.MinSpacingMetres = DefaultBuildOptions().MinSpacingMetres
	}
	if opts.GeofenceRadiusMetres <= 0 {
		opts.GeofenceRadiusMetres = DefaultBuildOptions().GeofenceRadiusMetres
	}

	if len(route) < 2 {
		return nil
	}

	totalLength := routeLength(route)

	spacing := totalLength / float64(opts.NumCheckpoints+1)
	if spacing < opts.MinSpacingMetres {
		spacing = opts.MinSpacingMetres
	}

	checkpoints := []skydf.Checkpoint{
		newCheckpoint(0, skydf.CheckpointKindDeparture, "Departure", route[0], opts.GeofenceRadiusMetres),
	}

	// Waypoints cap out so that departure + waypoints + arrival stays within
	// the configured total.
	maxWaypoints := opts.NumCheckpoints - 2

	accumulated := 0.0
	for i := 1; i < len(route)-1 && len(checkpoints)-1 < maxWaypoints; i++ {
		previous := route[i-1]
		point := route[i]

		accumulated += geomath.HaversineDistance(
			previous.Latitude, previous.Longitude,
			point.Latitude, point.Longitude,
		)

		if accumulated >= spacing {
			index := len(checkpoints)
			name := fmt.Sprintf("Waypoint %d", index)
			checkpoints = append(checkpoints, newCheckpoint(index, skydf.CheckpointKindWaypoint, name, point, opts.GeofenceRadiusMetres))
			accumulated = 0
		}
	}

	arrivalIndex := len(checkpoints)
	checkpoints = append(checkpoints, newCheckpoint(arrivalIndex, skydf.CheckpointKindArrival, "Arrival", route[len(route)-1], opts.GeofenceRadiusMetres))

	log.Debug().
		Int("checkpoints", len(checkpoints)).
		Float64("routekm", totalLength/1000).
		Float64("spacingkm", spacing/1000).
		Msg("Built checkpoint set")

	return checkpoints
}

func newCheckpoint(index int, kind skydf.CheckpointKind, name string, point skydf.RoutePoint, radius float64) skydf.Checkpoint {
	return skydf.Checkpoint{
		ID:           skydf.CheckpointID(index),
		Index:        index,
		Kind:         kind,
		Name:         name,
		Latitude:     point.Latitude,
		Longitude:    point.Longitude,
		Altitude:     point.Altitude,
		RadiusMetres: radius,
	}
}

func routeLength(route []skydf.RoutePoint) float64 {
	total := 0.0
	for i := 1; i < len(route); i++ {
		total += geomath.HaversineDistance(
			route[i-1].Latitude, route[i-1].Longitude,
			route[i].Latitude, route[i].Longitude,
		)
	}

	return total
}
