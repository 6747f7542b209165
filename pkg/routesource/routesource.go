// Package routesource is the boundary to the flight-data collaborator that
// turns a flight number into a route polyline. A deterministic synthetic
// source stands in when no provider is configured; the pipeline treats both
// identically.
package routesource

import (
	"context"
	"time"

	"github.com/windowseat/windowseat/pkg/skydf"
)

// FlightRoute is what the collaborator knows about a flight.
type FlightRoute struct {
	Airline     string
	Origin      string
	Destination string

	Route []skydf.RoutePoint

	EstimatedDuration time.Duration
}

type Source interface {
	GetFlightRoute(ctx context.Context, flightNumber string) (*FlightRoute, error)
}
