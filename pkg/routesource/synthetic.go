package routesource

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/windowseat/windowseat/pkg/geomath"
	"github.com/windowseat/windowseat/pkg/skydf"
)

const (
	cruiseAltitudeMetres = 11_000
	cruiseSpeedMS        = 250

	// Fractions of the route spent climbing and descending.
	climbFraction   = 0.10
	descentFraction = 0.15
)

type airport struct {
	code string
	lat  float64
	lon  float64
}

// Demo city pairs, picked deterministically from the flight number so the
// same number always produces the same route.
var demoPairs = [][2]airport{
	{{"LHR", 51.47, -0.4543}, {"JFK", 40.64, -73.78}},
	{{"SFO", 37.6213, -122.379}, {"NRT", 35.7653, 140.3856}},
	{{"CDG", 49.0097, 2.5479}, {"DXB", 25.2532, 55.3657}},
	{{"SYD", -33.9399, 151.1753}, {"SIN", 1.3644, 103.9915}},
	{{"GRU", -23.4356, -46.4731}, {"LIS", 38.7742, -9.1342}},
}

// SyntheticSource generates a great-circle demo route. Used whenever no real
// flight-data provider is configured; downstream stages cannot tell the
// difference.
type SyntheticSource struct {
	Samples int
}

func NewSyntheticSource() *SyntheticSource {
	return &SyntheticSource{Samples: 400}
}

func (s *SyntheticSource) GetFlightRoute(ctx context.Context, flightNumber string) (*FlightRoute, error) {
	samples := s.Samples
	if samples < 2 {
		samples = 400
	}

	pair := demoPairs[hashFlightNumber(flightNumber)%uint32(len(demoPairs))]
	origin, destination := pair[0], pair[1]

	log.Info().
		Str("flight", flightNumber).
		Str("origin", origin.code).
		Str("destination", destination.code).
		Msg("No flight data provider configured, generating demo route")

	route := make([]skydf.RoutePoint, samples)
	for i := 0; i < samples; i++ {
		f := float64(i) / float64(samples-1)
		lat, lon := geomath.Interpolate(origin.lat, origin.lon, destination.lat, destination.lon, f)

		route[i] = skydf.RoutePoint{
			Latitude:    lat,
			Longitude:   lon,
			Altitude:    altitudeProfile(f),
			GroundSpeed: cruiseSpeedMS,
		}
	}

	distance := geomath.HaversineDistance(origin.lat, origin.lon, destination.lat, destination.lon)
	estimated := time.Duration(distance/cruiseSpeedMS) * time.Second

	return &FlightRoute{
		Airline:           "Demo Air",
		Origin:            origin.code,
		Destination:       destination.code,
		Route:             route,
		EstimatedDuration: estimated,
	}, nil
}

// altitudeProfile ramps from ground to cruise and back down along the route.
func altitudeProfile(f float64) float64 {
	switch {
	case f < climbFraction:
		return cruiseAltitudeMetres * (f / climbFraction)
	case f > 1-descentFraction:
		return cruiseAltitudeMetres * ((1 - f) / descentFraction)
	default:
		return cruiseAltitudeMetres
	}
}

func hashFlightNumber(flightNumber string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(skydf.NormaliseFlightID(flightNumber)))
	return h.Sum32()
}
