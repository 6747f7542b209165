// Package possim replays a route as a stream of position samples at a fixed
// ground-distance step, standing in for the device GPS during rehearsal and
// testing.
package possim

import (
	"context"
	"time"

	"github.com/windowseat/windowseat/pkg/geomath"
	"github.com/windowseat/windowseat/pkg/skydf"
)

type Simulator struct {
	// StepMetres is the ground distance between consecutive samples.
	StepMetres float64

	// Interval is the wall-clock delay between samples; zero replays as
	// fast as the consumer can take them.
	Interval time.Duration
}

func NewSimulator() *Simulator {
	return &Simulator{StepMetres: 900}
}

// Walk interpolates along the route delivering one sample every StepMetres
// to the callback, starting at the first point and ending exactly on the
// last. Returning false from the callback or cancelling ctx stops the walk.
func (s *Simulator) Walk(ctx context.Context, route []skydf.RoutePoint, deliver func(skydf.Position) bool) error {
	if len(route) == 0 {
		return nil
	}

	step := s.StepMetres
	if step <= 0 {
		step = 900
	}

	emit := func(lat, lon, alt, speed, heading float64) bool {
		if s.Interval > 0 {
			select {
			case <-time.After(s.Interval):
			case <-ctx.Done():
				return false
			}
		} else if ctx.Err() != nil {
			return false
		}

		return deliver(skydf.Position{
			Latitude:  lat,
			Longitude: lon,
			Altitude:  alt,
			Speed:     speed,
			Heading:   heading,
			Timestamp: time.Now().UTC(),
		})
	}

	previous := route[0]
	if !emit(previous.Latitude, previous.Longitude, previous.Altitude, previous.GroundSpeed, 0) {
		return ctx.Err()
	}

	// Distance already covered since the last emitted sample.
	carried := 0.0

	for i := 1; i < len(route); i++ {
		point := route[i]

		segment := geomath.HaversineDistance(
			previous.Latitude, previous.Longitude,
			point.Latitude, point.Longitude,
		)
		if segment == 0 {
			previous = point
			continue
		}

		heading := geomath.InitialBearing(previous.Latitude, previous.Longitude, point.Latitude, point.Longitude)

		travelled := step - carried
		for travelled < segment {
			f := travelled / segment
			lat, lon := geomath.Interpolate(previous.Latitude, previous.Longitude, point.Latitude, point.Longitude, f)
			alt := previous.Altitude + (point.Altitude-previous.Altitude)*f

			if !emit(lat, lon, alt, point.GroundSpeed, heading) {
				return ctx.Err()
			}

			travelled += step
		}

		carried = segment - (travelled - step)
		previous = point
	}

	last := route[len(route)-1]
	if !emit(last.Latitude, last.Longitude, last.Altitude, last.GroundSpeed, 0) {
		return ctx.Err()
	}

	return nil
}
