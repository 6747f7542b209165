package skydf

import "time"

// RoutePoint is a single sample along a flight path, as delivered by the
// flight route source. Points are ordered along the direction of travel.
type RoutePoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	Altitude    float64    `json:"altitude,omitempty"` // metres
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	GroundSpeed float64    `json:"groundspeed,omitempty"` // m/s
}
