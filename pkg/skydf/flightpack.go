package skydf

import (
	"strings"
	"time"
)

// FlightPack is the persisted bundle for one flight: the route, the narration
// checkpoints and the capability flags for offline maps and audio. Route,
// origin and destination never change after creation; checkpoints may gain
// narration/audio until the pack is saved, after which the pack is read-only.
type FlightPack struct {
	ID           string    `json:"id"`
	FlightNumber string    `json:"flightNumber"`
	DownloadedAt time.Time `json:"downloadedAt"`

	Airline     string `json:"airline,omitempty"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`

	Route       []RoutePoint `json:"route"`
	Checkpoints []Checkpoint `json:"checkpoints"`

	EstimatedDuration time.Duration `json:"estimatedDuration,omitempty"`

	HasOfflineMaps bool `json:"hasOfflineMaps"`
	HasAudio       bool `json:"hasAudio"`
}

// PackSummary is the listing view of a stored pack.
type PackSummary struct {
	ID             string    `json:"id"`
	FlightNumber   string    `json:"flightNumber"`
	Airline        string    `json:"airline,omitempty"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DownloadedAt   time.Time `json:"downloadedAt"`
	Checkpoints    int       `json:"checkpoints"`
	HasOfflineMaps bool      `json:"hasOfflineMaps"`
	HasAudio       bool      `json:"hasAudio"`
}

// NormaliseFlightID maps user-entered flight numbers onto stable store keys.
func NormaliseFlightID(flightNumber string) string {
	return strings.ToUpper(strings.Join(strings.Fields(flightNumber), ""))
}
