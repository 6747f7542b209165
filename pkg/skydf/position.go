package skydf

import "time"

// Position is one sample from the live position stream.
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  float64   `json:"altitude,omitempty"`
	Speed     float64   `json:"speed,omitempty"`   // m/s over ground
	Heading   float64   `json:"heading,omitempty"` // degrees from north
	Timestamp time.Time `json:"timestamp"`
}

// TriggeredSet records which checkpoints have already fired during the
// current tracking session. Append-only for the lifetime of a session.
type TriggeredSet map[string]bool

func (t TriggeredSet) Contains(checkpointID string) bool {
	return t[checkpointID]
}

func (t TriggeredSet) Add(checkpointID string) {
	t[checkpointID] = true
}
