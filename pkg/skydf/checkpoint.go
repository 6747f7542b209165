package skydf

import "fmt"

type CheckpointKind string

const (
	CheckpointKindDeparture CheckpointKind = "departure"
	CheckpointKindWaypoint  CheckpointKind = "waypoint"
	CheckpointKindArrival   CheckpointKind = "arrival"
)

// Checkpoint is a narration point along a route with a circular geofence.
// Built once by the checkpoint builder; enrichment and narration fill in the
// optional fields afterwards.
type Checkpoint struct {
	ID    string         `json:"id"`
	Index int            `json:"index"`
	Kind  CheckpointKind `json:"kind"`

	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`

	RadiusMetres float64 `json:"radiusMetres"`

	Narration string        `json:"narration,omitempty"`
	AudioRef  string        `json:"audioRef,omitempty"`
	Landmark  *LandmarkInfo `json:"landmark,omitempty"`
}

// CheckpointID is deterministic so that re-deriving checkpoints from the same
// route produces the same id sequence.
func CheckpointID(index int) string {
	return fmt.Sprintf("checkpoint_%d", index)
}

type LandmarkInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Region   string `json:"region,omitempty"`
	Country  string `json:"country,omitempty"`

	NearbyFeatures []NearbyFeature `json:"nearbyFeatures,omitempty"`
}

type NearbyFeature struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
