// Package geofence decides which checkpoints a live position has newly
// entered. It performs no I/O and is safe to call from a position-update
// callback.
package geofence

import (
	"github.com/windowseat/windowseat/pkg/geomath"
	"github.com/windowseat/windowseat/pkg/skydf"
)

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// OnPosition returns every checkpoint whose geofence contains the position
// and which is not yet in triggered, in ascending index order. Triggered is
// caller-owned and mutated here, so a checkpoint fires at most once per
// session. Checkpoints with a non-positive radius never fire.
func (e *Engine) OnPosition(lat, lon float64, checkpoints []skydf.Checkpoint, triggered skydf.TriggeredSet) []skydf.Checkpoint {
	var newlyTriggered []skydf.Checkpoint

	for _, checkpoint := range checkpoints {
		if checkpoint.RadiusMetres <= 0 || triggered.Contains(checkpoint.ID) {
			continue
		}

		distance := geomath.HaversineDistance(lat, lon, checkpoint.Latitude, checkpoint.Longitude)
		if distance <= checkpoint.RadiusMetres {
			triggered.Add(checkpoint.ID)
			newlyTriggered = append(newlyTriggered, checkpoint)
		}
	}

	return newlyTriggered
}
