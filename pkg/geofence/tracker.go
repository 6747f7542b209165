package geofence

import (
	"github.com/rs/zerolog/log"
	"github.com/windowseat/windowseat/pkg/skydf"
)

type TrackerState string

const (
	TrackerStateIdle     TrackerState = "idle"
	TrackerStateTracking TrackerState = "tracking"
)

// Tracker owns one tracking session: the current pack's checkpoints and the
// append-only triggered set. Single-session use; not for concurrent writers.
type Tracker struct {
	engine *Engine

	state       TrackerState
	checkpoints []skydf.Checkpoint
	triggered   skydf.TriggeredSet
}

func NewTracker() *Tracker {
	return &Tracker{
		engine: NewEngine(),
		state:  TrackerStateIdle,
	}
}

func (t *Tracker) State() TrackerState {
	return t.state
}

// Start begins a session against the pack's checkpoints with a fresh
// triggered set. Starting over an active session resets it.
func (t *Tracker) Start(pack *skydf.FlightPack) {
	t.checkpoints = pack.Checkpoints
	t.triggered = skydf.TriggeredSet{}
	t.state = TrackerStateTracking

	log.Info().
		Str("flight", pack.ID).
		Int("checkpoints", len(pack.Checkpoints)).
		Msg("Tracking session started")
}

func (t *Tracker) Stop() {
	t.state = TrackerStateIdle
	t.checkpoints = nil
	t.triggered = nil
}

// Reset clears triggering history but keeps the session alive, for a
// tracking restart on the same pack.
func (t *Tracker) Reset() {
	if t.state == TrackerStateTracking {
		t.triggered = skydf.TriggeredSet{}
	}
}

// OnPosition feeds one position sample through the engine. Outside an active
// session it is a no-op.
func (t *Tracker) OnPosition(position skydf.Position) []skydf.Checkpoint {
	if t.state != TrackerStateTracking {
		return nil
	}

	return t.engine.OnPosition(position.Latitude, position.Longitude, t.checkpoints, t.triggered)
}

// Triggered reports how many checkpoints have fired this session.
func (t *Tracker) Triggered() int {
	return len(t.triggered)
}
