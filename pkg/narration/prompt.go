package narration

import (
	"fmt"
	"strings"

	"github.com/windowseat/windowseat/pkg/skydf"
)

// BuildPrompt assembles the text-generation prompt from the checkpoint and
// flight context only.
func BuildPrompt(checkpoint *skydf.Checkpoint, fctx FlightContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a friendly flight narrator speaking to a window-seat passenger on flight %s from %s to %s.\n",
		fctx.FlightNumber, fctx.Origin, fctx.Destination)
	fmt.Fprintf(&b, "The aircraft is at latitude %.4f, longitude %.4f", checkpoint.Latitude, checkpoint.Longitude)
	if checkpoint.Altitude > 0 {
		fmt.Fprintf(&b, ", around %.0f metres up", checkpoint.Altitude)
	}
	b.WriteString(".\n")

	switch checkpoint.Kind {
	case skydf.CheckpointKindDeparture:
		b.WriteString("The flight has just departed and is climbing.\n")
	case skydf.CheckpointKindArrival:
		b.WriteString("The flight is descending towards its destination.\n")
	}

	if landmark := checkpoint.Landmark; landmark != nil {
		fmt.Fprintf(&b, "Below is %s", landmark.Name)
		if landmark.Region != "" {
			fmt.Fprintf(&b, " in %s", landmark.Region)
		}
		if landmark.Country != "" {
			fmt.Fprintf(&b, ", %s", landmark.Country)
		}
		b.WriteString(".\n")

		if len(landmark.NearbyFeatures) > 0 {
			names := make([]string, 0, len(landmark.NearbyFeatures))
			for _, feature := range landmark.NearbyFeatures {
				names = append(names, feature.Name)
			}
			fmt.Fprintf(&b, "Nearby features: %s.\n", strings.Join(names, ", "))
		}
	}

	b.WriteString("In two or three spoken sentences, describe what the passenger can see out of the window right now. Plain text, no lists.")

	return b.String()
}

// FallbackNarration is the deterministic static narration used when no text
// generator is configured or a generation call fails.
func FallbackNarration(checkpoint *skydf.Checkpoint) string {
	name := checkpoint.Name

	switch checkpoint.Kind {
	case skydf.CheckpointKindDeparture:
		return "We are climbing away from the airport. Watch the ground fall away as the aircraft banks onto its course."
	case skydf.CheckpointKindArrival:
		return "We have begun our descent. The landscape below is rising to meet us as we approach the destination."
	default:
		if name != "" && !strings.HasPrefix(name, "Waypoint") {
			return fmt.Sprintf("We are cruising over %s. Have a look out of the window for a moment.", name)
		}
		return "We are cruising at altitude. The view below slowly drifts past at around nine hundred kilometres per hour."
	}
}
