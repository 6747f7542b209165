package narration

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/windowseat/windowseat/pkg/blobstore"
	"github.com/windowseat/windowseat/pkg/skydf"
)

type fakeTextGenerator struct {
	failFor map[string]bool
	calls   int
}

func (f *fakeTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.calls++
	for marker := range f.failFor {
		if strings.Contains(prompt, marker) {
			return "", errors.New("generation failed")
		}
	}
	return "Generated narration for: " + firstLine(prompt), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

type fakeSynthesizer struct {
	fail  bool
	calls int
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text string, opts VoiceOptions) ([]byte, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("voice service down")
	}
	return []byte("audio:" + text[:10]), nil
}

func narrationCheckpoints() []skydf.Checkpoint {
	return []skydf.Checkpoint{
		{ID: "checkpoint_0", Index: 0, Kind: skydf.CheckpointKindDeparture, Name: "Departure", Latitude: 51.47, Longitude: -0.4543},
		{ID: "checkpoint_1", Index: 1, Kind: skydf.CheckpointKindWaypoint, Name: "Snowdonia National Park", Latitude: 53.0, Longitude: -4.0, Altitude: 11000},
		{ID: "checkpoint_2", Index: 2, Kind: skydf.CheckpointKindArrival, Name: "Arrival", Latitude: 40.64, Longitude: -73.78},
	}
}

func quickRetry(g *Generator) *Generator {
	g.retryOpts.MaxRetries = 0
	g.retryOpts.InitialDelay = time.Millisecond
	return g
}

var testFlight = FlightContext{FlightNumber: "BA117", Airline: "British Airways", Origin: "LHR", Destination: "JFK"}

func TestGenerateNarrationsFillsEveryCheckpoint(t *testing.T) {
	generator := quickRetry(NewGenerator(&fakeTextGenerator{}, nil, nil))

	narrated := generator.GenerateNarrations(context.Background(), narrationCheckpoints(), testFlight, nil)

	if len(narrated) != 3 {
		t.Fatalf("expected 3 checkpoints, got %d", len(narrated))
	}
	for _, cp := range narrated {
		if cp.Narration == "" {
			t.Fatalf("checkpoint %s has no narration", cp.ID)
		}
	}
}

func TestGenerateNarrationsPerItemFallback(t *testing.T) {
	text := &fakeTextGenerator{failFor: map[string]bool{"53.0000": true}}
	generator := quickRetry(NewGenerator(text, nil, nil))

	narrated := generator.GenerateNarrations(context.Background(), narrationCheckpoints(), testFlight, nil)

	if !strings.HasPrefix(narrated[0].Narration, "Generated") {
		t.Fatalf("checkpoint 0 should use generated text: %q", narrated[0].Narration)
	}
	if narrated[1].Narration != FallbackNarration(&narrated[1]) {
		t.Fatalf("failed checkpoint should carry fallback, got %q", narrated[1].Narration)
	}
	if !strings.HasPrefix(narrated[2].Narration, "Generated") {
		t.Fatalf("checkpoint 2 should use generated text: %q", narrated[2].Narration)
	}
}

func TestFallbackNarrationKeyedByKind(t *testing.T) {
	departure := FallbackNarration(&skydf.Checkpoint{Kind: skydf.CheckpointKindDeparture})
	arrival := FallbackNarration(&skydf.Checkpoint{Kind: skydf.CheckpointKindArrival})
	cruise := FallbackNarration(&skydf.Checkpoint{Kind: skydf.CheckpointKindWaypoint, Name: "Waypoint 3"})

	if !strings.Contains(departure, "climbing") {
		t.Fatalf("departure fallback: %q", departure)
	}
	if !strings.Contains(arrival, "descent") {
		t.Fatalf("arrival fallback: %q", arrival)
	}
	if !strings.Contains(cruise, "cruising") {
		t.Fatalf("cruise fallback: %q", cruise)
	}

	// Deterministic.
	if departure != FallbackNarration(&skydf.Checkpoint{Kind: skydf.CheckpointKindDeparture}) {
		t.Fatal("fallback narration must be deterministic")
	}
}

func TestTierSelection(t *testing.T) {
	store := blobstore.NewMemoryStore()

	full := NewGenerator(&fakeTextGenerator{}, &fakeSynthesizer{}, store)
	if full.Tier() != TierFull {
		t.Fatalf("tier = %s", full.Tier())
	}

	textOnly := NewGenerator(&fakeTextGenerator{}, nil, store)
	if textOnly.Tier() != TierTextOnly {
		t.Fatalf("tier = %s", textOnly.Tier())
	}

	static := NewGenerator(nil, &fakeSynthesizer{}, store)
	if static.Tier() != TierStatic {
		t.Fatalf("tier = %s", static.Tier())
	}
}

func TestGenerateAudioPersistsAndSetsRefs(t *testing.T) {
	store := blobstore.NewMemoryStore()
	generator := quickRetry(NewGenerator(&fakeTextGenerator{}, &fakeSynthesizer{}, store))

	narrated := generator.GenerateNarrations(context.Background(), narrationCheckpoints(), testFlight, nil)
	withAudio := generator.GenerateAudio(context.Background(), narrated, "BA117", nil)

	for _, cp := range withAudio {
		want := AudioKey("BA117", cp.ID)
		if cp.AudioRef != want {
			t.Fatalf("checkpoint %s audio ref %q, want %q", cp.ID, cp.AudioRef, want)
		}
		if _, err := store.Get(want); err != nil {
			t.Fatalf("audio blob missing for %s: %v", cp.ID, err)
		}
	}
}

func TestGenerateAudioFailureLeavesRefEmpty(t *testing.T) {
	store := blobstore.NewMemoryStore()
	generator := quickRetry(NewGenerator(&fakeTextGenerator{}, &fakeSynthesizer{fail: true}, store))

	narrated := generator.GenerateNarrations(context.Background(), narrationCheckpoints(), testFlight, nil)
	withAudio := generator.GenerateAudio(context.Background(), narrated, "BA117", nil)

	for _, cp := range withAudio {
		if cp.AudioRef != "" {
			t.Fatalf("checkpoint %s should have empty audio ref", cp.ID)
		}
		if cp.Narration == "" {
			t.Fatalf("narration text must survive audio failure")
		}
	}
}

func TestGenerateAudioProgress(t *testing.T) {
	store := blobstore.NewMemoryStore()
	generator := quickRetry(NewGenerator(&fakeTextGenerator{}, &fakeSynthesizer{}, store))

	narrated := generator.GenerateNarrations(context.Background(), narrationCheckpoints(), testFlight, nil)

	var progress [][2]int
	generator.GenerateAudio(context.Background(), narrated, "BA117", func(completed, total int) {
		progress = append(progress, [2]int{completed, total})
	})

	if len(progress) != 3 || progress[2] != [2]int{3, 3} {
		t.Fatalf("unexpected progress %v", progress)
	}
}
