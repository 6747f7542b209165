// Package narration produces the spoken-word content for each checkpoint:
// narration text from a text-generation collaborator and synthesized audio
// from a voice collaborator. Every failure mode degrades rather than aborts,
// down to fully static narration with no audio.
package narration

import (
	"context"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"

	"github.com/windowseat/windowseat/pkg/blobstore"
	"github.com/windowseat/windowseat/pkg/retry"
	"github.com/windowseat/windowseat/pkg/skydf"
)

type ProgressFunc func(completed, total int)

type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type VoiceOptions struct {
	Voice string
	Speed float64
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string, opts VoiceOptions) ([]byte, error)
}

// FlightContext feeds the narration prompt. Never contains anything beyond
// what the passenger already knows about their own flight.
type FlightContext struct {
	FlightNumber string
	Airline      string
	Origin       string
	Destination  string
}

// Tier is the narration capability level selected from the configured
// collaborators.
type Tier string

const (
	TierFull     Tier = "full"      // generated text + synthesized voice
	TierTextOnly Tier = "text-only" // generated text, no voice
	TierStatic   Tier = "static"    // canned text, no voice
)

type Generator struct {
	text  TextGenerator
	voice Synthesizer
	store blobstore.Store

	voiceOpts VoiceOptions
	retryOpts retry.Options
}

// NewGenerator accepts nil collaborators; each nil drops the pipeline one
// tier without that ever surfacing as an error.
func NewGenerator(text TextGenerator, voice Synthesizer, store blobstore.Store) *Generator {
	return &Generator{
		text:      text,
		voice:     voice,
		store:     store,
		voiceOpts: VoiceOptions{Voice: "narrator", Speed: 1.0},
		retryOpts: retry.DefaultOptions(),
	}
}

func (g *Generator) Tier() Tier {
	switch {
	case g.text != nil && g.voice != nil && g.store != nil:
		return TierFull
	case g.text != nil:
		return TierTextOnly
	default:
		return TierStatic
	}
}

// GenerateNarrations returns a copy of the checkpoints with narration text
// filled in. A per-checkpoint generation failure substitutes the static
// fallback for that checkpoint only.
func (g *Generator) GenerateNarrations(ctx context.Context, checkpoints []skydf.Checkpoint, fctx FlightContext, onProgress ProgressFunc) []skydf.Checkpoint {
	narrated := make([]skydf.Checkpoint, 0, len(checkpoints))
	if err := copier.CopyWithOption(&narrated, &checkpoints, copier.Option{DeepCopy: true}); err != nil {
		narrated = append(narrated[:0], checkpoints...)
	}

	for i := range narrated {
		narrated[i].Narration = g.narrationFor(ctx, &narrated[i], fctx)

		if onProgress != nil {
			onProgress(i+1, len(narrated))
		}
	}

	return narrated
}

func (g *Generator) narrationFor(ctx context.Context, checkpoint *skydf.Checkpoint, fctx FlightContext) string {
	if g.text == nil {
		return FallbackNarration(checkpoint)
	}

	text, err := retry.Do(ctx, g.retryOpts, func() (string, error) {
		return g.text.GenerateText(ctx, BuildPrompt(checkpoint, fctx))
	})
	if err != nil || text == "" {
		log.Warn().
			Err(err).
			Str("checkpoint", checkpoint.ID).
			Msg("Narration generation failed, using fallback")
		return FallbackNarration(checkpoint)
	}

	return text
}

// GenerateAudio synthesizes and persists audio for every checkpoint that has
// narration text, setting AudioRef to the stored blob key. A failed
// checkpoint keeps its text narration and an empty AudioRef.
func (g *Generator) GenerateAudio(ctx context.Context, checkpoints []skydf.Checkpoint, flightID string, onProgress ProgressFunc) []skydf.Checkpoint {
	result := make([]skydf.Checkpoint, 0, len(checkpoints))
	if err := copier.CopyWithOption(&result, &checkpoints, copier.Option{DeepCopy: true}); err != nil {
		result = append(result[:0], checkpoints...)
	}

	if g.voice == nil || g.store == nil {
		if onProgress != nil {
			onProgress(len(result), len(result))
		}
		return result
	}

	for i := range result {
		if result[i].Narration != "" {
			if err := g.synthesizeOne(ctx, &result[i], flightID); err != nil {
				log.Warn().
					Err(err).
					Str("checkpoint", result[i].ID).
					Msg("Audio synthesis failed, narration stays text-only")
			}
		}

		if onProgress != nil {
			onProgress(i+1, len(result))
		}
	}

	return result
}

func (g *Generator) synthesizeOne(ctx context.Context, checkpoint *skydf.Checkpoint, flightID string) error {
	audio, err := retry.Do(ctx, g.retryOpts, func() ([]byte, error) {
		return g.voice.Synthesize(ctx, checkpoint.Narration, g.voiceOpts)
	})
	if err != nil {
		return err
	}
	if len(audio) == 0 {
		return fmt.Errorf("synthesizer returned no audio")
	}

	key := AudioKey(flightID, checkpoint.ID)
	if err := g.store.Put(key, audio); err != nil {
		return fmt.Errorf("persist audio: %w", err)
	}

	checkpoint.AudioRef = key
	return nil
}

func AudioKey(flightID, checkpointID string) string {
	return fmt.Sprintf("audio/%s/%s", flightID, checkpointID)
}
