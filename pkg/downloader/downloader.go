// Package downloader orchestrates building a complete flight pack: route
// fetch, checkpoint derivation, enrichment, narration, audio and offline
// maps, persisted in a single save once fully built. Only a missing or
// degenerate route is fatal; every other stage degrades into capability
// flags on the resulting pack.
package downloader

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/windowseat/windowseat/pkg/checkpoints"
	"github.com/windowseat/windowseat/pkg/enrichment"
	"github.com/windowseat/windowseat/pkg/geofence"
	"github.com/windowseat/windowseat/pkg/narration"
	"github.com/windowseat/windowseat/pkg/packstore"
	"github.com/windowseat/windowseat/pkg/possim"
	"github.com/windowseat/windowseat/pkg/routesource"
	"github.com/windowseat/windowseat/pkg/skydf"
	"github.com/windowseat/windowseat/pkg/tilecache"
)

// ProgressFunc receives a human-readable stage status plus counters; total
// is zero for stages without a meaningful denominator.
type ProgressFunc func(status string, completed, total int)

type Options struct {
	Checkpoints checkpoints.BuildOptions
	Tiles       tilecache.PreCacheOptions
}

func DefaultOptions() Options {
	opts := Options{
		Checkpoints: checkpoints.DefaultBuildOptions(),
		Tiles:       tilecache.DefaultPreCacheOptions(),
	}
	opts.Checkpoints.GeofenceRadiusMetres = 15_000
	return opts
}

type Downloader struct {
	source    routesource.Source
	enricher  *enrichment.Enricher
	generator *narration.Generator
	packs     *packstore.Store
	tiles     *tilecache.Cache

	opts Options
}

// New wires the pipeline. enricher and tiles may be nil; those stages are
// then skipped with their capability flags left unset.
func New(source routesource.Source, enricher *enrichment.Enricher, generator *narration.Generator, packs *packstore.Store, tiles *tilecache.Cache, opts Options) *Downloader {
	return &Downloader{
		source:    source,
		enricher:  enricher,
		generator: generator,
		packs:     packs,
		tiles:     tiles,
		opts:      opts,
	}
}

// Download builds and persists the pack for a flight number. Nothing is
// persisted until the pack is complete, so an abandoned download leaves no
// partial state behind.
func (d *Downloader) Download(ctx context.Context, flightNumber string, onProgress ProgressFunc) (*skydf.FlightPack, error) {
	flightID := skydf.NormaliseFlightID(flightNumber)

	report := func(status string, completed, total int) {
		if onProgress != nil {
			onProgress(status, completed, total)
		}
	}

	report("Fetching flight route", 0, 0)

	flightRoute, err := d.source.GetFlightRoute(ctx, flightNumber)
	if err != nil {
		return nil, fmt.Errorf("download %s: fetch route: %w", flightID, err)
	}
	if flightRoute == nil || len(flightRoute.Route) < 2 {
		return nil, fmt.Errorf("download %s: route has too few points to derive checkpoints", flightID)
	}

	// Offline maps are a best-effort side pipeline running alongside the
	// narration stages.
	tileResults := make(chan tilecache.Result, 1)
	if d.tiles != nil {
		go func() {
			tileResults <- d.tiles.PreCache(ctx, flightRoute.Route, flightID, func(completed, total int) {
				report("Caching offline maps", completed, total)
			}, d.opts.Tiles)
		}()
	} else {
		tileResults <- tilecache.Result{}
	}

	report("Building checkpoints", 0, 0)

	cps := checkpoints.Build(flightRoute.Route, d.opts.Checkpoints)
	if len(cps) == 0 {
		return nil, fmt.Errorf("download %s: no checkpoints could be derived from route", flightID)
	}

	if d.enricher != nil {
		report("Identifying landmarks", 0, len(cps))
		cps = d.enricher.Enrich(ctx, cps, func(completed, total int) {
			report("Identifying landmarks", completed, total)
		})
	}

	report("Writing narration", 0, len(cps))
	cps = d.generator.GenerateNarrations(ctx, cps, narration.FlightContext{
		FlightNumber: flightID,
		Airline:      flightRoute.Airline,
		Origin:       flightRoute.Origin,
		Destination:  flightRoute.Destination,
	}, func(completed, total int) {
		report("Writing narration", completed, total)
	})

	report("Generating audio", 0, len(cps))
	cps = d.generator.GenerateAudio(ctx, cps, flightID, func(completed, total int) {
		report("Generating audio", completed, total)
	})

	hasAudio := false
	for _, cp := range cps {
		if cp.AudioRef != "" {
			hasAudio = true
			break
		}
	}

	report("Waiting for offline maps", 0, 0)
	tileResult := <-tileResults

	pack := &skydf.FlightPack{
		ID:                flightID,
		FlightNumber:      flightID,
		DownloadedAt:      time.Now().UTC(),
		Airline:           flightRoute.Airline,
		Origin:            flightRoute.Origin,
		Destination:       flightRoute.Destination,
		Route:             flightRoute.Route,
		Checkpoints:       cps,
		EstimatedDuration: flightRoute.EstimatedDuration,
		HasOfflineMaps:    tileResult.Success,
		HasAudio:          hasAudio,
	}

	if err := d.packs.Save(pack); err != nil {
		return nil, fmt.Errorf("download %s: %w", flightID, err)
	}

	log.Info().
		Str("flight", flightID).
		Str("tier", string(d.generator.Tier())).
		Bool("maps", pack.HasOfflineMaps).
		Bool("audio", pack.HasAudio).
		Int("tilesdownloaded", tileResult.TilesDownloaded).
		Msg("Flight pack download complete")

	report("Flight pack ready", len(cps), len(cps))

	return pack, nil
}

// Track replays or consumes a position stream against a stored pack,
// invoking onTrigger for each newly entered checkpoint. It owns the session
// tracker for the duration of the call.
func (d *Downloader) Track(ctx context.Context, flightID string, simulator *possim.Simulator, onTrigger func(skydf.Checkpoint)) error {
	pack, err := d.packs.Load(flightID)
	if err != nil {
		return err
	}
	if pack == nil {
		return fmt.Errorf("no flight pack stored for %s", skydf.NormaliseFlightID(flightID))
	}

	tracker := geofence.NewTracker()
	tracker.Start(pack)
	defer tracker.Stop()

	return simulator.Walk(ctx, pack.Route, func(position skydf.Position) bool {
		for _, checkpoint := range tracker.OnPosition(position) {
			onTrigger(checkpoint)
		}
		return true
	})
}
