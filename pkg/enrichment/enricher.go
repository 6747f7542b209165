// Package enrichment attaches real-world landmark names to checkpoints using
// a reverse geocoder and a POI radius query. Best-effort throughout: a failed
// lookup leaves the checkpoint exactly as the builder produced it.
package enrichment

import (
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/windowseat/windowseat/pkg/retry"
	"github.com/windowseat/windowseat/pkg/skydf"
)

const maxNearbyFeatures = 5

type ProgressFunc func(completed, total int)

type Options struct {
	// GeocodeInterval throttles reverse geocode calls to respect the usage
	// policy of public Nominatim instances.
	GeocodeInterval time.Duration

	POIRadiusMetres float64

	Retry retry.Options
}

func DefaultOptions() Options {
	return Options{
		GeocodeInterval: 1100 * time.Millisecond,
		POIRadiusMetres: 15_000,
		Retry:           retry.DefaultOptions(),
	}
}

type Enricher struct {
	geocoder Geocoder
	pois     POIClient
	limiter  *rate.Limiter
	opts     Options
}

func NewEnricher(geocoder Geocoder, pois POIClient, opts Options) *Enricher {
	if opts.GeocodeInterval <= 0 {
		opts.GeocodeInterval = DefaultOptions().GeocodeInterval
	}
	if opts.POIRadiusMetres <= 0 {
		opts.POIRadiusMetres = DefaultOptions().POIRadiusMetres
	}

	return &Enricher{
		geocoder: geocoder,
		pois:     pois,
		limiter:  rate.NewLimiter(rate.Every(opts.GeocodeInterval), 1),
		opts:     opts,
	}
}

// Enrich returns an enriched copy of the checkpoints; the input slice is
// never mutated, dropped from or reordered. Progress fires once per
// checkpoint whether or not its lookups succeeded.
func (e *Enricher) Enrich(ctx context.Context, checkpoints []skydf.Checkpoint, onProgress ProgressFunc) []skydf.Checkpoint {
	enriched := make([]skydf.Checkpoint, 0, len(checkpoints))
	if err := copier.CopyWithOption(&enriched, &checkpoints, copier.Option{DeepCopy: true}); err != nil {
		// Copy failure degrades to a shallow clone rather than aborting.
		enriched = append(enriched[:0], checkpoints...)
	}

	for i := range enriched {
		if err := e.enrichOne(ctx, &enriched[i]); err != nil {
			log.Warn().
				Err(err).
				Str("checkpoint", enriched[i].ID).
				Msg("Checkpoint enrichment failed, keeping original")
		}

		if onProgress != nil {
			onProgress(i+1, len(enriched))
		}
	}

	return enriched
}

func (e *Enricher) enrichOne(ctx context.Context, checkpoint *skydf.Checkpoint) error {
	if e.geocoder == nil {
		return nil
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return err
	}

	geocode, err := retry.Do(ctx, e.opts.Retry, func() (*GeocodeResult, error) {
		return e.geocoder.ReverseGeocode(ctx, checkpoint.Latitude, checkpoint.Longitude)
	})
	if err != nil {
		return fmt.Errorf("reverse geocode: %w", err)
	}

	if !geocode.OverLand() {
		// Open ocean. Nothing named below, no point burning a POI query.
		return nil
	}

	landmark := &skydf.LandmarkInfo{
		Name:     placeName(geocode),
		Type:     "place",
		Category: "region",
		Region:   geocode.Address.State,
		Country:  geocode.Address.Country,
	}

	if e.pois != nil {
		elements, err := retry.Do(ctx, e.opts.Retry, func() ([]POIElement, error) {
			return e.pois.QueryPOIs(ctx, checkpoint.Latitude, checkpoint.Longitude, e.opts.POIRadiusMetres)
		})
		if err != nil {
			// Geocode alone is still worth keeping.
			log.Debug().Err(err).Str("checkpoint", checkpoint.ID).Msg("POI query failed")
		} else {
			applyPOIs(landmark, elements)
		}
	}

	if landmark.Name != "" {
		checkpoint.Name = landmark.Name
		checkpoint.Landmark = landmark
	}

	return nil
}

// applyPOIs folds ranked POIs into the landmark. A notable POI (anything
// above the plain named-feature tier) takes over as the landmark name.
func applyPOIs(landmark *skydf.LandmarkInfo, elements []POIElement) {
	ranked := rankPOIs(elements, maxNearbyFeatures)
	if len(ranked) == 0 {
		return
	}

	top := ranked[0]
	if top.score > scoreNamedFeature {
		landmark.Name = top.name
		landmark.Type = top.poiType
		landmark.Category = top.category
	}

	for _, poi := range ranked {
		landmark.NearbyFeatures = append(landmark.NearbyFeatures, skydf.NearbyFeature{
			Name: poi.name,
			Type: poi.poiType,
		})
	}
}

func placeName(geocode *GeocodeResult) string {
	address := geocode.Address

	for _, candidate := range []string{address.City, address.County, address.State} {
		if candidate != "" {
			if address.Country != "" {
				return fmt.Sprintf("%s, %s", candidate, address.Country)
			}
			return candidate
		}
	}

	return address.Country
}
