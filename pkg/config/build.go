package config

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/windowseat/windowseat/pkg/blobstore"
	"github.com/windowseat/windowseat/pkg/checkpoints"
	"github.com/windowseat/windowseat/pkg/downloader"
	"github.com/windowseat/windowseat/pkg/enrichment"
	"github.com/windowseat/windowseat/pkg/narration"
	"github.com/windowseat/windowseat/pkg/packstore"
	"github.com/windowseat/windowseat/pkg/routesource"
	"github.com/windowseat/windowseat/pkg/tilecache"
)

// OpenBlobStore opens the configured storage backend. The caller owns the
// returned store and must Close it.
func (c *Config) OpenBlobStore() (blobstore.Store, error) {
	switch c.Storage.Backend {
	case "filesystem", "":
		return blobstore.NewFilesystemStore(filepath.Join(c.DataDir, "blobs"))
	case "sqlite":
		return blobstore.NewSQLiteStore(filepath.Join(c.DataDir, "windowseat.db"))
	case "memory":
		return blobstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
}

// BuildRouteSource returns the flight data client, or the synthetic demo
// source when no provider is configured.
func (c *Config) BuildRouteSource() routesource.Source {
	if c.FlightData.URL == "" {
		return routesource.NewSyntheticSource()
	}

	return routesource.NewHTTPSource(c.FlightData.URL, c.FlightData.APIKey)
}

// BuildEnricher returns nil when no geocoder is configured; the pipeline then
// skips landmark enrichment.
func (c *Config) BuildEnricher() *enrichment.Enricher {
	if c.Geocoder.URL == "" {
		log.Debug().Msg("No geocoder configured, landmark enrichment disabled")
		return nil
	}

	opts := enrichment.DefaultOptions()
	opts.GeocodeInterval = c.GeocodeInterval()

	var pois enrichment.POIClient
	if c.POI.URL != "" {
		pois = enrichment.NewOverpassPOIClient(c.POI.URL)
	}

	return enrichment.NewEnricher(enrichment.NewNominatimGeocoder(c.Geocoder.URL), pois, opts)
}

// BuildGenerator selects the narration tier from the configured
// collaborators. Missing URLs produce nil clients and a lower tier.
func (c *Config) BuildGenerator(blobs blobstore.Store) *narration.Generator {
	var text narration.TextGenerator
	if c.Narration.URL != "" {
		text = narration.NewHTTPTextGenerator(c.Narration.URL, c.Narration.APIKey, c.Narration.Model)
	}

	var voice narration.Synthesizer
	if c.Voice.URL != "" {
		voice = narration.NewHTTPSynthesizer(c.Voice.URL, c.Voice.APIKey)
	}

	return narration.NewGenerator(text, voice, blobs)
}

// BuildTileCache returns nil when neither a tile server nor a static map
// endpoint is configured.
func (c *Config) BuildTileCache(blobs blobstore.Store) *tilecache.Cache {
	if c.Tiles.URL == "" && c.Tiles.StaticURL == "" {
		log.Debug().Msg("No map source configured, offline maps disabled")
		return nil
	}

	var tiles tilecache.TileFetcher
	if c.Tiles.URL != "" {
		tiles = tilecache.NewHTTPTileFetcher(c.Tiles.URL)
	}

	var static tilecache.StaticMapFetcher
	if c.Tiles.StaticURL != "" {
		static = tilecache.NewHTTPStaticMapFetcher(c.Tiles.StaticURL)
	}

	return tilecache.NewCache(blobs, tiles, static)
}

// TilePreCacheOptions applies the configured zoom levels and corridor buffer
// over the defaults.
func (c *Config) TilePreCacheOptions() tilecache.PreCacheOptions {
	opts := tilecache.DefaultPreCacheOptions()
	if len(c.Tiles.ZoomLevels) > 0 {
		opts.ZoomLevels = c.Tiles.ZoomLevels
	}
	if c.Tiles.BufferMetres > 0 {
		opts.BufferMetres = c.Tiles.BufferMetres
	}

	return opts
}

// BuildDownloader wires the whole pipeline over one blob store.
func (c *Config) BuildDownloader(blobs blobstore.Store) (*downloader.Downloader, *packstore.Store, *tilecache.Cache, error) {
	tiles := c.BuildTileCache(blobs)

	var cleaner packstore.TileCleaner
	if tiles != nil {
		cleaner = tiles
	}

	packs, err := packstore.NewStore(blobs, cleaner)
	if err != nil {
		return nil, nil, nil, err
	}

	opts := downloader.DefaultOptions()
	opts.Checkpoints = checkpoints.BuildOptions{
		NumCheckpoints:       c.Checkpoints.Count,
		MinSpacingMetres:     c.Checkpoints.MinSpacingMetres,
		GeofenceRadiusMetres: c.Checkpoints.RadiusMetres,
	}
	opts.Tiles = c.TilePreCacheOptions()

	d := downloader.New(c.BuildRouteSource(), c.BuildEnricher(), c.BuildGenerator(blobs), packs, tiles, opts)

	return d, packs, tiles, nil
}
