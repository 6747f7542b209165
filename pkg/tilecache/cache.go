// Package tilecache precomputes and stores the map tiles covering a flight's
// route corridor so the moving map keeps working with no connectivity at
// cruise altitude.
package tilecache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/windowseat/windowseat/pkg/blobstore"
	"github.com/windowseat/windowseat/pkg/geomath"
	"github.com/windowseat/windowseat/pkg/retry"
	"github.com/windowseat/windowseat/pkg/skydf"
)

const (
	tileKeyPrefix   = "tiles/"
	staticKeyPrefix = "staticmaps/"

	downloadBatchSize = 10
	tileTimeout       = 30 * time.Second
)

type ProgressFunc func(completed, total int)

type PreCacheOptions struct {
	ZoomLevels   []int
	BufferMetres float64
}

func DefaultPreCacheOptions() PreCacheOptions {
	return PreCacheOptions{
		ZoomLevels:   []int{5, 8, 10},
		BufferMetres: 50_000,
	}
}

// Result summarises one pre-cache run.
type Result struct {
	Success         bool
	TilesDownloaded int
	TilesSkipped    int
	TilesFailed     int
	BytesDownloaded int64
}

// Cache stores tiles (or static map images, when no tile server is
// configured) in the blob store under a per-flight namespace.
type Cache struct {
	blobs  blobstore.Store
	tiles  TileFetcher
	static StaticMapFetcher

	retryOpts retry.Options

	// Known flight namespaces, so tile lookups don't rescan the store.
	mutex   sync.Mutex
	flights map[string]bool
}

// NewCache accepts a nil tiles fetcher (static-map fallback used instead)
// and a nil static fetcher (no offline maps at all, everything degrades to
// nil/false answers).
func NewCache(blobs blobstore.Store, tiles TileFetcher, static StaticMapFetcher) *Cache {
	return &Cache{
		blobs:     blobs,
		tiles:     tiles,
		static:    static,
		retryOpts: retry.DefaultOptions(),
	}
}

func flightTileKey(flightID string, z, x, y int) string {
	return tileKeyPrefix + flightID + "/" + skydf.TileKey(z, x, y)
}

// PreCache downloads the corridor tiles for a route. Failures are counted,
// never fatal; tiles already present are skipped so re-runs are cheap.
func (c *Cache) PreCache(ctx context.Context, route []skydf.RoutePoint, flightID string, onProgress ProgressFunc, opts PreCacheOptions) Result {
	flightID = skydf.NormaliseFlightID(flightID)

	if len(opts.ZoomLevels) == 0 {
		opts.ZoomLevels = DefaultPreCacheOptions().ZoomLevels
	}
	if opts.BufferMetres <= 0 {
		opts.BufferMetres = DefaultPreCacheOptions().BufferMetres
	}

	if len(route) == 0 {
		return Result{}
	}

	if c.tiles == nil {
		return c.preCacheStaticMaps(ctx, route, flightID, onProgress)
	}

	box := routeBoundingBox(route, opts.BufferMetres)

	var coords [][3]int
	for _, zoom := range opts.ZoomLevels {
		coords = append(coords, tilesForBox(box, zoom)...)
	}

	log.Info().
		Str("flight", flightID).
		Ints("zooms", opts.ZoomLevels).
		Int("tiles", len(coords)).
		Msg("Pre-caching route corridor tiles")

	type tileOutcome struct {
		downloaded bool
		skipped    bool
		bytes      int64
	}

	var completed int
	var progressMutex sync.Mutex

	report := func() {
		if onProgress == nil {
			return
		}
		progressMutex.Lock()
		completed++
		onProgress(completed, len(coords))
		progressMutex.Unlock()
	}

	p := pool.NewWithResults[tileOutcome]()
	p.WithMaxGoroutines(downloadBatchSize)

	for _, coord := range coords {
		coord := coord
		p.Go(func() tileOutcome {
			defer report()

			key := flightTileKey(flightID, coord[0], coord[1], coord[2])

			if _, err := c.blobs.Get(key); err == nil {
				return tileOutcome{skipped: true}
			}

			blob, err := retry.Do(ctx, c.retryOpts, func() ([]byte, error) {
				tileCtx, cancel := context.WithTimeout(ctx, tileTimeout)
				defer cancel()
				return c.tiles.FetchTile(tileCtx, coord[0], coord[1], coord[2])
			})
			if err != nil {
				log.Debug().Err(err).Str("tile", skydf.TileKey(coord[0], coord[1], coord[2])).Msg("Tile download failed")
				return tileOutcome{}
			}

			if err := c.blobs.Put(key, blob); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Tile store failed")
				return tileOutcome{}
			}

			return tileOutcome{downloaded: true, bytes: int64(len(blob))}
		})
	}

	result := Result{}
	for _, outcome := range p.Wait() {
		switch {
		case outcome.downloaded:
			result.TilesDownloaded++
			result.BytesDownloaded += outcome.bytes
		case outcome.skipped:
			result.TilesSkipped++
		default:
			result.TilesFailed++
		}
	}

	result.Success = result.TilesDownloaded+result.TilesSkipped > 0

	if result.Success {
		c.rememberFlight(flightID)
	}

	return result
}

// preCacheStaticMaps is the capability substitution: a handful of
// pre-rendered images along the route instead of per-tile caching.
func (c *Cache) preCacheStaticMaps(ctx context.Context, route []skydf.RoutePoint, flightID string, onProgress ProgressFunc) Result {
	if c.static == nil {
		return Result{}
	}

	start := route[0]
	end := route[len(route)-1]
	midLat, midLon := geomath.Interpolate(start.Latitude, start.Longitude, end.Latitude, end.Longitude, 0.5)

	views := []struct {
		name string
		lat  float64
		lon  float64
		zoom int
	}{
		{"overview", midLat, midLon, 4},
		{"regional-origin", start.Latitude, start.Longitude, 7},
		{"regional-destination", end.Latitude, end.Longitude, 7},
		{"detail-origin", start.Latitude, start.Longitude, 10},
		{"detail-destination", end.Latitude, end.Longitude, 10},
	}

	result := Result{}
	for i, view := range views {
		blob, err := retry.Do(ctx, c.retryOpts, func() ([]byte, error) {
			mapCtx, cancel := context.WithTimeout(ctx, tileTimeout)
			defer cancel()
			return c.static.FetchStaticMap(mapCtx, view.lat, view.lon, view.zoom)
		})
		if err != nil {
			log.Debug().Err(err).Str("view", view.name).Msg("Static map download failed")
			result.TilesFailed++
		} else if err := c.blobs.Put(staticKeyPrefix+flightID+"/"+view.name, blob); err != nil {
			result.TilesFailed++
		} else {
			result.TilesDownloaded++
			result.BytesDownloaded += int64(len(blob))
		}

		if onProgress != nil {
			onProgress(i+1, len(views))
		}
	}

	result.Success = result.TilesDownloaded > 0
	return result
}

// CachedTile returns the blob for a tile coordinate from any flight's
// namespace, or nil when nothing is cached.
func (c *Cache) CachedTile(z, x, y int) []byte {
	for flightID := range c.knownFlights() {
		blob, err := c.blobs.Get(flightTileKey(flightID, z, x, y))
		if err == nil {
			return blob
		}
	}

	return nil
}

// StaticMap returns a cached static map image by view name, or nil.
func (c *Cache) StaticMap(flightID, view string) []byte {
	blob, err := c.blobs.Get(staticKeyPrefix + skydf.NormaliseFlightID(flightID) + "/" + view)
	if err != nil {
		return nil
	}
	return blob
}

// HasOfflineMaps answers for either backing strategy.
func (c *Cache) HasOfflineMaps(flightID string) bool {
	flightID = skydf.NormaliseFlightID(flightID)

	for _, prefix := range []string{tileKeyPrefix, staticKeyPrefix} {
		keys, err := c.blobs.ListKeys(prefix + flightID + "/")
		if err == nil && len(keys) > 0 {
			return true
		}
	}

	return false
}

// TilesForFlight inventories the cached tiles for a flight, for storage
// accounting surfaces. StoredAt carries the inventory time since the blob
// store does not track per-key timestamps.
func (c *Cache) TilesForFlight(flightID string) ([]skydf.TileRecord, error) {
	flightID = skydf.NormaliseFlightID(flightID)

	keys, err := c.blobs.ListKeys(tileKeyPrefix + flightID + "/")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	var records []skydf.TileRecord
	for _, key := range keys {
		blob, err := c.blobs.Get(key)
		if err != nil {
			continue
		}

		records = append(records, skydf.TileRecord{
			Key:       strings.TrimPrefix(key, tileKeyPrefix+flightID+"/"),
			FlightID:  flightID,
			SizeBytes: int64(len(blob)),
			StoredAt:  now,
		})
	}

	return records, nil
}

// ClearForFlight deletes every tile and static map for the flight.
func (c *Cache) ClearForFlight(flightID string) error {
	flightID = skydf.NormaliseFlightID(flightID)

	c.mutex.Lock()
	delete(c.flights, flightID)
	c.mutex.Unlock()

	for _, prefix := range []string{tileKeyPrefix, staticKeyPrefix} {
		keys, err := c.blobs.ListKeys(prefix + flightID + "/")
		if err != nil {
			return fmt.Errorf("list %s keys: %w", prefix, err)
		}
		for _, key := range keys {
			if err := c.blobs.Delete(key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
		}
	}

	return nil
}

// ClearAll deletes every cached tile and static map across all flights.
func (c *Cache) ClearAll() error {
	c.mutex.Lock()
	c.flights = nil
	c.mutex.Unlock()

	for _, prefix := range []string{tileKeyPrefix, staticKeyPrefix} {
		keys, err := c.blobs.ListKeys(prefix)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := c.blobs.Delete(key); err != nil {
				return err
			}
		}
	}

	return nil
}

func (c *Cache) rememberFlight(flightID string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.flights == nil {
		c.flights = map[string]bool{}
	}
	c.flights[flightID] = true
}

// knownFlights lazily rebuilds the flight namespace set from stored keys.
func (c *Cache) knownFlights() map[string]bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.flights != nil {
		return c.flights
	}

	c.flights = map[string]bool{}
	keys, err := c.blobs.ListKeys(tileKeyPrefix)
	if err != nil {
		return c.flights
	}

	for _, key := range keys {
		rest := strings.TrimPrefix(key, tileKeyPrefix)
		if i := strings.IndexByte(rest, '/'); i > 0 {
			c.flights[rest[:i]] = true
		}
	}

	return c.flights
}
