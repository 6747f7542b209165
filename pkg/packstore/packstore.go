// Package packstore persists flight packs into the blob store, fronted by an
// in-memory hot cache so flight-time loads never touch durable storage twice.
package packstore

import (
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/exp/slices"

	"github.com/windowseat/windowseat/pkg/blobstore"
	"github.com/windowseat/windowseat/pkg/skydf"
)

const (
	packKeyPrefix  = "packs/"
	audioKeyPrefix = "audio/"

	hotCacheSize = 8
)

// TileCleaner is the cross-component hook into the tile cache so deleting a
// pack also clears its offline maps. Cleanup is best-effort.
type TileCleaner interface {
	ClearForFlight(flightID string) error
}

type Store struct {
	blobs blobstore.Store
	tiles TileCleaner
	hot   *lru.Cache[string, *skydf.FlightPack]
}

// NewStore wires the pack store over a blob backend. tiles may be nil when no
// tile cache is attached.
func NewStore(blobs blobstore.Store, tiles TileCleaner) (*Store, error) {
	hot, err := lru.New[string, *skydf.FlightPack](hotCacheSize)
	if err != nil {
		return nil, err
	}

	return &Store{blobs: blobs, tiles: tiles, hot: hot}, nil
}

func packKey(flightID string) string {
	return packKeyPrefix + flightID
}

// Save persists the pack under its normalized flight id. Re-saving the same
// id overwrites; the later save wins.
func (s *Store) Save(pack *skydf.FlightPack) error {
	if pack == nil || pack.ID == "" {
		return errors.New("packstore: pack has no id")
	}

	pack.ID = skydf.NormaliseFlightID(pack.ID)

	encoded, err := msgpack.Marshal(pack)
	if err != nil {
		return fmt.Errorf("encode pack %s: %w", pack.ID, err)
	}

	if err := s.blobs.Put(packKey(pack.ID), encoded); err != nil {
		return fmt.Errorf("store pack %s: %w", pack.ID, err)
	}

	s.hot.Add(pack.ID, pack)

	log.Info().
		Str("flight", pack.ID).
		Int("checkpoints", len(pack.Checkpoints)).
		Int("bytes", len(encoded)).
		Msg("Saved flight pack")

	return nil
}

// Load returns the pack for the flight id, or nil when none is stored.
func (s *Store) Load(flightID string) (*skydf.FlightPack, error) {
	flightID = skydf.NormaliseFlightID(flightID)

	if pack, ok := s.hot.Get(flightID); ok {
		return pack, nil
	}

	encoded, err := s.blobs.Get(packKey(flightID))
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load pack %s: %w", flightID, err)
	}

	var pack skydf.FlightPack
	if err := msgpack.Unmarshal(encoded, &pack); err != nil {
		return nil, fmt.Errorf("decode pack %s: %w", flightID, err)
	}

	s.hot.Add(flightID, &pack)

	return &pack, nil
}

// List returns summaries of every stored pack, most recently downloaded
// first.
func (s *Store) List() ([]skydf.PackSummary, error) {
	keys, err := s.blobs.ListKeys(packKeyPrefix)
	if err != nil {
		return nil, err
	}

	var summaries []skydf.PackSummary
	for _, key := range keys {
		pack, err := s.Load(strings.TrimPrefix(key, packKeyPrefix))
		if err != nil || pack == nil {
			log.Warn().Err(err).Str("key", key).Msg("Skipping unreadable pack")
			continue
		}

		summaries = append(summaries, skydf.PackSummary{
			ID:             pack.ID,
			FlightNumber:   pack.FlightNumber,
			Airline:        pack.Airline,
			Origin:         pack.Origin,
			Destination:    pack.Destination,
			DownloadedAt:   pack.DownloadedAt,
			Checkpoints:    len(pack.Checkpoints),
			HasOfflineMaps: pack.HasOfflineMaps,
			HasAudio:       pack.HasAudio,
		})
	}

	slices.SortFunc(summaries, func(a, b skydf.PackSummary) int {
		return b.DownloadedAt.Compare(a.DownloadedAt)
	})

	return summaries, nil
}

// Delete removes the pack, its audio blobs and, best-effort, its cached
// tiles. A tile cleanup failure never fails the delete.
func (s *Store) Delete(flightID string) error {
	flightID = skydf.NormaliseFlightID(flightID)

	s.hot.Remove(flightID)

	if err := s.blobs.Delete(packKey(flightID)); err != nil {
		return fmt.Errorf("delete pack %s: %w", flightID, err)
	}

	if keys, err := s.blobs.ListKeys(audioKeyPrefix + flightID + "/"); err == nil {
		for _, key := range keys {
			_ = s.blobs.Delete(key)
		}
	}

	if s.tiles != nil {
		if err := s.tiles.ClearForFlight(flightID); err != nil {
			log.Warn().Err(err).Str("flight", flightID).Msg("Tile cleanup failed during pack delete")
		}
	}

	return nil
}

// Clear removes every stored pack.
func (s *Store) Clear() error {
	keys, err := s.blobs.ListKeys(packKeyPrefix)
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := s.Delete(strings.TrimPrefix(key, packKeyPrefix)); err != nil {
			return err
		}
	}

	s.hot.Purge()

	return nil
}

// SizeBytes reports total bytes held by the backing blob store, covering
// packs, audio and tiles alike.
func (s *Store) SizeBytes() (int64, error) {
	return s.blobs.TotalSize()
}
