// Package blobstore defines the key-value blob storage the pack store, tile
// cache and audio pipeline persist into. Backends are interchangeable at
// construction time; business logic never branches on the storage kind.
package blobstore

import "errors"

// ErrNotFound is returned by Get when no blob exists for the key.
var ErrNotFound = errors.New("blobstore: key not found")

// Store is a flat namespace of keys ("packs/BA123", "tiles/BA123/10/512/340")
// mapping to opaque byte blobs.
type Store interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error

	// ListKeys returns every key beginning with prefix, in unspecified order.
	ListKeys(prefix string) ([]string, error)

	// TotalSize returns the summed size in bytes of all stored blobs.
	TotalSize() (int64, error)

	Close() error
}
