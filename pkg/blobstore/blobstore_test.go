package blobstore

import (
	"errors"
	"path/filepath"
	"sort"
	"testing"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	fsStore, err := NewFilesystemStore(filepath.Join(t.TempDir(), "blobs"))
	if err != nil {
		t.Fatalf("filesystem store: %v", err)
	}

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "blobs.db"))
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}

	return map[string]Store{
		"memory":     NewMemoryStore(),
		"filesystem": fsStore,
		"sqlite":     sqliteStore,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			if err := store.Put("packs/BA123", []byte("pack-data")); err != nil {
				t.Fatalf("put: %v", err)
			}

			value, err := store.Get("packs/BA123")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(value) != "pack-data" {
				t.Fatalf("unexpected value %q", value)
			}

			// Overwrite wins.
			if err := store.Put("packs/BA123", []byte("updated")); err != nil {
				t.Fatalf("put overwrite: %v", err)
			}
			value, _ = store.Get("packs/BA123")
			if string(value) != "updated" {
				t.Fatalf("overwrite not applied, got %q", value)
			}
		})
	}
}

func TestStoreGetMissing(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			_, err := store.Get("packs/NOPE")
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStoreDeleteIsIdempotent(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			_ = store.Put("tiles/BA123/10/1/2", []byte{1, 2, 3})

			if err := store.Delete("tiles/BA123/10/1/2"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := store.Delete("tiles/BA123/10/1/2"); err != nil {
				t.Fatalf("second delete: %v", err)
			}

			if _, err := store.Get("tiles/BA123/10/1/2"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
		})
	}
}

func TestStoreListKeysByPrefix(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			_ = store.Put("tiles/BA123/10/1/2", []byte{1})
			_ = store.Put("tiles/BA123/11/2/4", []byte{2})
			_ = store.Put("tiles/VS45/10/1/2", []byte{3})
			_ = store.Put("packs/BA123", []byte{4})

			keys, err := store.ListKeys("tiles/BA123/")
			if err != nil {
				t.Fatalf("list: %v", err)
			}

			sort.Strings(keys)
			want := []string{"tiles/BA123/10/1/2", "tiles/BA123/11/2/4"}
			if len(keys) != len(want) {
				t.Fatalf("got keys %v, want %v", keys, want)
			}
			for i := range want {
				if keys[i] != want[i] {
					t.Fatalf("got keys %v, want %v", keys, want)
				}
			}
		})
	}
}

func TestStoreTotalSize(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			_ = store.Put("a", make([]byte, 100))
			_ = store.Put("b", make([]byte, 50))

			size, err := store.TotalSize()
			if err != nil {
				t.Fatalf("total size: %v", err)
			}
			if size != 150 {
				t.Fatalf("size = %d, want 150", size)
			}
		})
	}
}
