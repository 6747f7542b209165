package blobstore

import (
	"strings"
	"sync"
)

// MemoryStore keeps blobs in process memory. Used in tests and as the
// fallback when no durable backend is configured.
type MemoryStore struct {
	mutex sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: map[string][]byte{}}
}

func (s *MemoryStore) Put(key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.blobs[key] = stored

	return nil
}

func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, ok := s.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}

	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.blobs, key)
	return nil
}

func (s *MemoryStore) ListKeys(prefix string) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var keys []string
	for key := range s.blobs {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

func (s *MemoryStore) TotalSize() (int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var total int64
	for _, value := range s.blobs {
		total += int64(len(value))
	}

	return total, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
