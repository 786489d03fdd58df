package checkpoint

import (
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store with the same key layout as the SQLite
// implementation. It backs tests and runs that opt out of durability.
type MemoryStore struct {
	mu   sync.Mutex
	pair string
	kv   map[string]string
}

// NewMemoryStore returns a pair-scoped in-memory store.
func NewMemoryStore(sourceProject, destProject string) *MemoryStore {
	return &MemoryStore{
		pair: pairKey(sourceProject, destProject),
		kv:   make(map[string]string),
	}
}

func (s *MemoryStore) HasCheckpoint() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.kv[s.pair]
	return ok, nil
}

func (s *MemoryStore) SaveCursor(streamKey, cursor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[s.pair] = "1"
	s.kv[cursorKey(s.pair, streamKey)] = cursor
	return nil
}

func (s *MemoryStore) GetCursor(streamKey string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv[cursorKey(s.pair, streamKey)], nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.kv, s.pair)
	prefix := s.pair + "_cursor_"
	for k := range s.kv {
		if strings.HasPrefix(k, prefix) {
			delete(s.kv, k)
		}
	}
	return nil
}
