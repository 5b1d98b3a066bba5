package cache

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. It backs tests and serves as the
// degraded-mode fallback when Redis is unreachable at startup: analytics stay
// correct, only cross-process durability is lost.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte

	// now is the clock used for expiry checks, injectable for tests.
	now func() time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]byte),
		now:     time.Now,
	}
}

// SetClock replaces the store's clock. Test use only.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Get returns the payload stored under key if its envelope is still fresh,
// deleting stale entries on access.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.entries[key]
	if !ok {
		return nil, false
	}

	entry, err := decodeEntry(raw)
	if err != nil {
		slog.Warn("deleting corrupt cache envelope", "key", key, "error", err)
		delete(s.entries, key)
		return nil, false
	}
	if !entry.Valid(s.now()) {
		delete(s.entries, key)
		return nil, false
	}
	return entry.Data, true
}

// Set stores a payload under key.
func (s *MemoryStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := encodeEntry(data, s.now(), ttl)
	if err != nil {
		slog.Warn("failed to encode cache envelope", "key", key, "error", err)
		return
	}
	s.entries[key] = raw
}

// RemoveByPrefix deletes every key starting with prefix.
func (s *MemoryStore) RemoveByPrefix(ctx context.Context, prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
}

// Len returns the number of stored entries, including not-yet-swept stale
// ones. Test use only.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
