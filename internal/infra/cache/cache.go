// Package cache provides the TTL-governed key-value store that backs every
// layer of the analytics engine.
//
// Values are wrapped in a JSON envelope {data, timestamp, ttl} and expire
// lazily: an entry is valid iff now - timestamp <= ttl, and a stale entry is
// deleted on the read that observes it. The cache is an optimization, never a
// source of truth, so a failing backend degrades to "always miss" on reads
// and no-ops on writes instead of surfacing errors.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/r0zar/streakwatch/internal/metrics"
)

// Store is the contract shared by all cache backends.
type Store interface {
	// Get returns the payload stored under key, or false if the key is
	// absent, expired or the backend is unavailable.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a payload under key with the given TTL.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration)

	// RemoveByPrefix deletes every key starting with prefix.
	RemoveByPrefix(ctx context.Context, prefix string)
}

// Entry is the wire envelope every cached value is wrapped in.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // epoch ms at write time
	TTL       int64           `json:"ttl"`       // ms
}

// Valid reports whether the entry is still fresh at the given time.
func (e Entry) Valid(now time.Time) bool {
	return now.UnixMilli()-e.Timestamp <= e.TTL
}

func encodeEntry(data []byte, now time.Time, ttl time.Duration) ([]byte, error) {
	return json.Marshal(Entry{
		Data:      data,
		Timestamp: now.UnixMilli(),
		TTL:       ttl.Milliseconds(),
	})
}

func decodeEntry(raw []byte) (Entry, error) {
	var e Entry
	err := json.Unmarshal(raw, &e)
	return e, err
}

// GetJSON reads and unmarshals a typed value from the store. A missing entry,
// an expired entry or a decode failure all count as a miss.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool) {
	var v T
	data, ok := s.Get(ctx, key)
	if !ok {
		metrics.CacheMissesTotal.Inc()
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		slog.Warn("discarding undecodable cache entry", "key", key, "error", err)
		metrics.CacheMissesTotal.Inc()
		return v, false
	}
	metrics.CacheHitsTotal.Inc()
	return v, true
}

// SetJSON marshals and stores a typed value. Marshal failures are logged and
// dropped, matching the availability-over-durability contract of the store.
func SetJSON[T any](ctx context.Context, s Store, key string, v T, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("failed to marshal cache value", "key", key, "error", err)
		return
	}
	s.Set(ctx, key, data, ttl)
}
