package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// RedisStore is the durable, process-external cache backend. Backend failures
// are logged at debug level and swallowed: a broken Redis turns the cache
// into an always-miss layer, it never breaks a read path.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Get returns the payload stored under key if the envelope is still fresh.
// A stale entry is deleted on read rather than proactively swept.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Debug("redis get failed, treating as miss", "key", key, "error", err)
		return nil, false
	}

	entry, err := decodeEntry(raw)
	if err != nil {
		slog.Warn("deleting corrupt cache envelope", "key", key, "error", err)
		s.rdb.Del(ctx, key)
		return nil, false
	}
	if !entry.Valid(time.Now()) {
		s.rdb.Del(ctx, key)
		return nil, false
	}
	return entry.Data, true
}

// Set stores a payload under key. The envelope TTL governs validity; the
// Redis expiry is set slightly longer as a garbage-collection backstop for
// entries no reader ever touches again.
func (s *RedisStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	raw, err := encodeEntry(data, time.Now(), ttl)
	if err != nil {
		slog.Warn("failed to encode cache envelope", "key", key, "error", err)
		return
	}
	if err := s.rdb.Set(ctx, key, raw, ttl*2).Err(); err != nil {
		slog.Debug("redis set failed, dropping write", "key", key, "error", err)
	}
}

// RemoveByPrefix deletes every key starting with prefix using SCAN so large
// key spaces do not block the server.
func (s *RedisStore) RemoveByPrefix(ctx context.Context, prefix string) {
	iter := s.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			slog.Debug("redis del failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		slog.Debug("redis scan failed", "prefix", prefix, "error", err)
	}
}
