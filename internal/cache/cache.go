// Package cache memoizes router shortest-path results keyed by the
// expected-duration table's content hash and the (source, target) pair, so
// repeated queries against an unchanged table within one iteration are
// served without re-running Dijkstra.
package cache

import (
	"context"
	"errors"
	"time"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrCacheClosed = errors.New("cache is closed")
)

// Cache is a minimal byte-oriented cache: the router marshals its route
// results, callers need not know the backend.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

// Stats summarizes cache effectiveness: key count, hits, misses and hit rate.
type Stats struct {
	TotalKeys int64
	Hits      int64
	Misses    int64
	HitRate   float64
	Backend   string
}

// Options configures cache construction.
type Options struct {
	Backend    string
	DefaultTTL time.Duration

	MaxEntries      int
	CleanupInterval time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int
}

// DefaultOptions returns sensible defaults for an in-process router cache.
func DefaultOptions() *Options {
	return &Options{
		Backend:         BackendMemory,
		DefaultTTL:      10 * time.Minute,
		MaxEntries:      50000,
		CleanupInterval: time.Minute,
		RedisAddr:       "localhost:6379",
		RedisPoolSize:   10,
	}
}

// New builds a Cache for the given options, defaulting to an in-memory
// backend for any unrecognized or empty Backend value.
func New(opts *Options) (Cache, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	switch opts.Backend {
	case BackendRedis:
		return NewRedisCache(opts)
	default:
		return NewMemoryCache(opts), nil
	}
}
