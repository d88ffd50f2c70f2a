// Package cache defines the key-value store used for search results, hot
// catalog payloads and download rate-limit counters.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is a string-keyed byte store with per-key TTL. Get and Put are
// atomic per key; concurrent writers race with last-write-wins semantics,
// which is acceptable for idempotent payloads.
type Cache interface {
	// Get returns the value at key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value at key with the given TTL, replacing any previous
	// value wholesale.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Refresh resets an existing key's expiry to the full TTL. Absent keys
	// are a no-op.
	Refresh(ctx context.Context, key string, ttl time.Duration) error
}

// Counter is the atomic increment surface used for rate limiting.
type Counter interface {
	// IncrBy adds delta to the integer at key and returns the new value.
	IncrBy(ctx context.Context, key string, delta int64) (int64, error)
	// Expire sets the key's TTL.
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
