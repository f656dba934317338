// Package cache defines the key/value cache the orchestrator keeps ranked
// results and suggestions in.
package cache

import (
	"context"
	"time"
)

// Cache stores encoded values under string keys with a per-entry TTL.
// Expired entries behave as missing.
type Cache interface {
	// Get returns the value stored under key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key for ttl. A non-positive ttl stores the
	// value without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Nop is a Cache that stores nothing.
type Nop struct{}

var _ Cache = Nop{}

// Get always misses.
func (Nop) Get(context.Context, string) ([]byte, bool) { return nil, false }

// Set discards the value.
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
