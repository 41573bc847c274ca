// Package cache stores derived artifacts, such as rendered diagrams, keyed
// by a hash of their inputs.
//
// Keys are content addressed: the same inputs always map to the same key, so
// entries never need invalidation and a zero TTL keeps them forever.
//
//	c, _ := cache.NewFileCache(dir)
//	key := cache.Key("svg", dot)
//	if data, hit, _ := c.Get(ctx, key); hit {
//		return data
//	}
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the entry for key. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key derives a cache key of the form kind:sha256(parts).
func Key(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}

// Hash computes a SHA-256 hash of the input data and returns the full
// 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
