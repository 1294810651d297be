// Package cache defines the key/value cache used for exchange rates and rate snapshots.
package cache

import (
	"context"
	"time"
)

// Cache stores JSON-encodable values under string keys with a TTL.
// A ttl of zero means the entry never expires.
type Cache interface {
	// Get decodes the value stored under key into dest. found is false on a miss.
	Get(ctx context.Context, key string, dest any) (found bool, err error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
