// Package kv is the key-value abstraction shared by the rate limiter and the
// message archive. Values are opaque bytes; every write carries a TTL so the
// backend reclaims idle keys on its own.
package kv

import (
	"context"
	"time"
)

// Store is the minimal key-value contract. Get returns sentinel.ErrNotFound
// for absent or expired keys. A ttl <= 0 stores the value without expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// HealthChecker is implemented by stores backed by a remote service.
type HealthChecker interface {
	Health(ctx context.Context) error
}
