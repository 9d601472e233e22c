// Package ports defines the interfaces the rate limiter consumes.
package ports

import (
	"context"
	"time"
)

// BucketStore persists sliding-window logs: ordered epoch-second timestamps
// per key. Load returns an empty log for absent keys. Save rewrites the whole
// log with the given TTL.
type BucketStore interface {
	Load(ctx context.Context, key string) ([]int64, error)
	Save(ctx context.Context, key string, timestamps []int64, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
