package bucket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"contactd/internal/kv"
	"contactd/pkg/platform/sentinel"
)

// Store implements ports.BucketStore on top of a kv.Store. Each window log
// is a JSON array of epoch seconds, rewritten as a whole on every admitted
// request. There is no compare-and-swap: concurrent writers race and the
// last write wins.
type Store struct {
	kv kv.Store
}

// New creates a bucket store backed by the given key-value store.
func New(store kv.Store) *Store {
	return &Store{kv: store}
}

// Load returns the stored log for key, or nil when absent.
// A record that cannot be decoded yields sentinel.ErrInvalidState.
func (s *Store) Load(ctx context.Context, key string) ([]int64, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load window %s: %w", key, err)
	}

	var timestamps []int64
	if err := json.Unmarshal(raw, &timestamps); err != nil {
		return nil, fmt.Errorf("%w: decode window %s: %w", sentinel.ErrInvalidState, key, err)
	}
	return timestamps, nil
}

// Save rewrites the log for key. The TTL is the window length, so an idle
// key disappears once nothing in it can still count.
func (s *Store) Save(ctx context.Context, key string, timestamps []int64, ttl time.Duration) error {
	raw, err := json.Marshal(timestamps)
	if err != nil {
		return fmt.Errorf("encode window %s: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, raw, ttl); err != nil {
		return fmt.Errorf("save window %s: %w", key, err)
	}
	return nil
}

// Delete clears the log for key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete window %s: %w", key, err)
	}
	return nil
}
