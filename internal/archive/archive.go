// Package archive persists accepted contact messages in the key-value store.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"contactd/internal/contact/models"
	"contactd/internal/kv"
	"contactd/pkg/requestcontext"
)

// KeyPrefix namespaces archived messages within the shared store.
const KeyPrefix = "contact:"

// DefaultTTL keeps a message for one year.
const DefaultTTL = 365 * 24 * time.Hour

// Store writes each message once under a fresh key. Messages are never
// updated or read back by the service.
type Store struct {
	kv    kv.Store
	ttl   time.Duration
	newID func() string
}

type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

func New(store kv.Store, opts ...Option) (*Store, error) {
	if store == nil {
		return nil, errors.New("kv store is required")
	}
	s := &Store{
		kv:    store,
		ttl:   DefaultTTL,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save stores msg as JSON under contact:<unix-ms>:<id> and returns the key.
// An empty language is recorded as the default; a zero CreatedAt is taken
// from the request time.
func (s *Store) Save(ctx context.Context, msg models.OutboundMessage) (string, error) {
	now := requestcontext.Now(ctx)
	if msg.Language == "" {
		msg.Language = models.DefaultLanguage
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	msg.CreatedAt = msg.CreatedAt.UTC()

	value, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal contact message: %w", err)
	}

	key := fmt.Sprintf("%s%d:%s", KeyPrefix, now.UnixMilli(), s.newID())
	if err := s.kv.Put(ctx, key, value, s.ttl); err != nil {
		return "", fmt.Errorf("archive contact message: %w", err)
	}
	return key, nil
}
