package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"contactd/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	now   time.Time
	store *MemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.now = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewMemoryStore(WithClock(func() time.Time { return s.now }))
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, "nope")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestPutGet() {
	s.Require().NoError(s.store.Put(s.ctx, "k", []byte("v"), time.Minute))

	got, err := s.store.Get(s.ctx, "k")
	s.Require().NoError(err)
	s.Equal([]byte("v"), got)
	s.Equal(time.Minute, s.store.TTL("k"))
}

func (s *MemoryStoreSuite) TestExpiry() {
	s.Require().NoError(s.store.Put(s.ctx, "k", []byte("v"), time.Minute))

	s.now = s.now.Add(59 * time.Second)
	_, err := s.store.Get(s.ctx, "k")
	s.NoError(err, "still live one second before expiry")

	s.now = s.now.Add(time.Second)
	_, err = s.store.Get(s.ctx, "k")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestNoTTLNeverExpires() {
	s.Require().NoError(s.store.Put(s.ctx, "k", []byte("v"), 0))
	s.now = s.now.Add(10 * 365 * 24 * time.Hour)
	_, err := s.store.Get(s.ctx, "k")
	s.NoError(err)
}

func (s *MemoryStoreSuite) TestValuesAreCopied() {
	buf := []byte("abc")
	s.Require().NoError(s.store.Put(s.ctx, "k", buf, time.Minute))
	buf[0] = 'x'

	got, err := s.store.Get(s.ctx, "k")
	s.Require().NoError(err)
	s.Equal([]byte("abc"), got)
}

func (s *MemoryStoreSuite) TestDeleteAndKeys() {
	s.Require().NoError(s.store.Put(s.ctx, "contact:1", []byte("a"), time.Minute))
	s.Require().NoError(s.store.Put(s.ctx, "contact:2", []byte("b"), time.Minute))
	s.Require().NoError(s.store.Put(s.ctx, "rl:ip", []byte("c"), time.Minute))

	s.ElementsMatch([]string{"contact:1", "contact:2"}, s.store.Keys("contact:"))

	s.Require().NoError(s.store.Delete(s.ctx, "contact:1"))
	s.ElementsMatch([]string{"contact:2"}, s.store.Keys("contact:"))
}
