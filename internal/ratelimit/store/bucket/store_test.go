package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"contactd/internal/kv"
	"contactd/pkg/platform/sentinel"
)

type BucketStoreSuite struct {
	suite.Suite
	kv    *kv.MemoryStore
	store *Store
	ctx   context.Context
}

func TestBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(BucketStoreSuite))
}

func (s *BucketStoreSuite) SetupTest() {
	s.kv = kv.NewMemoryStore()
	s.store = New(s.kv)
	s.ctx = context.Background()
}

func (s *BucketStoreSuite) TestLoadAbsentKeyIsEmpty() {
	ts, err := s.store.Load(s.ctx, "rl:ip:minute:1.2.3.4")
	s.Require().NoError(err)
	s.Empty(ts)
}

func (s *BucketStoreSuite) TestSaveLoadRoundTrip() {
	s.Require().NoError(s.store.Save(s.ctx, "k", []int64{100, 101, 105}, time.Minute))

	ts, err := s.store.Load(s.ctx, "k")
	s.Require().NoError(err)
	s.Equal([]int64{100, 101, 105}, ts)

	raw, err := s.kv.Get(s.ctx, "k")
	s.Require().NoError(err)
	s.JSONEq(`[100,101,105]`, string(raw))
	s.Equal(time.Minute, s.kv.TTL("k").Round(time.Second))
}

func (s *BucketStoreSuite) TestCorruptRecord() {
	s.Require().NoError(s.kv.Put(s.ctx, "k", []byte("not json"), time.Minute))

	_, err := s.store.Load(s.ctx, "k")
	s.ErrorIs(err, sentinel.ErrInvalidState)
}

func (s *BucketStoreSuite) TestDelete() {
	s.Require().NoError(s.store.Save(s.ctx, "k", []int64{1}, time.Minute))
	s.Require().NoError(s.store.Delete(s.ctx, "k"))

	ts, err := s.store.Load(s.ctx, "k")
	s.Require().NoError(err)
	s.Empty(ts)
}
