//go:build integration

package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"contactd/pkg/platform/sentinel"
	"contactd/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisStore
	ctx   context.Context
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = NewRedisStore(s.redis.Client, WithKeyPrefix("test:"))
	s.ctx = context.Background()
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisStoreSuite) TestRoundTripWithTTL() {
	s.Require().NoError(s.store.Put(s.ctx, "k", []byte(`[1,2,3]`), time.Minute))

	got, err := s.store.Get(s.ctx, "k")
	s.Require().NoError(err)
	s.Equal(`[1,2,3]`, string(got))

	ttl, err := s.redis.Client.TTL(s.ctx, "test:k").Result()
	s.Require().NoError(err)
	s.Greater(ttl, 55*time.Second)
	s.LessOrEqual(ttl, time.Minute)
}

func (s *RedisStoreSuite) TestMissingKey() {
	_, err := s.store.Get(s.ctx, "absent")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestDelete() {
	s.Require().NoError(s.store.Put(s.ctx, "k", []byte("v"), time.Minute))
	s.Require().NoError(s.store.Delete(s.ctx, "k"))
	_, err := s.store.Get(s.ctx, "k")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestHealth() {
	s.NoError(s.store.Health(s.ctx))
}
