//go:build integration

package requestlimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactd/internal/kv"
	"contactd/internal/ratelimit/store/bucket"
	"contactd/pkg/requestcontext"
	"contactd/pkg/testutil/containers"
)

func TestRequestLimitOverRedis(t *testing.T) {
	redis := containers.NewRedisContainer(t)
	ctx := requestcontext.WithTime(context.Background(), time.Now())

	// Two service instances sharing one store behave as one limiter.
	store := kv.NewRedisStore(redis.Client)
	first, err := New(bucket.New(store))
	require.NoError(t, err)
	second, err := New(bucket.New(store))
	require.NoError(t, err)

	assert.True(t, first.CheckIP(ctx, "203.0.113.7").Allowed)
	assert.True(t, second.CheckIP(ctx, "203.0.113.7").Allowed)
	assert.True(t, first.CheckIP(ctx, "203.0.113.7").Allowed)

	v := second.CheckIP(ctx, "203.0.113.7")
	assert.False(t, v.Allowed)
	assert.Equal(t, 60, v.RetryAfter)

	ttl, err := redis.Client.TTL(ctx, "rl:ip:minute:203.0.113.7").Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, time.Minute)
	assert.Greater(t, ttl, 50*time.Second)
}
