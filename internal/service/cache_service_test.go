package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheService_Disabled(t *testing.T) {
	ctx := context.Background()

	for name, cache := range map[string]*CacheService{
		"nil service": nil,
		"nil client":  NewCacheService(nil, nil),
	} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, cache.Enabled())
			assert.False(t, cache.HasVoted(ctx, "p1", "tok"))
			assert.NoError(t, cache.MarkVoted(ctx, "p1", "tok"))
			assert.NoError(t, cache.InvalidatePoll(ctx, "p1"))
			assert.NoError(t, cache.HealthCheck(ctx))
			cache.MarkVotedAsync("p1", "tok")
		})
	}
}

func TestCacheService_MarkAndCheck(t *testing.T) {
	mr, cache := newTestCache(t)
	ctx := context.Background()

	assert.False(t, cache.HasVoted(ctx, "p1", "tok"))
	require.NoError(t, cache.MarkVoted(ctx, "p1", "tok"))
	assert.True(t, cache.HasVoted(ctx, "p1", "tok"))
	assert.False(t, cache.HasVoted(ctx, "p2", "tok"))

	key := cache.redis.KeyBuilder.KeyVoterMarker("p1", "tok")
	assert.Equal(t, 24*time.Hour, mr.TTL(key))
}

func TestCacheService_MarkVotedAsync(t *testing.T) {
	mr, cache := newTestCache(t)
	key := cache.redis.KeyBuilder.KeyVoterMarker("p1", "tok")

	cache.MarkVotedAsync("p1", "tok")

	assert.Eventually(t, func() bool { return mr.Exists(key) }, time.Second, 10*time.Millisecond)
}

func TestCacheService_RedisErrorIsAMiss(t *testing.T) {
	mr, cache := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, cache.MarkVoted(ctx, "p1", "tok"))

	mr.SetError("ERR injected failure")
	defer mr.SetError("")

	assert.False(t, cache.HasVoted(ctx, "p1", "tok"))
	assert.Error(t, cache.HealthCheck(ctx))
}

func TestCacheService_InvalidatePoll(t *testing.T) {
	mr, cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.MarkVoted(ctx, "p1", "a"))
	require.NoError(t, cache.MarkVoted(ctx, "p1", "b"))
	require.NoError(t, cache.MarkVoted(ctx, "p2", "a"))

	require.NoError(t, cache.InvalidatePoll(ctx, "p1"))

	assert.False(t, cache.HasVoted(ctx, "p1", "a"))
	assert.False(t, cache.HasVoted(ctx, "p1", "b"))
	assert.True(t, cache.HasVoted(ctx, "p2", "a"))
	assert.Len(t, mr.Keys(), 1)
}
