package ratelimiter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRedisCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeRedisCounter() *fakeRedisCounter {
	return &fakeRedisCounter{counts: make(map[string]int64)}
}

func (f *fakeRedisCounter) Delete(ctx context.Context, key string) error { return nil }

func (f *fakeRedisCounter) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	return nil
}

func (f *fakeRedisCounter) Get(ctx context.Context, key string) (string, error) { return "", nil }

func (f *fakeRedisCounter) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeRedisCounter) Expire(ctx context.Context, key string, exp time.Duration) error {
	return nil
}

func (f *fakeRedisCounter) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	return true, nil
}

func TestResourceLimiterAllowsWithinQuota(t *testing.T) {
	limiter := NewResourceLimiter(newFakeRedisCounter(), zap.NewNop())
	now := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		out, err := limiter.ApplyResourceLimiter(context.Background(), &ApplyResourceLimiterInput{
			ResourceName:      "acme-lab",
			LimiterGroupName:  "lab-ingest",
			WindowDurationSec: 60,
			MaxQuota:          3,
			NowUTC:            now,
		})
		require.NoError(t, err)
		assert.True(t, out.Allowed, "request %d is within quota", i+1)
	}
}

func TestResourceLimiterBlocksOverQuota(t *testing.T) {
	limiter := NewResourceLimiter(newFakeRedisCounter(), zap.NewNop())
	now := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

	in := &ApplyResourceLimiterInput{
		ResourceName:      "acme-lab",
		LimiterGroupName:  "lab-ingest",
		WindowDurationSec: 60,
		MaxQuota:          2,
		NowUTC:            now,
	}

	for i := 0; i < 2; i++ {
		out, err := limiter.ApplyResourceLimiter(context.Background(), in)
		require.NoError(t, err)
		require.True(t, out.Allowed)
	}

	out, err := limiter.ApplyResourceLimiter(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, out.Allowed)
	assert.Greater(t, out.RetryAfterSecs, 0, "caller learns when the next window opens")
}

func TestResourceLimiterIsolatesPartners(t *testing.T) {
	limiter := NewResourceLimiter(newFakeRedisCounter(), zap.NewNop())
	now := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		out, err := limiter.ApplyResourceLimiter(context.Background(), &ApplyResourceLimiterInput{
			ResourceName:      "acme-lab",
			LimiterGroupName:  "lab-ingest",
			WindowDurationSec: 60,
			MaxQuota:          2,
			NowUTC:            now,
		})
		require.NoError(t, err)
		require.True(t, out.Allowed)
	}

	out, err := limiter.ApplyResourceLimiter(context.Background(), &ApplyResourceLimiterInput{
		ResourceName:      "other-lab",
		LimiterGroupName:  "lab-ingest",
		WindowDurationSec: 60,
		MaxQuota:          2,
		NowUTC:            now,
	})
	require.NoError(t, err)
	assert.True(t, out.Allowed, "one partner's burst never throttles another")
}

func TestResourceLimiterNewWindowResetsQuota(t *testing.T) {
	limiter := NewResourceLimiter(newFakeRedisCounter(), zap.NewNop())
	now := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

	in := &ApplyResourceLimiterInput{
		ResourceName:      "acme-lab",
		LimiterGroupName:  "lab-ingest",
		WindowDurationSec: 60,
		MaxQuota:          1,
		NowUTC:            now,
	}
	out, err := limiter.ApplyResourceLimiter(context.Background(), in)
	require.NoError(t, err)
	require.True(t, out.Allowed)

	out, err = limiter.ApplyResourceLimiter(context.Background(), in)
	require.NoError(t, err)
	require.False(t, out.Allowed)

	in.NowUTC = now.Add(61 * time.Second)
	out, err = limiter.ApplyResourceLimiter(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, out.Allowed, "fixed window rolls over")
}
