package ratelimiter

import (
	"context"
	"fmt"
	"labtrace-service/internal/app/contracts"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ResourceLimiter throttles inbound lab traffic per partner. It keeps a fixed
// window counter in redis keyed by group, partner and window id, with a TTL
// slightly past the window so stale counters expire on their own.
type ResourceLimiter struct {
	redis contracts.RedisRepository
	log   *zap.Logger
}

func NewResourceLimiter(redis contracts.RedisRepository, log *zap.Logger) *ResourceLimiter {
	return &ResourceLimiter{redis: redis, log: log}
}

type ApplyResourceLimiterInput struct {
	// ResourceName identifies who is being limited, e.g. the lab partner id.
	ResourceName string
	// LimiterGroupName namespaces the counter key, e.g. lab-ingest.
	LimiterGroupName string
	// WindowDurationSec is the fixed window length in seconds.
	WindowDurationSec int
	// MaxQuota caps requests per window. Zero or negative disables the limit.
	MaxQuota int
	// NowUTC overrides the clock in tests. Zero means time.Now().UTC().
	NowUTC time.Time
}

type ApplyResourceLimiterOutput struct {
	Allowed        bool
	RetryAfterSecs int
}

// ApplyResourceLimiter counts the request against the current window and
// reports whether it fits the quota. RetryAfterSecs points at the next
// window boundary when it does not.
func (l *ResourceLimiter) ApplyResourceLimiter(ctx context.Context, in *ApplyResourceLimiterInput) (*ApplyResourceLimiterOutput, error) {
	if in == nil {
		return &ApplyResourceLimiterOutput{}, fmt.Errorf("nil input")
	}

	windowSec := in.WindowDurationSec
	if windowSec <= 0 {
		windowSec = 60
	}
	if in.MaxQuota <= 0 {
		return &ApplyResourceLimiterOutput{Allowed: true}, nil
	}

	resource := strings.ToLower(strings.TrimSpace(in.ResourceName))
	group := strings.ToUpper(strings.TrimSpace(in.LimiterGroupName))
	if resource == "" || group == "" {
		return &ApplyResourceLimiterOutput{Allowed: false, RetryAfterSecs: windowSec}, nil
	}

	now := in.NowUTC
	if now.IsZero() {
		now = time.Now().UTC()
	}
	windowID := now.Unix() / int64(windowSec)

	key := fmt.Sprintf("%s:%s:%d", group, resource, windowID)
	count, err := l.redis.IncrementWithTTL(ctx, key, time.Duration(windowSec+1)*time.Second)
	if err != nil {
		l.log.Error("ResourceLimiter.ApplyResourceLimiter increment failed",
			zap.String("key", key),
			zap.Error(err))
		return &ApplyResourceLimiterOutput{}, err
	}

	if count > int64(in.MaxQuota) {
		nextWindowStart := (windowID + 1) * int64(windowSec)
		return &ApplyResourceLimiterOutput{
			Allowed:        false,
			RetryAfterSecs: int(nextWindowStart-now.Unix()) + 1,
		}, nil
	}

	return &ApplyResourceLimiterOutput{Allowed: true}, nil
}
