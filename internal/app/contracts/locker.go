package contracts

import (
	"context"
	"time"
)

// LockerService serializes writers per entity id. Every order transition and
// every result ingest/review runs under a lock keyed by the entity.
type LockerService interface {
	TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error)
	Unlock(ctx context.Context, key, lockValue string) error
}
