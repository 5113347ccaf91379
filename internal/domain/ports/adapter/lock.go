package adapter

import (
	"context"
	"time"
)

// JobLocker guards a job against concurrent pipeline runs across processes.
// TryLock returns domain.ErrJobLocked when another holder owns key.
type JobLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
