// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"fmt"
	"time"

	"seo-article-agent/internal/domain"
	"seo-article-agent/internal/domain/ports/adapter"

	"github.com/google/uuid"
)

var _ adapter.JobLocker = (*Locker)(nil)

// Locker is a lease lock: SET NX with a TTL, released only by the token holder.
type Locker struct {
	cli     RedisClient
	retries int
	wait    time.Duration
}

func NewLocker(c RedisClient) *Locker {
	return &Locker{cli: c, retries: 3, wait: 50 * time.Millisecond}
}

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	var lastErr error
	held := false
	for i := 0; i < l.retries; i++ {
		ok, err := l.cli.SetNX(ctx, key, token, ttl)
		switch {
		case err != nil:
			lastErr = err
		case ok:
			return token, nil
		default:
			held = true
		}
		select {
		case <-time.After(l.wait): // wait before retrying
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	// A holder seen on any attempt wins over transient errors on others.
	if held {
		return "", domain.ErrJobLocked
	}
	if lastErr != nil {
		return "", fmt.Errorf("redis lock %s: %w", key, lastErr)
	}
	return "", domain.ErrJobLocked
}

const luaUnlock = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`

func (l *Locker) Unlock(ctx context.Context, key, token string) error {
	_, err := l.cli.Eval(ctx, luaUnlock, []string{key}, token)
	return err
}
