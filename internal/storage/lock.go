package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if the caller still owns it.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

func lockKey(id uuid.UUID) string {
	return "session-lock:" + id.String()
}

// AcquireLock attempts to take the lock for a session.
// Returns true if the lock was acquired, false if it is already held.
func (r *RedisStorage) AcquireLock(ctx context.Context, id uuid.UUID, owner string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockKey(id), owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire session lock: %w", err)
	}
	return ok, nil
}

// ReleaseLock releases the session lock if owner holds it.
func (r *RedisStorage) ReleaseLock(ctx context.Context, id uuid.UUID, owner string) error {
	if err := releaseScript.Run(ctx, r.client, []string{lockKey(id)}, owner).Err(); err != nil {
		r.logger.Error("Failed to release session lock", "error", err, "session_id", id.String())
		return fmt.Errorf("failed to release session lock: %w", err)
	}
	return nil
}
