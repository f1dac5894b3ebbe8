// Package lock provides short-lived per-player mutual exclusion with a TTL.
// The TTL is the only recovery path when a holder crashes: locks auto-expire
// instead of requiring an explicit break-lock operation.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker acquires and releases named TTL locks. TryAcquire never blocks:
// a held key fails immediately with ErrAlreadyLocked.
type Locker interface {
	// TryAcquire attempts to take the lock and returns an ownership token
	// on success. The lock expires on its own after ttl.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Release frees the lock if token still owns it. Releasing an expired
	// or stolen lock returns ErrNotHeld.
	Release(ctx context.Context, key, token string) error
}

// TowerAttemptKey builds the lock key guarding a player's tower attempts.
func TowerAttemptKey(playerID int64) string {
	return fmt.Sprintf("tower:attempt:%d", playerID)
}

// ---- Redis-backed implementation ----

// releaseScript deletes the key only when the stored token matches, so a
// holder can never release a lock that expired and was re-acquired.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker on a shared Redis instance, making the
// mutual exclusion hold across processes.
type RedisLocker struct {
	client *redis.Client
}

// NewRedisLocker creates a RedisLocker.
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

// TryAcquire takes the lock via SET NX PX.
func (l *RedisLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", ErrAlreadyLocked
	}
	return token, nil
}

// Release frees the lock when token still owns it.
func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	n, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}

// ---- In-memory implementation ----

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryLocker implements Locker in-process. Used in tests and single-node
// deployments without Redis.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]memoryEntry
	now   func() time.Time
}

// NewMemoryLocker creates a MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

// TryAcquire takes the lock unless it is held and unexpired.
func (l *MemoryLocker) TryAcquire(_ context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if entry, ok := l.locks[key]; ok && now.Before(entry.expiresAt) {
		return "", ErrAlreadyLocked
	}

	token := uuid.NewString()
	l.locks[key] = memoryEntry{token: token, expiresAt: now.Add(ttl)}
	return token, nil
}

// Release frees the lock when token still owns it.
func (l *MemoryLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[key]
	if !ok || entry.token != token || l.now().After(entry.expiresAt) {
		return ErrNotHeld
	}
	delete(l.locks, key)
	return nil
}
