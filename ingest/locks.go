package ingest

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// lockTTL bounds how long a crashed worker can hold a feed hostage.
const lockTTL = 5 * time.Minute

// Locker grants mutual exclusion per feed. Acquire returns false when a
// cycle for the feed is already in flight; the caller drops the cycle.
type Locker interface {
	Acquire(ctx context.Context, feedID int64) (release func(), ok bool)
}

// MemoryLocker is the single-process default.
type MemoryLocker struct {
	mu    sync.Mutex
	inUse map[int64]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{inUse: make(map[int64]struct{})}
}

func (l *MemoryLocker) Acquire(ctx context.Context, feedID int64) (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.inUse[feedID]; held {
		return nil, false
	}
	l.inUse[feedID] = struct{}{}

	return func() {
		l.mu.Lock()
		delete(l.inUse, feedID)
		l.mu.Unlock()
	}, true
}

// RedisLocker leases feed locks through Redis so multiple scheduler
// instances can share one database without double-fetching.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, feedID int64) (func(), bool) {
	key := fmt.Sprintf("rreader:feed-lock:%d", feedID)

	ok, err := l.client.SetNX(ctx, key, "1", lockTTL).Result()
	if err != nil {
		log.Printf("Feed lock %d: redis unavailable, proceeding unlocked: %v", feedID, err)
		return func() {}, true
	}
	if !ok {
		return nil, false
	}

	return func() {
		if err := l.client.Del(context.Background(), key).Err(); err != nil {
			log.Printf("Feed lock %d: release failed (lease expires in %s): %v", feedID, lockTTL, err)
		}
	}, true
}
