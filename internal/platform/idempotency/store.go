package idempotency

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Dedup key: dedup:{scope}:{id}
const keyDedup = "dedup:%s:%s"

// DefaultTTL matches how long a replayed task or webhook is still recognised.
var DefaultTTL = 48 * time.Hour

// Store records processed keys. Claim reports true only for the first caller of a key.
type Store interface {
	Claim(ctx context.Context, scope, id string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, scope, id string) error
}

func Key(scope, id string) string {
	return fmt.Sprintf(keyDedup, scope, id)
}

type memoryStore struct {
	mu   sync.Mutex
	keys map[string]time.Time
	now  func() time.Time
}

func NewMemoryStore() Store {
	return &memoryStore{keys: make(map[string]time.Time), now: time.Now}
}

func (s *memoryStore) Claim(_ context.Context, scope, id string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key := Key(scope, id)
	if exp, ok := s.keys[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.keys[key] = now.Add(ttl)

	// sapu key kadaluarsa sesekali
	if len(s.keys)%256 == 0 {
		for k, exp := range s.keys {
			if !now.Before(exp) {
				delete(s.keys, k)
			}
		}
	}
	return true, nil
}

func (s *memoryStore) Release(_ context.Context, scope, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, Key(scope, id))
	return nil
}

type redisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func (s *redisStore) Claim(ctx context.Context, scope, id string, ttl time.Duration) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, Key(scope, id), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", Key(scope, id), err)
	}
	return ok, nil
}

func (s *redisStore) Release(ctx context.Context, scope, id string) error {
	return s.rdb.Del(ctx, Key(scope, id)).Err()
}

// NewRedisClient connects and pings. Caller owns Close.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return rdb, nil
}
