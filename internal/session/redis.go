package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// pendingKeyPrefix namespaces activation records inside a shared Redis.
const pendingKeyPrefix = "pending_activation:"

// RedisStore is a Store backed by Redis, for deployments where the
// activation prompt and the code submission may land on different instances.
// Records are stored as JSON under pending_activation:<chatID> with a
// server-side TTL, so expiry needs no sweeper at all.
type RedisStore struct {
	rdb *goredis.Client
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

// Close releases the underlying Redis connection pool.
func (s *RedisStore) Close() error { return s.rdb.Close() }

// Put stores rec for chatID, replacing any previous record.
func (s *RedisStore) Put(ctx context.Context, chatID string, rec PendingActivation, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal pending activation: %w", err)
	}
	if err := s.rdb.Set(ctx, pendingKeyPrefix+chatID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get returns the live record for chatID, or ErrNotFound when the key is
// absent or already expired server-side.
func (s *RedisStore) Get(ctx context.Context, chatID string) (*PendingActivation, error) {
	raw, err := s.rdb.Get(ctx, pendingKeyPrefix+chatID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var rec PendingActivation
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal pending activation: %w", err)
	}
	return &rec, nil
}

// Delete removes the record for chatID. Deleting an absent key is a no-op.
func (s *RedisStore) Delete(ctx context.Context, chatID string) error {
	if err := s.rdb.Del(ctx, pendingKeyPrefix+chatID).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
