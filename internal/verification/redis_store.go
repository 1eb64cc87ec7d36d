package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "verification:"

// RedisStore keeps one JSON record per phone and lets key expiry discard stale codes.
type RedisStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{rdb: rdb, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *RedisStore) Save(ctx context.Context, phone string, rec Record) error {
	ttl := rec.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return s.Delete(ctx, phone)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal verification record: %w", err)
	}
	return s.rdb.Set(ctx, keyPrefix+phone, data, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, phone string) (*Record, error) {
	val, err := s.rdb.Get(ctx, keyPrefix+phone).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get verification record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verification record: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) IncrementAttempts(ctx context.Context, phone string) error {
	rec, err := s.Get(ctx, phone)
	if err != nil {
		return err
	}
	rec.Attempts++

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal verification record: %w", err)
	}
	return s.rdb.Set(ctx, keyPrefix+phone, data, redis.KeepTTL).Err()
}

func (s *RedisStore) Delete(ctx context.Context, phone string) error {
	return s.rdb.Del(ctx, keyPrefix+phone).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
