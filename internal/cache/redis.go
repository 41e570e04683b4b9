package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"thermowatch/internal/models"

	"github.com/redis/go-redis/v9"
)

// kv is the part of the redis client the cache needs.
type kv interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisLatest mirrors the most recent raw reading under one key so other
// instances can serve live status without their own broker session.
type RedisLatest struct {
	rdb kv
	key string
	ttl time.Duration
}

func NewRedisLatest(rdb kv, key string, ttl time.Duration) *RedisLatest {
	return &RedisLatest{rdb: rdb, key: key, ttl: ttl}
}

// Connect opens a client and checks it answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s not reachable: %w", addr, err)
	}
	return rdb, nil
}

// Store overwrites the mirrored value. Dead sensors disappear after ttl.
func (c *RedisLatest) Store(ctx context.Context, r models.RawReading) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal latest reading: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.key, err)
	}
	return nil
}

// Load returns the mirrored value; ok is false when the key is absent or expired.
func (c *RedisLatest) Load(ctx context.Context) (models.RawReading, bool, error) {
	s, err := c.rdb.Get(ctx, c.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.RawReading{}, false, nil
		}
		return models.RawReading{}, false, fmt.Errorf("redis get %s: %w", c.key, err)
	}
	var r models.RawReading
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return models.RawReading{}, false, fmt.Errorf("decode latest reading: %w", err)
	}
	return r, true, nil
}
