package store

import (
	"context"
	"errors"
	"time"

	"social-calling/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// Redis stores keys under an optional prefix, typically one per user.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) key(k string) string { return r.prefix + k }

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidKey
	}
	v, err := r.rdb.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return r.rdb.Set(ctx, r.key(key), value, 0).Err()
}

func (r *Redis) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if key == "" {
		return 0, ErrInvalidKey
	}
	return utils.IncrWithTTL(ctx, r.rdb, r.key(key), ttl)
}

func (r *Redis) Close() error { return r.rdb.Close() }
