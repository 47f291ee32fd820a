// Package store is the durable key-value collaborator used for the client's
// local projections (xp, level, day-scoped counters, nudge markers).
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var ErrInvalidKey = errors.New("store: key is required")

// Store is a small string KV with an atomic counter primitive.
// Implementations: Memory, SQL (sqlite/postgres), Redis.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Incr adds one to the integer at key (missing = 0) and returns the new value.
	// ttl > 0 asks the backend to expire the key; 0 keeps it forever.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Close() error
}

// GetInt reads an integer value. Missing keys report ok=false.
func GetInt(ctx context.Context, s Store, key string) (int64, bool, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("store: %s is not an integer: %w", key, err)
	}
	return n, true, nil
}

func SetInt(ctx context.Context, s Store, key string, v int64) error {
	return s.Set(ctx, key, strconv.FormatInt(v, 10))
}

// Batcher is implemented by stores that can write several keys atomically.
type Batcher interface {
	SetMany(ctx context.Context, values map[string]string) error
}

// SetInts writes all values, atomically when s is a Batcher and one key at a
// time otherwise.
func SetInts(ctx context.Context, s Store, values map[string]int64) error {
	if b, ok := s.(Batcher); ok {
		strs := make(map[string]string, len(values))
		for k, v := range values {
			strs[k] = strconv.FormatInt(v, 10)
		}
		return b.SetMany(ctx, strs)
	}
	for k, v := range values {
		if err := SetInt(ctx, s, k, v); err != nil {
			return err
		}
	}
	return nil
}
