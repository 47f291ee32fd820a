package store

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Memory is an in-process Store. TTLs are honoured lazily on read.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memEntry
	clock   func() time.Time
}

type memEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memEntry), clock: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.liveLocked(key)
	if !ok {
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memEntry{value: value}
	return nil
}

func (m *Memory) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	if key == "" {
		return 0, ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	e, ok := m.liveLocked(key)
	if ok {
		parsed, err := strconv.ParseInt(e.value, 10, 64)
		if err != nil {
			return 0, err
		}
		n = parsed
	}
	n++
	if !ok || e.expiresAt.IsZero() {
		e.expiresAt = time.Time{}
		if ttl > 0 {
			e.expiresAt = m.clock().Add(ttl)
		}
	}
	e.value = strconv.FormatInt(n, 10)
	m.entries[key] = e
	return n, nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) liveLocked(key string) (memEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return memEntry{}, false
	}
	if !e.expiresAt.IsZero() && !m.clock().Before(e.expiresAt) {
		delete(m.entries, key)
		return memEntry{}, false
	}
	return e, true
}
