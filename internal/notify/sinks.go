package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"social-calling/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// LogSink writes one structured line per event.
type LogSink struct {
	Log *slog.Logger
}

func (s LogSink) Publish(ctx context.Context, e Event) error {
	logger.OrDefault(s.Log).InfoContext(ctx, "notification", "kind", e.Kind(), "event_id", e.ID, "level", e.Level, "payload", e.Payload)
	return nil
}

// MemorySink keeps events in order; useful for tests and diagnostics.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Publish(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Kinds lists the kinds seen so far, in emission order.
func (s *MemorySink) Kinds() []Kind {
	evs := s.Events()
	out := make([]Kind, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.Kind())
	}
	return out
}

func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

// RedisSink publishes JSON events on a pub/sub channel so companion
// processes (widgets, a second UI shell) can follow the same stream.
type RedisSink struct {
	rdb     *redis.Client
	channel string
}

func NewRedisSink(rdb *redis.Client, channel string) *RedisSink {
	return &RedisSink{rdb: rdb, channel: channel}
}

func (s *RedisSink) Publish(ctx context.Context, e Event) error {
	if s.rdb == nil || s.channel == "" {
		return fmt.Errorf("notify: redis sink not configured")
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("notify: marshal event: %w", err)
	}
	return s.rdb.Publish(ctx, s.channel, b).Err()
}
