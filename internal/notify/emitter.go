package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"social-calling/internal/metrics"
	"social-calling/pkg/logger"

	"github.com/google/uuid"
)

// Sink receives every emitted event. Sinks must not block for long and must
// not call back into the component that emitted.
type Sink interface {
	Publish(ctx context.Context, e Event) error
}

// Publisher is what core components depend on.
type Publisher interface {
	Emit(ctx context.Context, p Payload) Event
}

// Emitter fans events out to sinks. Emission is fire-and-forget: a failing
// sink is logged and never surfaces to the caller.
type Emitter struct {
	mu    sync.RWMutex
	sinks []Sink
	log   *slog.Logger
	clock func() time.Time
}

func NewEmitter(log *slog.Logger, sinks ...Sink) *Emitter {
	return &Emitter{sinks: sinks, log: logger.OrDefault(log), clock: time.Now}
}

// Add registers another sink. Safe to call while events are flowing.
func (e *Emitter) Add(s Sink) {
	if s == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sinks = append(e.sinks, s)
}

func (e *Emitter) Emit(ctx context.Context, p Payload) Event {
	ev := Event{
		ID:      uuid.NewString(),
		At:      e.clock().UTC(),
		Level:   p.level(),
		Payload: p,
	}

	e.mu.RLock()
	sinks := make([]Sink, len(e.sinks))
	copy(sinks, e.sinks)
	e.mu.RUnlock()

	for _, s := range sinks {
		if err := s.Publish(ctx, ev); err != nil {
			e.log.Warn("notify sink failed", "kind", ev.Kind(), "event_id", ev.ID, "err", err)
		}
	}
	metrics.EventEmitted(string(ev.Kind()))
	return ev
}
