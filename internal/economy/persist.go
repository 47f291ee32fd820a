package economy

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"social-calling/internal/store"
	"social-calling/pkg/logger"
)

// StorePersister writes xp and level synchronously, in one transaction on
// SQL stores.
type StorePersister struct {
	Store store.Store
}

func (p StorePersister) Persist(ctx context.Context, st State) error {
	return store.SetInts(ctx, p.Store, map[string]int64{
		KeyXP:    st.XP,
		KeyLevel: int64(st.Level),
	})
}

// AsyncPersister moves writes off the caller's goroutine. Pending snapshots
// coalesce: only the newest one is written, since each supersedes the last.
type AsyncPersister struct {
	next    Persister
	log     *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending *State
	closed  bool

	wake chan struct{}
	done chan struct{}
}

func NewAsyncPersister(next Persister, log *slog.Logger) *AsyncPersister {
	a := &AsyncPersister{
		next:    next,
		log:     logger.OrDefault(log),
		timeout: 5 * time.Second,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// Persist queues st and returns immediately.
func (a *AsyncPersister) Persist(_ context.Context, st State) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.pending = &st
	select {
	case a.wake <- struct{}{}:
	default:
	}
	return nil
}

// Close flushes the last pending snapshot and stops the writer.
func (a *AsyncPersister) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		<-a.done
		return
	}
	a.closed = true
	close(a.wake)
	a.mu.Unlock()
	<-a.done
}

func (a *AsyncPersister) run() {
	defer close(a.done)
	for range a.wake {
		a.flush()
	}
	a.flush()
}

func (a *AsyncPersister) flush() {
	a.mu.Lock()
	st := a.pending
	a.pending = nil
	a.mu.Unlock()
	if st == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.next.Persist(ctx, *st); err != nil {
		a.log.Warn("async xp persist failed", "xp", st.XP, "level", st.Level, "err", err)
	}
}
