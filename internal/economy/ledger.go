package economy

import (
	"context"
	"log/slog"
	"sync"

	"social-calling/internal/metrics"
	"social-calling/internal/notify"
	"social-calling/internal/store"
	"social-calling/pkg/logger"
)

const (
	KeyXP    = "user_xp"
	KeyLevel = "user_level"
)

// State is the client-side projection of the user's XP and level.
type State struct {
	XP    int64 `json:"xp"`
	Level int   `json:"level"`
}

// Persister writes a State somewhere durable.
type Persister interface {
	Persist(ctx context.Context, st State) error
}

// Ledger owns EconomyState.
//
// Invariants:
// - XP and level never decrease.
// - In-memory state is authoritative for this process; a failed write is
//   logged and retried on the next award, never rolled back.
type Ledger struct {
	mu      sync.Mutex
	state   State
	persist Persister
	events  notify.Publisher
	log     *slog.Logger
}

func NewLedger(p Persister, events notify.Publisher, log *slog.Logger) *Ledger {
	return &Ledger{
		state:   State{Level: 1},
		persist: p,
		events:  events,
		log:     logger.OrDefault(log),
	}
}

// Load hydrates the ledger from s. Missing keys mean a fresh account.
// The level is recomputed from XP so a stale level key cannot disagree.
func (l *Ledger) Load(ctx context.Context, s store.Store) error {
	xp, _, err := store.GetInt(ctx, s, KeyXP)
	if err != nil {
		return err
	}
	if xp < 0 {
		xp = 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if xp > l.state.XP {
		l.state = State{XP: xp, Level: LevelForXP(xp)}
	}
	return nil
}

func (l *Ledger) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// AwardXP adds amount (ignored when <= 0) and requests a write.
func (l *Ledger) AwardXP(ctx context.Context, amount int64) State {
	l.mu.Lock()
	if amount <= 0 {
		st := l.state
		l.mu.Unlock()
		return st
	}
	prev := l.state
	next := State{XP: prev.XP + amount}
	next.Level = LevelForXP(next.XP)
	if next.Level < prev.Level {
		next.Level = prev.Level
	}
	l.state = next
	l.mu.Unlock()

	metrics.XPAwarded(amount)

	if l.persist != nil {
		if err := l.persist.Persist(ctx, next); err != nil {
			l.log.Warn("xp persist failed; keeping in-memory state", "xp", next.XP, "level", next.Level, "err", err)
		}
	}

	if next.Level > prev.Level {
		metrics.LevelUp()
		if l.events != nil {
			l.events.Emit(ctx, notify.LevelUp{From: prev.Level, To: next.Level, XP: next.XP})
		}
	}
	return next
}
