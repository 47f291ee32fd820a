package offers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"social-calling/internal/metrics"
	"social-calling/internal/notify"
	"social-calling/internal/store"
	"social-calling/internal/wallet"
	"social-calling/pkg/logger"
)

var (
	ErrOutsideWindow = errors.New("offers: offer available only between 9 AM and 9 PM")
	ErrDailyLimit    = errors.New("offers: offer limit reached for today")
)

const (
	counterName = "offer_claim_count"
	counterTTL  = 48 * time.Hour
)

// Policy is the claim window [StartHour, EndHour) and the per-day cap.
// The window does not wrap midnight.
type Policy struct {
	DailyLimit int64
	StartHour  int
	EndHour    int
}

func DefaultPolicy() Policy {
	return Policy{DailyLimit: 2, StartHour: 9, EndHour: 21}
}

func (p Policy) InWindow(now time.Time) bool {
	h := now.Hour()
	return h >= p.StartHour && h < p.EndHour
}

type Status struct {
	InWindow     bool           `json:"in_window"`
	ClaimedToday int64          `json:"claimed_today"`
	Remaining    int64          `json:"remaining"`
	CanClaim     bool           `json:"can_claim"`
	Offer        wallet.Package `json:"offer"`
}

// Purchase performs the actual buy once the tracker has cleared the claim.
type Purchase func(ctx context.Context, p wallet.Package) error

type Tracker struct {
	// mu serialises Apply so two concurrent claims cannot both pass the check.
	mu      sync.Mutex
	counter *DailyCounter
	policy  Policy
	offer   wallet.Package
	events  notify.Publisher
	log     *slog.Logger
}

func NewTracker(s store.Store, policy Policy, events notify.Publisher, log *slog.Logger) *Tracker {
	return &Tracker{
		counter: NewDailyCounter(s, counterName, counterTTL),
		policy:  policy,
		offer:   wallet.OfferPackage(),
		events:  events,
		log:     logger.OrDefault(log),
	}
}

func (t *Tracker) Policy() Policy { return t.policy }

// CanClaimOffer reports whether now is inside the window and under today's cap.
func (t *Tracker) CanClaimOffer(ctx context.Context, now time.Time) (bool, error) {
	if !t.policy.InWindow(now) {
		return false, nil
	}
	n, err := t.counter.Count(ctx, now)
	if err != nil {
		return false, err
	}
	return n < t.policy.DailyLimit, nil
}

// RecordClaim bumps today's counter. It does not check the cap; callers gate
// with CanClaimOffer or use Apply.
func (t *Tracker) RecordClaim(ctx context.Context, now time.Time) error {
	_, err := t.counter.Increment(ctx, now)
	return err
}

func (t *Tracker) Status(ctx context.Context, now time.Time) (Status, error) {
	n, err := t.counter.Count(ctx, now)
	if err != nil {
		return Status{}, err
	}
	st := Status{
		InWindow:     t.policy.InWindow(now),
		ClaimedToday: n,
		Remaining:    max(t.policy.DailyLimit-n, 0),
		Offer:        t.offer,
	}
	st.CanClaim = st.InWindow && st.Remaining > 0
	return st, nil
}

// Apply checks the window and cap, runs buy (if any), then records the claim
// and emits OFFER_APPLIED. A failed buy records nothing.
func (t *Tracker) Apply(ctx context.Context, now time.Time, buy Purchase) (Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.policy.InWindow(now) {
		metrics.OfferClaim("outside_window")
		return t.statusOrEmpty(ctx, now), ErrOutsideWindow
	}
	n, err := t.counter.Count(ctx, now)
	if err != nil {
		metrics.OfferClaim("error")
		return Status{}, err
	}
	if n >= t.policy.DailyLimit {
		metrics.OfferClaim("limit")
		return t.statusOrEmpty(ctx, now), ErrDailyLimit
	}

	if buy != nil {
		if err := buy(ctx, t.offer); err != nil {
			metrics.OfferClaim("error")
			return t.statusOrEmpty(ctx, now), err
		}
	}

	n, err = t.counter.Increment(ctx, now)
	if err != nil {
		// The purchase went through; only the local projection is behind.
		t.log.Warn("offer claim not recorded", "err", err)
		n++
	}
	metrics.OfferClaim("ok")

	remaining := max(t.policy.DailyLimit-n, 0)
	if t.events != nil {
		t.events.Emit(ctx, notify.OfferApplied{
			OfferID:    t.offer.ID,
			Coins:      t.offer.TotalCoins(),
			PriceMinor: t.offer.Price * 100,
			Remaining:  remaining,
		})
	}
	return Status{
		InWindow:     true,
		ClaimedToday: n,
		Remaining:    remaining,
		CanClaim:     remaining > 0,
		Offer:        t.offer,
	}, nil
}

func (t *Tracker) statusOrEmpty(ctx context.Context, now time.Time) Status {
	st, err := t.Status(ctx, now)
	if err != nil {
		return Status{InWindow: t.policy.InWindow(now), Offer: t.offer}
	}
	return st
}
