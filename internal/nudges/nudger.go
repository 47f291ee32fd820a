package nudges

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"social-calling/internal/notify"
	"social-calling/internal/store"
	"social-calling/pkg/logger"

	"github.com/robfig/cron/v3"
)

// KeyLastSlot holds "<YYYY-MM-DD>:<slot>" for the last nudge sent.
const KeyLastSlot = "last_notify_slot"

// DefaultSchedule checks every five minutes.
const DefaultSchedule = "*/5 * * * *"

type Nudger struct {
	// mu serialises check-and-mark so a slot is never sent twice.
	mu      sync.Mutex
	store   store.Store
	windows Windows
	events  notify.Publisher
	clock   func() time.Time
	loc     *time.Location
	log     *slog.Logger

	cron *cron.Cron
}

type Options struct {
	Windows  Windows
	Location *time.Location
	Clock    func() time.Time
	Logger   *slog.Logger
}

func New(s store.Store, events notify.Publisher, opts Options) *Nudger {
	if opts.Windows == nil {
		opts.Windows = DefaultWindows()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Nudger{
		store:   s,
		windows: opts.Windows,
		events:  events,
		clock:   opts.Clock,
		loc:     opts.Location,
		log:     logger.OrDefault(opts.Logger),
	}
}

func marker(now time.Time, s Slot) string {
	return now.Format("2006-01-02") + ":" + string(s)
}

// Check sends the current slot's nudge unless it was already sent today.
func (n *Nudger) Check(ctx context.Context) (Slot, bool, error) {
	return n.CheckAt(ctx, n.clock())
}

func (n *Nudger) CheckAt(ctx context.Context, now time.Time) (Slot, bool, error) {
	now = now.In(n.loc)
	slot, ok := n.windows.SlotAt(now)
	if !ok {
		return "", false, nil
	}
	mark := marker(now, slot)

	n.mu.Lock()
	defer n.mu.Unlock()

	last, _, err := n.store.Get(ctx, KeyLastSlot)
	if err != nil {
		return slot, false, fmt.Errorf("nudges: read marker: %w", err)
	}
	if last == mark {
		return slot, false, nil
	}
	if err := n.store.Set(ctx, KeyLastSlot, mark); err != nil {
		return slot, false, fmt.Errorf("nudges: write marker: %w", err)
	}

	if n.events != nil {
		n.events.Emit(ctx, notify.EngagementNudge{Slot: string(slot), MessageKey: slot.MessageKey()})
	}
	n.log.InfoContext(ctx, "engagement nudge sent", "slot", slot)
	return slot, true, nil
}

// Start runs Check on schedule (a standard five-field cron expression) in the
// nudger's location. An empty schedule uses DefaultSchedule.
func (n *Nudger) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	c := cron.New(cron.WithLocation(n.loc))
	if _, err := c.AddFunc(schedule, func() {
		if _, _, err := n.Check(context.Background()); err != nil {
			n.log.Warn("nudge check failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("nudges: schedule %q: %w", schedule, err)
	}
	n.cron = c
	c.Start()
	return nil
}

// Stop halts the schedule and waits for a running check to finish.
func (n *Nudger) Stop(ctx context.Context) {
	if n.cron == nil {
		return
	}
	select {
	case <-n.cron.Stop().Done():
	case <-ctx.Done():
	}
}
