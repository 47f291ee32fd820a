package calls

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"social-calling/internal/economy"
	"social-calling/internal/metrics"
	"social-calling/internal/notify"
	"social-calling/internal/pricing"
	"social-calling/pkg/logger"

	"github.com/google/uuid"
)

const (
	tickInterval  = time.Second
	secondsPerMin = 60
)

// XPAwarder receives the per-minute XP award. *economy.Ledger satisfies it.
type XPAwarder interface {
	AwardXP(ctx context.Context, amount int64) economy.State
}

type Options struct {
	Scheduler Scheduler
	Clock     func() time.Time
	Logger    *slog.Logger
}

// Manager is the session clock: Idle -> Active -> Idle.
//
// Every transition runs under mu; events and the XP award are issued after
// mu is released so sinks can still read Snapshot. fireMu serialises whole
// ticks, side effects included, against StartCall and EndCall: once EndCall
// returns no tick of that session is running or will run. A generation
// number drops ticks that were already queued. Sinks must not call
// StartCall or EndCall.
//
// There is deliberately no balance check anywhere on this path: COINS_DEDUCTED
// is advisory and the wallet backend performs the real debit.
type Manager struct {
	fireMu  sync.Mutex
	mu      sync.Mutex
	session Session
	gen     uint64
	stop    func()

	pricing *pricing.Service
	xp      XPAwarder
	events  notify.Publisher
	sched   Scheduler
	clock   func() time.Time
	log     *slog.Logger
}

func NewManager(p *pricing.Service, xp XPAwarder, events notify.Publisher, opts Options) *Manager {
	if opts.Scheduler == nil {
		opts.Scheduler = TickerScheduler{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if p == nil {
		p = pricing.NewServiceWithClock(opts.Clock)
	}
	return &Manager{
		pricing: p,
		xp:      xp,
		events:  events,
		sched:   opts.Scheduler,
		clock:   opts.Clock,
		log:     logger.OrDefault(opts.Logger),
	}
}

// StartCall prices and starts a session. If one is already active nothing
// changes and started is false.
func (m *Manager) StartCall(ctx context.Context, req StartRequest) (s Session, started bool) {
	now := m.clock()

	m.fireMu.Lock()
	defer m.fireMu.Unlock()

	m.mu.Lock()
	if m.session.Active {
		s = m.session
		m.mu.Unlock()
		m.log.Debug("start ignored: call already active", "session_id", s.ID)
		return s, false
	}

	q := m.pricing.Quote(req.Caller, req.Callee, req.Type, now)

	if m.stop != nil {
		m.stop()
		m.stop = nil
	}
	m.gen++
	gen := m.gen
	m.session = Session{
		ID:            uuid.NewString(),
		Active:        true,
		Type:          req.Type,
		CostPerMinute: q.CostPerMinute,
		StartedAt:     now,
		Callee:        req.Callee,
		Window:        q.Window,
		Free:          q.Free,
		Star:          q.Star,
	}
	m.stop = m.sched.Every(tickInterval, func() { m.tick(gen) })
	s = m.session
	m.mu.Unlock()

	metrics.CallStarted(string(s.Type), variant(s))
	m.log.Info("call started", "session_id", s.ID, "type", s.Type, "cost_per_minute", s.CostPerMinute, "window", s.Window, "free", s.Free, "star", s.Star)

	payload := notify.CallStarted{
		SessionID:     s.ID,
		CallType:      string(s.Type),
		Free:          s.Free,
		CostPerMinute: s.CostPerMinute,
		Window:        string(s.Window),
		Star:          s.Star,
	}
	if !s.Free {
		payload.RateLabel = s.Window.Label()
	}
	m.emit(ctx, payload)
	return s, true
}

// EndCall stops the ticker before returning and resets the session.
// Ending while idle is a no-op apart from the reset; no event is emitted.
func (m *Manager) EndCall(ctx context.Context) (ended Session, wasActive bool) {
	m.fireMu.Lock()
	defer m.fireMu.Unlock()

	m.mu.Lock()
	if m.stop != nil {
		m.stop()
		m.stop = nil
	}
	m.gen++
	ended = m.session
	wasActive = ended.Active
	m.session = Session{}
	m.mu.Unlock()

	if !wasActive {
		return ended, false
	}

	metrics.CallEnded()
	m.log.Info("call ended", "session_id", ended.ID, "elapsed_seconds", ended.ElapsedSeconds, "billed_minutes", ended.BilledMinutes, "advisory_coins", ended.AdvisoryCoins)
	m.emit(ctx, notify.CallEnded{
		SessionID:       ended.ID,
		CallType:        string(ended.Type),
		DurationSeconds: ended.ElapsedSeconds,
		BilledMinutes:   ended.BilledMinutes,
		AdvisoryCoins:   ended.AdvisoryCoins,
	})
	return ended, true
}

// ToggleMinimize flips the display flag. Billing and the ticker are unaffected.
func (m *Manager) ToggleMinimize() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.Minimized = !m.session.Minimized
	return m.session
}

func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Close ends any active call; used on shutdown.
func (m *Manager) Close(ctx context.Context) {
	m.EndCall(ctx)
}

// tick is the per-second driver. Local state is updated under mu; the
// deduction event and XP award follow once it is released, still under fireMu.
func (m *Manager) tick(gen uint64) {
	m.fireMu.Lock()
	defer m.fireMu.Unlock()

	m.mu.Lock()
	if !m.session.Active || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.session.ElapsedSeconds++
	s := m.session

	deduct, charged := billingStep(s.ElapsedSeconds, s.CostPerMinute)
	xp, boundary := xpStep(s.ElapsedSeconds)
	if boundary {
		m.session.BilledMinutes++
	}
	if charged {
		m.session.AdvisoryCoins += deduct
	}
	minute := m.session.BilledMinutes
	m.mu.Unlock()

	if !boundary {
		return
	}

	ctx := context.Background()
	metrics.CallMinute(string(s.Type))
	if charged {
		metrics.CoinsDeducted(deduct)
		m.emit(ctx, notify.CoinsDeducted{SessionID: s.ID, Amount: deduct, Minute: minute})
	}
	if m.xp != nil {
		m.xp.AwardXP(ctx, xp)
	}
}

// billingStep yields the advisory deduction for this second, if any.
func billingStep(elapsed int, costPerMinute int64) (int64, bool) {
	if !isMinuteBoundary(elapsed) || costPerMinute <= 0 {
		return 0, false
	}
	return costPerMinute, true
}

// xpStep yields the XP award for this second, if any. Free calls earn XP too.
func xpStep(elapsed int) (int64, bool) {
	if !isMinuteBoundary(elapsed) {
		return 0, false
	}
	return economy.XPPerCallMinute, true
}

func isMinuteBoundary(elapsed int) bool {
	return elapsed > 0 && elapsed%secondsPerMin == 0
}

func (m *Manager) emit(ctx context.Context, p notify.Payload) {
	if m.events == nil {
		return
	}
	m.events.Emit(ctx, p)
}
