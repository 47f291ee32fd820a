package calls

import (
	"context"
	"sync"
	"testing"
	"time"

	"social-calling/internal/economy"
	"social-calling/internal/notify"
	"social-calling/internal/pricing"
	"social-calling/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler fires ticks only when the test asks for them.
type manualScheduler struct {
	mu      sync.Mutex
	fn      func()
	stopped int
	started int
}

func (s *manualScheduler) Every(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn = fn
	s.started++
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.stopped++
			s.mu.Unlock()
		})
	}
}

func (s *manualScheduler) last() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fn
}

func (s *manualScheduler) fire(n int) {
	fn := s.last()
	for i := 0; i < n; i++ {
		fn()
	}
}

type fixture struct {
	mgr    *Manager
	sched  *manualScheduler
	sink   *notify.MemorySink
	ledger *economy.Ledger
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	sink := notify.NewMemorySink()
	em := notify.NewEmitter(logger.Discard(), sink)
	ledger := economy.NewLedger(nil, em, logger.Discard())
	sched := &manualScheduler{}
	clock := func() time.Time { return now }
	mgr := NewManager(pricing.NewServiceWithClock(clock), ledger, em, Options{
		Scheduler: sched,
		Clock:     clock,
		Logger:    logger.Discard(),
	})
	return &fixture{mgr: mgr, sched: sched, sink: sink, ledger: ledger}
}

var (
	noon     = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	lateEve  = time.Date(2026, 3, 4, 22, 0, 0, 0, time.UTC)
	maleCall = StartRequest{Caller: pricing.GenderMale, Type: pricing.CallTypeVideo}
)

func TestStartCall_DayVideo(t *testing.T) {
	f := newFixture(t, noon)

	s, started := f.mgr.StartCall(context.Background(), maleCall)
	require.True(t, started)
	assert.True(t, s.Active)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, int64(30), s.CostPerMinute)
	assert.Equal(t, pricing.WindowDay, s.Window)
	assert.False(t, s.Free)

	events := f.sink.Events()
	require.Len(t, events, 1)
	p, ok := events[0].Payload.(notify.CallStarted)
	require.True(t, ok)
	assert.Equal(t, int64(30), p.CostPerMinute)
	assert.NotEmpty(t, p.RateLabel)
}

func TestStartCall_WhileActiveIsNoop(t *testing.T) {
	f := newFixture(t, noon)
	first, _ := f.mgr.StartCall(context.Background(), maleCall)

	again, started := f.mgr.StartCall(context.Background(), StartRequest{Caller: pricing.GenderMale, Type: pricing.CallTypeLive})
	assert.False(t, started)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, pricing.CallTypeVideo, again.Type)
	assert.Equal(t, 1, f.sched.started)
	assert.Len(t, f.sink.Events(), 1)
}

func TestTick_MinuteBoundaryDeductsAndAwardsXP(t *testing.T) {
	f := newFixture(t, noon)
	f.mgr.StartCall(context.Background(), maleCall)

	f.sched.fire(59)
	assert.Equal(t, []notify.Kind{notify.KindCallStarted}, f.sink.Kinds())
	assert.Zero(t, f.ledger.State().XP)

	f.sched.fire(1)
	s := f.mgr.Snapshot()
	assert.Equal(t, 60, s.ElapsedSeconds)
	assert.Equal(t, 1, s.BilledMinutes)
	assert.Equal(t, int64(30), s.AdvisoryCoins)
	assert.Equal(t, int64(10), f.ledger.State().XP)

	events := f.sink.Events()
	require.Len(t, events, 2)
	d, ok := events[1].Payload.(notify.CoinsDeducted)
	require.True(t, ok)
	assert.Equal(t, int64(30), d.Amount)
	assert.Equal(t, 1, d.Minute)

	f.sched.fire(60)
	assert.Equal(t, int64(60), f.mgr.Snapshot().AdvisoryCoins)
	assert.Equal(t, int64(20), f.ledger.State().XP)
}

func TestTick_FreeCallEarnsXPWithoutDeduction(t *testing.T) {
	f := newFixture(t, noon)
	s, _ := f.mgr.StartCall(context.Background(), StartRequest{Caller: pricing.GenderFemale, Type: pricing.CallTypeVoice})
	require.True(t, s.Free)
	assert.Zero(t, s.CostPerMinute)

	f.sched.fire(120)
	assert.Equal(t, int64(20), f.ledger.State().XP)
	assert.Zero(t, f.mgr.Snapshot().AdvisoryCoins)
	assert.NotContains(t, f.sink.Kinds(), notify.KindCoinsDeducted)

	started := f.sink.Events()[0].Payload.(notify.CallStarted)
	assert.Empty(t, started.RateLabel)
}

func TestTick_LevelUpAfterTenMinutes(t *testing.T) {
	f := newFixture(t, noon)
	f.mgr.StartCall(context.Background(), maleCall)

	f.sched.fire(600)
	assert.Equal(t, economy.State{XP: 100, Level: 2}, f.ledger.State())
	assert.Contains(t, f.sink.Kinds(), notify.KindLevelUp)
}

func TestStartCall_RateFixedAcrossWindowChange(t *testing.T) {
	now := time.Date(2026, 3, 4, 20, 59, 30, 0, time.UTC)
	f := newFixture(t, now)
	s, _ := f.mgr.StartCall(context.Background(), StartRequest{Caller: pricing.GenderMale, Type: pricing.CallTypeVoice})
	require.Equal(t, pricing.WindowDay, s.Window)

	f.sched.fire(120)
	assert.Equal(t, int64(10), f.mgr.Snapshot().CostPerMinute)
	assert.Equal(t, int64(20), f.mgr.Snapshot().AdvisoryCoins)
}

func TestStartCall_StarCalleeAtNight(t *testing.T) {
	f := newFixture(t, lateEve)
	s, _ := f.mgr.StartCall(context.Background(), StartRequest{
		Caller: pricing.GenderMale,
		Type:   pricing.CallTypeVoice,
		Callee: pricing.CalleeMeta{Gender: pricing.GenderFemale, Level: 8},
	})
	assert.True(t, s.Star)
	assert.Equal(t, pricing.WindowNight, s.Window)
	assert.Equal(t, int64(60), s.CostPerMinute)
}

func TestEndCall_EmitsSummaryAndResets(t *testing.T) {
	f := newFixture(t, noon)
	started, _ := f.mgr.StartCall(context.Background(), maleCall)
	f.sched.fire(75)

	ended, wasActive := f.mgr.EndCall(context.Background())
	require.True(t, wasActive)
	assert.Equal(t, started.ID, ended.ID)
	assert.Equal(t, 75, ended.ElapsedSeconds)
	assert.Equal(t, 1, f.sched.stopped)
	assert.Equal(t, Session{}, f.mgr.Snapshot())

	events := f.sink.Events()
	last, ok := events[len(events)-1].Payload.(notify.CallEnded)
	require.True(t, ok)
	assert.Equal(t, 75, last.DurationSeconds)
	assert.Equal(t, 1, last.BilledMinutes)
	assert.Equal(t, int64(30), last.AdvisoryCoins)
}

func TestEndCall_IdleEmitsNothing(t *testing.T) {
	f := newFixture(t, noon)
	_, wasActive := f.mgr.EndCall(context.Background())
	assert.False(t, wasActive)
	assert.Empty(t, f.sink.Events())
}

func TestTick_StaleAfterEndIsIgnored(t *testing.T) {
	f := newFixture(t, noon)
	f.mgr.StartCall(context.Background(), maleCall)
	stale := f.sched.last()
	f.mgr.EndCall(context.Background())

	for i := 0; i < 60; i++ {
		stale()
	}
	assert.Equal(t, Session{}, f.mgr.Snapshot())
	assert.Zero(t, f.ledger.State().XP)

	// A new session must not be advanced by the old tick either.
	f.mgr.StartCall(context.Background(), maleCall)
	stale()
	assert.Zero(t, f.mgr.Snapshot().ElapsedSeconds)
	f.sched.fire(1)
	assert.Equal(t, 1, f.mgr.Snapshot().ElapsedSeconds)
}

// gateSink holds the first COINS_DEDUCTED until release is closed.
type gateSink struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gateSink) Publish(_ context.Context, e notify.Event) error {
	if e.Kind() != notify.KindCoinsDeducted {
		return nil
	}
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return nil
}

func TestEndCall_WaitsForInFlightTick(t *testing.T) {
	sink := notify.NewMemorySink()
	gate := &gateSink{entered: make(chan struct{}), release: make(chan struct{})}
	em := notify.NewEmitter(logger.Discard(), sink, gate)
	ledger := economy.NewLedger(nil, em, logger.Discard())
	sched := &manualScheduler{}
	clock := func() time.Time { return noon }
	mgr := NewManager(pricing.NewServiceWithClock(clock), ledger, em, Options{
		Scheduler: sched,
		Clock:     clock,
		Logger:    logger.Discard(),
	})

	ctx := context.Background()
	mgr.StartCall(ctx, maleCall)
	sched.fire(59)

	tickDone := make(chan struct{})
	go func() {
		sched.fire(1)
		close(tickDone)
	}()
	<-gate.entered

	var xpAtEnd int64
	endDone := make(chan struct{})
	go func() {
		mgr.EndCall(ctx)
		xpAtEnd = ledger.State().XP
		close(endDone)
	}()

	assert.Never(t, func() bool {
		select {
		case <-endDone:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	close(gate.release)
	<-tickDone
	<-endDone

	assert.Equal(t, []notify.Kind{
		notify.KindCallStarted,
		notify.KindCoinsDeducted,
		notify.KindCallEnded,
	}, sink.Kinds())
	assert.Equal(t, economy.XPPerCallMinute, xpAtEnd)
	assert.Equal(t, xpAtEnd, ledger.State().XP)
}

func TestToggleMinimize_DoesNotAffectBilling(t *testing.T) {
	f := newFixture(t, noon)
	f.mgr.StartCall(context.Background(), maleCall)

	s := f.mgr.ToggleMinimize()
	assert.True(t, s.Minimized)
	f.sched.fire(60)
	assert.Equal(t, int64(30), f.mgr.Snapshot().AdvisoryCoins)

	s = f.mgr.ToggleMinimize()
	assert.False(t, s.Minimized)
}

func TestSteps(t *testing.T) {
	amt, ok := billingStep(60, 30)
	assert.True(t, ok)
	assert.Equal(t, int64(30), amt)

	_, ok = billingStep(59, 30)
	assert.False(t, ok)
	_, ok = billingStep(60, 0)
	assert.False(t, ok)
	_, ok = billingStep(0, 30)
	assert.False(t, ok)

	xp, ok := xpStep(120)
	assert.True(t, ok)
	assert.Equal(t, economy.XPPerCallMinute, xp)
	_, ok = xpStep(61)
	assert.False(t, ok)
}

func TestTickerScheduler_StopIsIdempotent(t *testing.T) {
	var mu sync.Mutex
	n := 0
	stop := TickerScheduler{}.Every(time.Millisecond, func() {
		mu.Lock()
		n++
		mu.Unlock()
	})
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return n > 0
	}, time.Second, time.Millisecond)
	stop()
	stop()
}
