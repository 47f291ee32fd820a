package economy

import (
	"context"
	"errors"
	"sync"
	"testing"

	"social-calling/internal/notify"
	"social-calling/internal/store"
	"social-calling/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForXP(t *testing.T) {
	cases := map[int64]int{
		0:    1,
		99:   1,
		100:  2,
		299:  2,
		300:  3,
		1000: 5,
		2799: 7,
		2800: 8,
		4499: 9,
		4500: 10,
		9000: 10,
	}
	for xp, want := range cases {
		assert.Equalf(t, want, LevelForXP(xp), "xp=%d", xp)
	}
}

func TestLevelForXP_Monotonic(t *testing.T) {
	prev := LevelForXP(0)
	for xp := int64(0); xp <= 6000; xp += 10 {
		lvl := LevelForXP(xp)
		require.GreaterOrEqual(t, lvl, prev)
		require.LessOrEqual(t, lvl, MaxLevel)
		prev = lvl
	}
}

func TestProgressFor(t *testing.T) {
	p := ProgressFor(State{XP: 150, Level: 2})
	assert.Equal(t, int64(50), p.IntoLevel)
	assert.Equal(t, int64(150), p.ToNextLevel)

	p = ProgressFor(State{XP: 5000, Level: 10})
	assert.Zero(t, p.IntoLevel)
	assert.Zero(t, p.ToNextLevel)
}

func TestLeagueForPoints_SeparateScale(t *testing.T) {
	assert.Equal(t, LeagueBronze, LeagueForPoints(0))
	assert.Equal(t, LeagueBronze, LeagueForPoints(999))
	assert.Equal(t, LeagueSilver, LeagueForPoints(1000))
	assert.Equal(t, LeagueGold, LeagueForPoints(5000))
	assert.Equal(t, LeaguePlatinum, LeagueForPoints(12000))
	assert.Equal(t, LeagueDiamond, LeagueForPoints(28000))
	assert.Equal(t, LeagueMaster, LeagueForPoints(52000))

	// max level XP is still only Silver on the league scale
	assert.Equal(t, LeagueSilver, LeagueForPoints(LevelThreshold(MaxLevel)))

	assert.Equal(t, []League{LeagueBronze, LeagueSilver, LeagueGold, LeaguePlatinum, LeagueDiamond, LeagueMaster}, Leagues())
	assert.Equal(t, int64(25000), LeagueFloor(LeagueDiamond))
	assert.Equal(t, int64(-1), LeagueFloor(League("Wood")))
}

type flakyPersister struct {
	mu     sync.Mutex
	fail   bool
	writes []State
}

func (f *flakyPersister) Persist(_ context.Context, st State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("disk full")
	}
	f.writes = append(f.writes, st)
	return nil
}

func TestLedger_AwardAndLevelUpEvent(t *testing.T) {
	mem := notify.NewMemorySink()
	em := notify.NewEmitter(logger.Discard(), mem)
	p := &flakyPersister{}
	l := NewLedger(p, em, logger.Discard())

	for i := 0; i < 9; i++ {
		l.AwardXP(context.Background(), XPPerCallMinute)
	}
	assert.Equal(t, State{XP: 90, Level: 1}, l.State())
	assert.Empty(t, mem.Events())

	st := l.AwardXP(context.Background(), XPPerCallMinute)
	assert.Equal(t, State{XP: 100, Level: 2}, st)
	require.Len(t, mem.Events(), 1)
	up := mem.Events()[0].Payload.(notify.LevelUp)
	assert.Equal(t, notify.LevelUp{From: 1, To: 2, XP: 100}, up)
	assert.Len(t, p.writes, 10)
}

func TestLedger_IgnoresNonPositive(t *testing.T) {
	l := NewLedger(nil, nil, logger.Discard())
	l.AwardXP(context.Background(), 50)
	l.AwardXP(context.Background(), -20)
	l.AwardXP(context.Background(), 0)
	assert.Equal(t, State{XP: 50, Level: 1}, l.State())
}

func TestLedger_PersistFailureKeepsMemoryState(t *testing.T) {
	p := &flakyPersister{fail: true}
	l := NewLedger(p, nil, logger.Discard())

	for i := 0; i < 30; i++ {
		l.AwardXP(context.Background(), XPPerCallMinute)
	}
	assert.Equal(t, State{XP: 300, Level: 3}, l.State())
	assert.Empty(t, p.writes)

	p.fail = false
	l.AwardXP(context.Background(), XPPerCallMinute)
	require.Len(t, p.writes, 1)
	assert.Equal(t, State{XP: 310, Level: 3}, p.writes[0])
}

func TestLedger_LoadFromStore(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, store.SetInt(ctx, s, KeyXP, 2150))
	require.NoError(t, store.SetInt(ctx, s, KeyLevel, 3)) // stale; recomputed

	l := NewLedger(StorePersister{Store: s}, nil, logger.Discard())
	require.NoError(t, l.Load(ctx, s))
	assert.Equal(t, State{XP: 2150, Level: 7}, l.State())

	l.AwardXP(ctx, 10)
	lvl, ok, err := store.GetInt(ctx, s, KeyLevel)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7), lvl)
}

func TestLedger_LoadEmptyStore(t *testing.T) {
	l := NewLedger(nil, nil, logger.Discard())
	require.NoError(t, l.Load(context.Background(), store.NewMemory()))
	assert.Equal(t, State{XP: 0, Level: 1}, l.State())
}

func TestAsyncPersister_FlushesLatestOnClose(t *testing.T) {
	p := &flakyPersister{}
	a := NewAsyncPersister(p, logger.Discard())

	for i := int64(1); i <= 50; i++ {
		require.NoError(t, a.Persist(context.Background(), State{XP: i * 10, Level: LevelForXP(i * 10)}))
	}
	a.Close()
	a.Close()

	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.writes)
	assert.Equal(t, State{XP: 500, Level: 3}, p.writes[len(p.writes)-1])
	for i := 1; i < len(p.writes); i++ {
		assert.Greater(t, p.writes[i].XP, p.writes[i-1].XP)
	}

	// after close, writes are dropped silently
	require.NoError(t, a.Persist(context.Background(), State{XP: 999}))
}
