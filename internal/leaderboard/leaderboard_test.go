package leaderboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"social-calling/internal/backend"
	"social-calling/internal/economy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank_OrdersAndAssignsLeagues(t *testing.T) {
	in := []Entry{
		{ID: "6", Points: 500},
		{ID: "1", Points: 52000},
		{ID: "4", Points: 6000},
		{ID: "3", Points: 6000},
		{ID: "2", Points: 28000},
	}
	out := Rank(in)
	require.Len(t, out, 5)

	ids := make([]string, len(out))
	for i, r := range out {
		ids[i] = r.ID
		assert.Equal(t, i+1, r.Rank)
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "6"}, ids)
	assert.Equal(t, economy.LeagueMaster, out[0].League)
	assert.Equal(t, economy.LeagueDiamond, out[1].League)
	assert.Equal(t, economy.LeagueGold, out[2].League)
	assert.Equal(t, economy.LeagueBronze, out[4].League)

	assert.Equal(t, "6", in[0].ID, "input must not be reordered")
}

func TestSummarize(t *testing.T) {
	s := Summarize(Rank([]Entry{{ID: "a", Points: 1200}, {ID: "b", Points: 1000}, {ID: "c", Points: 10}}))
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.ByLeague[economy.LeagueSilver])
	assert.Equal(t, 1, s.ByLeague[economy.LeagueBronze])
	assert.Zero(t, s.ByLeague[economy.LeagueMaster])
	assert.Equal(t, int64(1200), s.TopPoints)

	empty := Summarize(nil)
	assert.Zero(t, empty.Total)
	assert.Len(t, empty.ByLeague, len(economy.Leagues()))
}

func TestStandingFor(t *testing.T) {
	st := StandingFor(1500)
	assert.Equal(t, economy.LeagueSilver, st.League)
	assert.Equal(t, economy.LeagueGold, st.Next)
	assert.Equal(t, int64(3500), st.PointsToNext)

	top := StandingFor(80000)
	assert.Equal(t, economy.LeagueMaster, top.League)
	assert.Empty(t, top.Next)
	assert.Zero(t, top.PointsToNext)
}

func TestService_Board(t *testing.T) {
	svc := NewService(NewMemorySource(Entry{ID: "x", Points: 5000}, Entry{ID: "y", Points: 20}))
	ranked, sum, err := svc.Board(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x", ranked[0].ID)
	assert.Equal(t, 1, sum.ByLeague[economy.LeagueGold])

	_, _, err = NewService(nil).Board(context.Background())
	assert.ErrorIs(t, err, ErrSourceNotConfigured)
}

func TestBackendSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/gamification/leaderboard/", r.URL.Path)
		_, _ = w.Write([]byte(`{"count":2,"results":[
			{"user":{"id":1,"phone_number":"+911"},"profile":{"name":""},"xp":1200,"level":5,"rank":2},
			{"user":{"id":2},"profile":{"name":"Priya"},"xp":9000,"level":10,"rank":1}]}`))
	}))
	defer srv.Close()

	entries, err := NewBackendSource(backend.New(backend.Config{BaseURL: srv.URL}, nil)).ListEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{ID: "1", Name: "+911", Points: 1200}, entries[0])
	assert.Equal(t, "Priya", entries[1].Name)
}
