package leaderboard

import (
	"context"
	"errors"
	"sort"

	"social-calling/internal/economy"
)

var ErrSourceNotConfigured = errors.New("leaderboard: source not configured")

// Source lists the current competitors.
type Source interface {
	ListEntries(ctx context.Context) ([]Entry, error)
}

type Service struct {
	src Source
}

func NewService(src Source) *Service { return &Service{src: src} }

// Board ranks whatever the source currently holds.
func (s *Service) Board(ctx context.Context) ([]Ranked, Summary, error) {
	if s.src == nil {
		return nil, Summary{}, ErrSourceNotConfigured
	}
	entries, err := s.src.ListEntries(ctx)
	if err != nil {
		return nil, Summary{}, err
	}
	ranked := Rank(entries)
	return ranked, Summarize(ranked), nil
}

// Rank orders by points descending, ties broken by id, and assigns 1-based
// ranks. The input slice is not modified.
func Rank(entries []Entry) []Ranked {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Points != sorted[j].Points {
			return sorted[i].Points > sorted[j].Points
		}
		return sorted[i].ID < sorted[j].ID
	})

	out := make([]Ranked, len(sorted))
	for i, e := range sorted {
		out[i] = Ranked{Entry: e, Rank: i + 1, League: economy.LeagueForPoints(e.Points)}
	}
	return out
}

func Summarize(ranked []Ranked) Summary {
	out := Summary{Total: len(ranked), ByLeague: make(map[economy.League]int, len(economy.Leagues()))}
	for _, l := range economy.Leagues() {
		out.ByLeague[l] = 0
	}
	for _, r := range ranked {
		out.ByLeague[r.League]++
		if r.Points > out.TopPoints {
			out.TopPoints = r.Points
		}
	}
	return out
}

func StandingFor(points int64) Standing {
	if points < 0 {
		points = 0
	}
	st := Standing{Points: points, League: economy.LeagueForPoints(points)}
	leagues := economy.Leagues()
	for i, l := range leagues {
		if l == st.League && i+1 < len(leagues) {
			st.Next = leagues[i+1]
			st.PointsToNext = economy.LeagueFloor(st.Next) - points
		}
	}
	return st
}
