package leaderboard

import "social-calling/internal/economy"

// Entry is one competitor. Points are on the league scale, not the level scale.
type Entry struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Points          int64  `json:"points"`
	AppUsageMinutes int    `json:"app_usage_minutes"`
	CallMinutes     int    `json:"call_minutes"`
}

type Ranked struct {
	Entry
	Rank   int            `json:"rank"`
	League economy.League `json:"league"`
}

type Summary struct {
	Total    int                    `json:"total"`
	ByLeague map[economy.League]int `json:"by_league"`
	// TopPoints is 0 for an empty board.
	TopPoints int64 `json:"top_points"`
}

// Standing is where a single user sits relative to the league ladder.
type Standing struct {
	Points int64          `json:"points"`
	League economy.League `json:"league"`
	// Next is empty at the top league.
	Next         economy.League `json:"next,omitempty"`
	PointsToNext int64          `json:"points_to_next"`
}
