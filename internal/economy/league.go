package economy

// League is the leaderboard display tier. It is derived from leaderboard
// points on its own scale and is unrelated to the numeric level.
type League string

const (
	LeagueBronze   League = "Bronze"
	LeagueSilver   League = "Silver"
	LeagueGold     League = "Gold"
	LeaguePlatinum League = "Platinum"
	LeagueDiamond  League = "Diamond"
	LeagueMaster   League = "Master"
)

type leagueTier struct {
	League    League
	MinPoints int64
}

// Highest first; the first tier whose floor is met wins.
var leagueTiers = []leagueTier{
	{LeagueMaster, 50000},
	{LeagueDiamond, 25000},
	{LeaguePlatinum, 10000},
	{LeagueGold, 5000},
	{LeagueSilver, 1000},
	{LeagueBronze, 0},
}

func LeagueForPoints(points int64) League {
	for _, t := range leagueTiers {
		if points >= t.MinPoints {
			return t.League
		}
	}
	return LeagueBronze
}

// LeagueFloor returns the minimum points for l, or -1 for an unknown league.
func LeagueFloor(l League) int64 {
	for _, t := range leagueTiers {
		if t.League == l {
			return t.MinPoints
		}
	}
	return -1
}

// Leagues lists every league from lowest to highest.
func Leagues() []League {
	out := make([]League, 0, len(leagueTiers))
	for i := len(leagueTiers) - 1; i >= 0; i-- {
		out = append(out, leagueTiers[i].League)
	}
	return out
}
