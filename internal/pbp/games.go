package pbp

import (
	"math"
	"sort"
)

// Game is one game's final score as derived from its plays.
type Game struct {
	ID         string
	Season     int
	SeasonType string
	Week       int
	Home       string
	Away       string
	HomeScore  int
	AwayScore  int
}

func (g Game) Involves(team string) bool { return g.Home == team || g.Away == team }

// Margin is the absolute final margin.
func (g Game) Margin() int {
	d := g.HomeScore - g.AwayScore
	if d < 0 {
		return -d
	}
	return d
}

// For returns points scored and allowed by team.
func (g Game) For(team string) (pf, pa int) {
	if g.Home == team {
		return g.HomeScore, g.AwayScore
	}
	return g.AwayScore, g.HomeScore
}

// Winner returns the winning team, or "" for a tie.
func (g Game) Winner() string {
	switch {
	case g.HomeScore > g.AwayScore:
		return g.Home
	case g.AwayScore > g.HomeScore:
		return g.Away
	}
	return ""
}

func gameFrom(p *Play) Game {
	return Game{
		ID: p.GameID, Season: p.Season, SeasonType: p.SeasonType, Week: p.Week,
		Home: p.HomeTeam, Away: p.AwayTeam,
	}
}

func scoreOf(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	return int(f)
}

func sortGames(gs []Game) {
	sort.SliceStable(gs, func(i, j int) bool {
		if gs[i].Week != gs[j].Week {
			return gs[i].Week < gs[j].Week
		}
		return gs[i].ID < gs[j].ID
	})
}

// GamesByMaxTotals derives finals as the largest total_home_score and
// total_away_score seen on any play of each game.
func GamesByMaxTotals(plays []Play, f Predicate) []Game {
	idx := map[string]int{}
	var out []Game
	for i := range plays {
		p := &plays[i]
		if f != nil && !f(p) {
			continue
		}
		j, ok := idx[p.GameID]
		if !ok {
			j = len(out)
			idx[p.GameID] = j
			out = append(out, gameFrom(p))
		}
		if s := scoreOf(p.TotalHomeScore); s > out[j].HomeScore {
			out[j].HomeScore = s
		}
		if s := scoreOf(p.TotalAwayScore); s > out[j].AwayScore {
			out[j].AwayScore = s
		}
	}
	sortGames(out)
	return out
}

// GamesByLastPlay takes each game's final from the home_score and
// away_score columns of its last row.
func GamesByLastPlay(plays []Play, f Predicate) []Game {
	idx := map[string]int{}
	var out []Game
	for i := range plays {
		p := &plays[i]
		if f != nil && !f(p) {
			continue
		}
		j, ok := idx[p.GameID]
		if !ok {
			j = len(out)
			idx[p.GameID] = j
			out = append(out, gameFrom(p))
		}
		if !math.IsNaN(p.HomeScore) {
			out[j].HomeScore = int(p.HomeScore)
		}
		if !math.IsNaN(p.AwayScore) {
			out[j].AwayScore = int(p.AwayScore)
		}
	}
	sortGames(out)
	return out
}

// Teams lists every team that appears as home or away, sorted.
func Teams(plays []Play) []string {
	seen := map[string]struct{}{}
	for i := range plays {
		for _, t := range []string{plays[i].HomeTeam, plays[i].AwayTeam} {
			if t != "" {
				seen[t] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// GameCount counts distinct game ids among plays matching f.
func GameCount(plays []Play, f Predicate) int {
	seen := map[string]struct{}{}
	for i := range plays {
		if f == nil || f(&plays[i]) {
			seen[plays[i].GameID] = struct{}{}
		}
	}
	return len(seen)
}
