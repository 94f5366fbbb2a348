package analysis

import (
	"fmt"
	"io"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

const (
	// fullTimeouts stands in for a blank timeouts column and for a quarter
	// the team never reached.
	fullTimeouts = 3.0
	// lateWindow is the final stretch of a quarter, in seconds.
	lateWindow = 120
)

// GameManagementYear is one season of clock, timeout and discipline numbers.
type GameManagementYear struct {
	Year  int
	Games int

	// Timeouts is the mean the team held after the last play of each quarter.
	Timeouts [4]float64

	// Points in the final two minutes of a quarter, approximated as seven
	// per touchdown and three per made field goal.
	FirstHalfScored  int
	FirstHalfAllowed int
	SecondHalfScored int

	// EndGames counts games the team led or was tied in at the first
	// fourth-quarter play inside two minutes; Num are the ones it won.
	EndGames       stats.Rate
	EndGameAllowed []float64 // opponent points after that play, per situation

	Penalties    int
	PenaltyYards float64
}

func (y GameManagementYear) EndGamePointsAllowed() float64 { return stats.Mean(y.EndGameAllowed) }

func (y GameManagementYear) PenaltiesPerGame() float64 {
	return stats.PerGame(float64(y.Penalties), y.Games)
}

func (y GameManagementYear) PenaltyYardsPerGame() float64 {
	return stats.PerGame(y.PenaltyYards, y.Games)
}

// teamTimeouts reads the team's side of the timeout columns.
func teamTimeouts(p *pbp.Play, team string) float64 {
	v := p.AwayTimeoutsRemaining
	if p.HomeTeam == team {
		v = p.HomeTimeoutsRemaining
	}
	if v != v {
		return fullTimeouts
	}
	return v
}

// teamScores returns team and opponent totals on a play.
func teamScores(p *pbp.Play, team string) (own, opp float64) {
	h, a := zeroNaN(p.TotalHomeScore), zeroNaN(p.TotalAwayScore)
	if p.HomeTeam == team {
		return h, a
	}
	return a, h
}

func scoringPoints(p *pbp.Play) int {
	switch {
	case p.Touchdown:
		return 7
	case p.FieldGoalResult == "made":
		return 3
	}
	return 0
}

func late(p *pbp.Play, qtr int) bool {
	return p.Qtr == qtr && p.QuarterSecondsRemaining <= lateWindow
}

// GameManagementSeason measures team's regular-season games in one season
// file. ok is false when the team played none.
func GameManagementSeason(plays []pbp.Play, team string, year int) (GameManagementYear, bool) {
	y := GameManagementYear{Year: year}
	var order []string
	games := map[string][]*pbp.Play{}
	for i := range plays {
		p := &plays[i]
		if p.SeasonType != "REG" || !p.Involves(team) {
			continue
		}
		if _, ok := games[p.GameID]; !ok {
			order = append(order, p.GameID)
		}
		games[p.GameID] = append(games[p.GameID], p)

		if late(p, 2) || late(p, 4) {
			pts := scoringPoints(p)
			switch {
			case p.PosTeam == team && p.Qtr == 2:
				y.FirstHalfScored += pts
			case p.PosTeam == team:
				y.SecondHalfScored += pts
			case p.DefTeam == team && p.Qtr == 2:
				y.FirstHalfAllowed += pts
			}
		}
		if p.PenaltyTeam == team {
			y.Penalties++
			y.PenaltyYards += zeroNaN(p.PenaltyYards)
		}
	}
	y.Games = len(order)
	if y.Games == 0 {
		return y, false
	}

	var held [4][]float64
	for _, id := range order {
		g := games[id]
		var last [4]*pbp.Play
		var twoMin *pbp.Play
		for _, p := range g {
			if p.Qtr >= 1 && p.Qtr <= 4 {
				last[p.Qtr-1] = p
			}
			if twoMin == nil && late(p, 4) {
				twoMin = p
			}
		}
		for q, p := range last {
			if p != nil {
				held[q] = append(held[q], teamTimeouts(p, team))
			}
		}
		if twoMin == nil {
			continue
		}
		own, opp := teamScores(twoMin, team)
		if own < opp {
			continue
		}
		finalOwn, finalOpp := teamScores(g[len(g)-1], team)
		y.EndGames.Den++
		if finalOwn > finalOpp {
			y.EndGames.Num++
		}
		y.EndGameAllowed = append(y.EndGameAllowed, finalOpp-opp)
	}
	for q := range held {
		y.Timeouts[q] = fullTimeouts
		if len(held[q]) > 0 {
			y.Timeouts[q] = stats.Mean(held[q])
		}
	}
	return y, true
}

type GameManagementReport struct {
	Team  string
	Years []GameManagementYear
}

func (r *GameManagementReport) Name() string { return "game_management" }

func GameManagement(src pbp.Loader, team string, years []int) (*GameManagementReport, error) {
	rep := &GameManagementReport{Team: team}
	if _, err := eachSeason(src, years, func(year int, plays []pbp.Play) {
		if y, ok := GameManagementSeason(plays, team, year); ok {
			rep.Years = append(rep.Years, y)
		}
	}); err != nil {
		return nil, err
	}
	if len(rep.Years) == 0 {
		return nil, ErrNoData
	}
	return rep, nil
}

func (r *GameManagementReport) label() string {
	yrs := make([]int, len(r.Years))
	for i, y := range r.Years {
		yrs[i] = y.Year
	}
	return yearsLabel(yrs)
}

func (r *GameManagementReport) mean(f func(GameManagementYear) float64) float64 {
	xs := make([]float64, len(r.Years))
	for i, y := range r.Years {
		xs[i] = f(y)
	}
	return stats.Mean(xs)
}

// Timeouts is the mean of the per-season quarter-end averages.
func (r *GameManagementReport) Timeouts(q int) float64 {
	return r.mean(func(y GameManagementYear) float64 { return y.Timeouts[q-1] })
}

// OddQuarterTimeouts averages the first and third quarter figures.
func (r *GameManagementReport) OddQuarterTimeouts() float64 {
	return (r.Timeouts(1) + r.Timeouts(3)) / 2
}

func (r *GameManagementReport) Games() int {
	n := 0
	for _, y := range r.Years {
		n += y.Games
	}
	return n
}

func (r *GameManagementReport) perGame(f func(GameManagementYear) int) float64 {
	total := 0
	for _, y := range r.Years {
		total += f(y)
	}
	return stats.PerGame(float64(total), r.Games())
}

func (r *GameManagementReport) FirstHalfScoredPerGame() float64 {
	return r.perGame(func(y GameManagementYear) int { return y.FirstHalfScored })
}

func (r *GameManagementReport) FirstHalfAllowedPerGame() float64 {
	return r.perGame(func(y GameManagementYear) int { return y.FirstHalfAllowed })
}

func (r *GameManagementReport) SecondHalfScoredPerGame() float64 {
	return r.perGame(func(y GameManagementYear) int { return y.SecondHalfScored })
}

func (r *GameManagementReport) EndGames() stats.Rate {
	var t stats.Rate
	for _, y := range r.Years {
		t = t.Add(y.EndGames)
	}
	return t
}

// EndGamePointsAllowed averages the seasons that had an end-game situation.
func (r *GameManagementReport) EndGamePointsAllowed() float64 {
	var xs []float64
	for _, y := range r.Years {
		if y.EndGames.Den > 0 {
			xs = append(xs, y.EndGamePointsAllowed())
		}
	}
	return stats.Mean(xs)
}

func (r *GameManagementReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	label := r.label()
	p.Banner(fmt.Sprintf("%s GAME MANAGEMENT (%s)", r.Team, label))

	p.Section("Timeout management")
	for q := 1; q <= 4; q++ {
		p.Printf("End of Q%d: %.2f timeouts remaining\n", q, r.Timeouts(q))
	}
	p.Printf("Average remaining (Q1 + Q3): %.2f\n", r.OddQuarterTimeouts())

	p.Section("Two-minute situations")
	p.Printf("Points per game (final 2 min, first half): %.2f scored\n", r.FirstHalfScoredPerGame())
	p.Printf("Points per game (final 2 min, first half): %.2f allowed\n", r.FirstHalfAllowedPerGame())
	p.Printf("Points per game (final 2 min, second half): %.2f scored\n", r.SecondHalfScoredPerGame())

	eg := r.EndGames()
	p.Section("End of game (winning or tied, final 2 minutes)")
	p.Printf("Situations: %d\n", eg.Den)
	p.Printf("Wins: %d\n", eg.Num)
	p.Printf("Win %%: %.1f%%\n", eg.Pct())
	p.Printf("Avg points allowed: %.2f\n", r.EndGamePointsAllowed())

	p.Section("Penalty discipline")
	p.Printf("Penalties per game: %.2f\n", r.mean(GameManagementYear.PenaltiesPerGame))
	p.Printf("Penalty yards per game: %.1f\n", r.mean(GameManagementYear.PenaltyYardsPerGame))

	p.Section("Year by year")
	var rows [][]string
	for _, y := range r.Years {
		rows = append(rows, []string{
			fmt.Sprint(y.Year), fmt.Sprint(y.Games),
			fmt.Sprintf("%.2f", y.Timeouts[1]), fmt.Sprintf("%.2f", y.Timeouts[3]),
			fmt.Sprintf("%d/%d", y.FirstHalfScored, y.FirstHalfAllowed),
			report.RateLine(y.EndGames),
			fmt.Sprintf("%.1f", y.PenaltiesPerGame()),
		})
	}
	p.Table([]string{"Season", "Games", "TO Q2", "TO Q4", "2-min pts for/against", "End-game wins", "Pen/G"}, rows)
	return p.Err()
}

func (r *GameManagementReport) Records() []summary.Record {
	var out []summary.Record
	// A single season is fully described by the range records below.
	if len(r.Years) > 1 {
		for _, y := range r.Years {
			scope := summary.Season(y.Year)
			out = append(out,
				summary.Value(r.Name(), r.Team, scope, "timeouts_q2", y.Timeouts[1]),
				summary.Value(r.Name(), r.Team, scope, "timeouts_q4", y.Timeouts[3]),
				summary.Rate(r.Name(), r.Team, scope, "endgame_win_pct", y.EndGames),
				summary.Value(r.Name(), r.Team, scope, "penalties_per_game", y.PenaltiesPerGame()),
			)
		}
	}
	scope := r.label()
	for q := 1; q <= 4; q++ {
		out = append(out, summary.Value(r.Name(), r.Team, scope, fmt.Sprintf("timeouts_q%d", q), r.Timeouts(q)))
	}
	out = append(out,
		summary.Value(r.Name(), r.Team, scope, "timeouts_q1_q3", r.OddQuarterTimeouts()),
		summary.Value(r.Name(), r.Team, scope, "two_min_first_half_scored_per_game", r.FirstHalfScoredPerGame()),
		summary.Value(r.Name(), r.Team, scope, "two_min_first_half_allowed_per_game", r.FirstHalfAllowedPerGame()),
		summary.Value(r.Name(), r.Team, scope, "two_min_second_half_scored_per_game", r.SecondHalfScoredPerGame()),
		summary.Rate(r.Name(), r.Team, scope, "endgame_win_pct", r.EndGames()),
		summary.Value(r.Name(), r.Team, scope, "endgame_points_allowed", r.EndGamePointsAllowed()),
		summary.Value(r.Name(), r.Team, scope, "penalties_per_game", r.mean(GameManagementYear.PenaltiesPerGame)),
		summary.Value(r.Name(), r.Team, scope, "penalty_yards_per_game", r.mean(GameManagementYear.PenaltyYardsPerGame)),
	)
	return out
}
