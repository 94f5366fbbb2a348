package analysis

import (
	"fmt"
	"io"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/rollup"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// OneScoreMargin is the widest final margin one possession can erase.
const OneScoreMargin = 8

type OneScoreReport struct {
	Team       string
	From, To   int
	RecentFrom int

	Wins, Losses int
	Games        int // all team games in range
	League       stats.Rate
	// losing margins in games from RecentFrom on
	RecentLossMargins []int
}

func (r *OneScoreReport) Name() string { return "one_score" }

func (r *OneScoreReport) Record() stats.Rate { return stats.Rate{Num: r.Wins, Den: r.Wins + r.Losses} }

// LeagueFrac is the league one-score win rate, or a coin flip when the
// league has no one-score games outside the team.
func (r *OneScoreReport) LeagueFrac() float64 {
	if r.League.Den == 0 {
		return 0.5
	}
	return r.League.Frac()
}

func (r *OneScoreReport) ExpectedWins() float64 { return float64(r.Wins+r.Losses) * r.LeagueFrac() }

func (r *OneScoreReport) WinsLost() float64 { return r.ExpectedWins() - float64(r.Wins) }

// OneScoreShare is the share of the team's games decided by one score.
func (r *OneScoreReport) OneScoreShare() float64 {
	return stats.Percent(float64(r.Wins+r.Losses), float64(r.Games))
}

func (r *OneScoreReport) AvgRecentLossMargin() float64 {
	xs := make([]float64, len(r.RecentLossMargins))
	for i, m := range r.RecentLossMargins {
		xs[i] = float64(m)
	}
	return stats.Mean(xs)
}

// OneScore reads game finals from score totals. A team game that is not a
// win counts as a loss; a league game goes to the home side only on a
// strictly higher score.
func OneScore(src pbp.Loader, team string, from, to, recentFrom int) (*OneScoreReport, error) {
	rep := &OneScoreReport{Team: team, From: from, To: to, RecentFrom: recentFrom}
	_, err := eachSeason(src, span(from, to), func(year int, plays []pbp.Play) {
		for _, g := range pbp.GamesByMaxTotals(plays, nil) {
			oneScore := g.Margin() <= OneScoreMargin
			if !g.Involves(team) {
				if oneScore {
					rep.League.Den += 2
					rep.League.Num++
				}
				continue
			}
			rep.Games++
			pf, pa := g.For(team)
			won := pf > pa
			if oneScore {
				if won {
					rep.Wins++
				} else {
					rep.Losses++
				}
			}
			if !won && g.Season >= recentFrom {
				rep.RecentLossMargins = append(rep.RecentLossMargins, pa-pf)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *OneScoreReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	rec := r.Record()
	p.Banner(fmt.Sprintf("ONE-SCORE GAME RECORD ANALYSIS (%d-%d)", r.From, r.To))
	p.Printf("\n%s record in one-score games: %s\n", r.Team, report.Record(r.Wins, r.Losses, 0))
	p.Printf("Win percentage: %.2f%%\n", rec.Pct())
	p.Printf("League average: ~%.1f%%\n", 100*r.LeagueFrac())
	p.Printf("\nTotal one-score games: %d\n", rec.Den)
	p.Printf("\nExpected wins (based on league avg): %.1f\n", r.ExpectedWins())
	p.Printf("Actual wins: %d\n", r.Wins)
	p.Printf("Wins lost: %.1f\n", r.WinsLost())
	p.Section("Additional statistics")
	p.Printf("Average margin in %s losses (%d-%d): %.2f points\n", r.Team, r.RecentFrom, r.To, r.AvgRecentLossMargin())
	p.Printf("Share of %s games decided by one score (%d-%d): %.1f%%\n", r.Team, r.From, r.To, r.OneScoreShare())
	return p.Err()
}

func (r *OneScoreReport) Records() []summary.Record {
	scope := fmt.Sprintf("%d-%d", r.From, r.To)
	league := summary.Rate(r.Name(), rollup.LeagueKey, scope, "one_score_win_pct_excl_"+r.Team, r.League)
	league.Value = 100 * r.LeagueFrac()
	return []summary.Record{
		summary.Rate(r.Name(), r.Team, scope, "one_score_win_pct", r.Record()),
		league,
		summary.Value(r.Name(), r.Team, scope, "expected_wins", r.ExpectedWins()),
		summary.Value(r.Name(), r.Team, scope, "wins_lost", r.WinsLost()),
		summary.Value(r.Name(), r.Team, scope, "one_score_share", r.OneScoreShare()),
		summary.Value(r.Name(), r.Team, fmt.Sprintf("%d-%d", r.RecentFrom, r.To), "avg_loss_margin", r.AvgRecentLossMargin()),
	}
}
