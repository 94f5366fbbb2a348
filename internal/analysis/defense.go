package analysis

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/rollup"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// DefenseMetric is one per-game or per-play number for a defense with its
// league rank (lower is better) and the league mean.
type DefenseMetric struct {
	Value  float64
	League float64
	Rank   int
	Teams  int
}

type DefenseYear struct {
	Year          int
	Games         int
	PointsPerGame DefenseMetric
	YardsPerGame  DefenseMetric
	YardsPerPlay  float64
	EPAPerPlay    DefenseMetric
}

type DefenseEra struct {
	Era           rollup.Era
	PointsPerGame float64
	YardsPerGame  float64
	EPAPerPlay    float64
}

type DefenseReport struct {
	Team  string
	Years []DefenseYear
	Eras  []DefenseEra
}

func (r *DefenseReport) Name() string { return "defense_epa" }

func metric(peers []stats.Peer, team string) DefenseMetric {
	m := DefenseMetric{League: stats.MeanOf(peers)}
	for _, p := range peers {
		if p.Key == team {
			m.Value = p.Value
		}
	}
	m.Rank, m.Teams, _ = stats.Rank(peers, team, stats.LowerIsBetter)
	return m
}

// DefenseSeason returns false when team played no regular-season games.
func DefenseSeason(plays []pbp.Play, team string, year int) (*DefenseYear, bool) {
	lines := TeamSeasons(pbp.GamesByMaxTotals(plays, pbp.RegularSeason), year)
	if _, ok := lines[team]; !ok {
		return nil, false
	}
	yards := rollup.Compute(DefenseYards, plays)

	var ppg, ypg []stats.Peer
	for t, s := range lines {
		ppg = append(ppg, stats.Peer{Key: t, Value: s.OPPG()})
		ypg = append(ypg, stats.Peer{Key: t, Value: stats.PerGame(yards.Get(t).Sum, s.Games())})
	}
	y := &DefenseYear{
		Year:          year,
		Games:         lines[team].Games(),
		PointsPerGame: metric(ppg, team),
		YardsPerGame:  metric(ypg, team),
		YardsPerPlay:  stats.Ratio(yards.Get(team).Sum, float64(yards.Get(team).N)),
		EPAPerPlay:    metric(rollup.Compute(DefenseEPA, plays).Peers(1), team),
	}
	return y, true
}

func DefenseEPAByEra(src pbp.Loader, team string, eras []rollup.Era) (*DefenseReport, error) {
	rep := &DefenseReport{Team: team}
	for _, era := range eras {
		var pts, yds, epa []float64
		_, err := eachSeason(src, era.Years, func(year int, plays []pbp.Play) {
			y, ok := DefenseSeason(plays, team, year)
			if !ok {
				slog.Warn("no regular-season games", "season", year, "team", team)
				return
			}
			rep.Years = append(rep.Years, *y)
			pts = append(pts, y.PointsPerGame.Value)
			yds = append(yds, y.YardsPerGame.Value)
			epa = append(epa, y.EPAPerPlay.Value)
		})
		if err != nil && !errors.Is(err, ErrNoData) {
			return nil, err
		}
		if len(pts) == 0 {
			continue
		}
		rep.Eras = append(rep.Eras, DefenseEra{Era: era, PointsPerGame: stats.Mean(pts), YardsPerGame: stats.Mean(yds), EPAPerPlay: stats.Mean(epa)})
	}
	if len(rep.Years) == 0 {
		return nil, ErrNoData
	}
	return rep, nil
}

func (r *DefenseReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	p.Banner(fmt.Sprintf("%s DEFENSE BY SEASON (REGULAR SEASON)", r.Team))
	var rows [][]string
	for _, y := range r.Years {
		rows = append(rows, []string{
			fmt.Sprint(y.Year),
			fmt.Sprintf("%.1f (#%d)", y.PointsPerGame.Value, y.PointsPerGame.Rank), fmt.Sprintf("%.1f", y.PointsPerGame.League),
			fmt.Sprintf("%.1f (#%d)", y.YardsPerGame.Value, y.YardsPerGame.Rank), fmt.Sprintf("%.1f", y.YardsPerGame.League),
			fmt.Sprintf("%.2f", y.YardsPerPlay),
			fmt.Sprintf("%+.3f (#%d)", y.EPAPerPlay.Value, y.EPAPerPlay.Rank), fmt.Sprintf("%+.3f", y.EPAPerPlay.League),
		})
	}
	p.Table([]string{"Year", "Pts/G", "Lg", "Yds/G", "Lg", "Yds/play", "EPA/play", "Lg"}, rows)

	if len(r.Eras) > 0 {
		p.Banner("ERA AVERAGES")
		for _, e := range r.Eras {
			p.Printf("%s: %.1f points/game, %.1f yards/game, %+.3f EPA/play\n",
				e.Era.Label(), e.PointsPerGame, e.YardsPerGame, e.EPAPerPlay)
		}
	}
	return p.Err()
}

func (r *DefenseReport) Records() []summary.Record {
	var out []summary.Record
	for _, y := range r.Years {
		s := summary.Season(y.Year)
		out = append(out,
			summary.Value(r.Name(), r.Team, s, "points_allowed_per_game", y.PointsPerGame.Value).WithRank(y.PointsPerGame.Rank, y.PointsPerGame.Teams),
			summary.Value(r.Name(), r.Team, s, "yards_allowed_per_game", y.YardsPerGame.Value).WithRank(y.YardsPerGame.Rank, y.YardsPerGame.Teams),
			summary.Value(r.Name(), r.Team, s, "yards_allowed_per_play", y.YardsPerPlay),
			summary.Value(r.Name(), r.Team, s, "epa_allowed_per_play", y.EPAPerPlay.Value).WithRank(y.EPAPerPlay.Rank, y.EPAPerPlay.Teams),
		)
	}
	for _, e := range r.Eras {
		out = append(out,
			summary.Value(r.Name(), r.Team, e.Era.Label(), "points_allowed_per_game", e.PointsPerGame),
			summary.Value(r.Name(), r.Team, e.Era.Label(), "yards_allowed_per_game", e.YardsPerGame),
			summary.Value(r.Name(), r.Team, e.Era.Label(), "epa_allowed_per_play", e.EPAPerPlay),
		)
	}
	return out
}
