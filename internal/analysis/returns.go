package analysis

import (
	"fmt"
	"io"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// ReturnUnit totals one kind of return for a team.
type ReturnUnit struct {
	Returns    int
	Yards      float64
	Touchdowns int
}

func (u ReturnUnit) Average() float64 { return stats.Ratio(u.Yards, float64(u.Returns)) }

func (u ReturnUnit) add(o ReturnUnit) ReturnUnit {
	return ReturnUnit{Returns: u.Returns + o.Returns, Yards: u.Yards + o.Yards, Touchdowns: u.Touchdowns + o.Touchdowns}
}

type ReturnLine struct {
	Punt    ReturnUnit
	Kickoff ReturnUnit
}

func (l ReturnLine) Returns() int { return l.Punt.Returns + l.Kickoff.Returns }
func (l ReturnLine) Yards() float64 { return l.Punt.Yards + l.Kickoff.Yards }
func (l ReturnLine) Touchdowns() int { return l.Punt.Touchdowns + l.Kickoff.Touchdowns }

// ReturnYear is the team's return game in one season, ranked by total
// return yards among all teams.
type ReturnYear struct {
	Year  int
	Line  ReturnLine
	Rank  int
	Teams int
}

// returnLines totals regular-season punt and kickoff returns by the
// returning team. A kick counts as a return when it names a returner.
func returnLines(plays []pbp.Play) map[string]*ReturnLine {
	lines := map[string]*ReturnLine{}
	for i := range plays {
		p := &plays[i]
		if p.SeasonType != "REG" || p.ReturnTeam == "" {
			continue
		}
		punt := p.PlayType == "punt" && p.PuntReturner != ""
		kick := p.PlayType == "kickoff" && p.KickoffReturner != ""
		if !punt && !kick {
			continue
		}
		l, ok := lines[p.ReturnTeam]
		if !ok {
			l = &ReturnLine{}
			lines[p.ReturnTeam] = l
		}
		u := &l.Kickoff
		if punt {
			u = &l.Punt
		}
		u.Returns++
		u.Yards += zeroNaN(p.ReturnYards)
		if p.ReturnTouchdown {
			u.Touchdowns++
		}
	}
	return lines
}

// ReturnSeason ranks team's return yards in one season. ok is false when
// the team had no returns.
func ReturnSeason(plays []pbp.Play, team string, year int) (ReturnYear, bool) {
	lines := returnLines(plays)
	me, ok := lines[team]
	if !ok {
		return ReturnYear{}, false
	}
	peers := make([]stats.Peer, 0, len(lines))
	for t, l := range lines {
		peers = append(peers, stats.Peer{Key: t, Value: l.Yards()})
	}
	y := ReturnYear{Year: year, Line: *me}
	y.Rank, y.Teams, _ = stats.Rank(peers, team, stats.HigherIsBetter)
	return y, true
}

type ReturnReport struct {
	Team  string
	Years []ReturnYear
}

func (r *ReturnReport) Name() string { return "returns" }

func Returns(src pbp.Loader, team string, years []int) (*ReturnReport, error) {
	rep := &ReturnReport{Team: team}
	if _, err := eachSeason(src, years, func(year int, plays []pbp.Play) {
		if y, ok := ReturnSeason(plays, team, year); ok {
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

func (r *ReturnReport) Total() ReturnLine {
	var t ReturnLine
	for _, y := range r.Years {
		t.Punt = t.Punt.add(y.Line.Punt)
		t.Kickoff = t.Kickoff.add(y.Line.Kickoff)
	}
	return t
}

func (r *ReturnReport) AverageRank() float64 {
	xs := make([]float64, len(r.Years))
	for i, y := range r.Years {
		xs[i] = float64(y.Rank)
	}
	return stats.Mean(xs)
}

func (r *ReturnReport) label() string {
	yrs := make([]int, len(r.Years))
	for i, y := range r.Years {
		yrs[i] = y.Year
	}
	return yearsLabel(yrs)
}

func (r *ReturnReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	p.Banner(fmt.Sprintf("%s PUNT AND KICKOFF RETURNS (%s)", r.Team, r.label()))
	for _, y := range r.Years {
		p.Section(fmt.Sprintf("%d season", y.Year))
		p.Printf("Return yards rank: %s\n", report.RankOf(y.Rank, y.Teams))
		for _, u := range []struct {
			name string
			u    ReturnUnit
		}{{"Punt returns", y.Line.Punt}, {"Kickoff returns", y.Line.Kickoff}} {
			p.Printf("%s: %d returns, %.0f yards, %d TDs, %.1f yards/return\n",
				u.name, u.u.Returns, u.u.Yards, u.u.Touchdowns, u.u.Average())
		}
		p.Printf("Total return TDs: %d\n", y.Line.Touchdowns())
	}

	t := r.Total()
	p.Section(fmt.Sprintf("Totals (%s)", r.label()))
	p.Printf("Total return TDs: %d (%d punt + %d kickoff)\n", t.Touchdowns(), t.Punt.Touchdowns, t.Kickoff.Touchdowns)
	p.Printf("Total return yards: %.0f\n", t.Yards())
	p.Printf("Total returns: %d\n", t.Returns())
	p.Printf("Average rank: %.1f\n", r.AverageRank())
	return p.Err()
}

func (r *ReturnReport) Records() []summary.Record {
	var out []summary.Record
	for _, y := range r.Years {
		scope := summary.Season(y.Year)
		out = append(out,
			summary.Value(r.Name(), r.Team, scope, "return_yards", y.Line.Yards()).WithRank(y.Rank, y.Teams),
			summary.Value(r.Name(), r.Team, scope, "punt_return_avg", y.Line.Punt.Average()),
			summary.Value(r.Name(), r.Team, scope, "kickoff_return_avg", y.Line.Kickoff.Average()),
			summary.Value(r.Name(), r.Team, scope, "return_tds", float64(y.Line.Touchdowns())),
		)
	}
	if len(r.Years) < 2 {
		return out
	}
	t, scope := r.Total(), r.label()
	return append(out,
		summary.Value(r.Name(), r.Team, scope, "return_yards", t.Yards()),
		summary.Value(r.Name(), r.Team, scope, "return_tds", float64(t.Touchdowns())),
		summary.Value(r.Name(), r.Team, scope, "punt_return_tds", float64(t.Punt.Touchdowns)),
		summary.Value(r.Name(), r.Team, scope, "kickoff_return_tds", float64(t.Kickoff.Touchdowns)),
		summary.Value(r.Name(), r.Team, scope, "average_rank", r.AverageRank()),
	)
}
