package analysis

import (
	"fmt"
	"io"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/rollup"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// ScatterPoint is one playoff team-season: offensive EPA per play in the
// regular season against the same in the playoffs.
type ScatterPoint struct {
	Team     string
	Season   int
	Regular  float64
	Playoffs float64
}

// Delta is playoff minus regular-season EPA per play.
func (p ScatterPoint) Delta() float64 { return p.Playoffs - p.Regular }

type EPAScatterReport struct {
	Years  []int
	Points []ScatterPoint
}

func (r *EPAScatterReport) Name() string { return "epa_scatter" }

// EPAScatterSeason pairs every team that has offensive EPA in both phases.
func EPAScatterSeason(plays []pbp.Play, year int) []ScatterPoint {
	reg := rollup.Compute(OffenseEPA.Where(pbp.RegularSeason), plays)
	post := rollup.Compute(OffenseEPA.Where(pbp.Postseason), plays)
	var out []ScatterPoint
	for _, t := range post.Keys() {
		if !reg.Has(t) || !post.Has(t) {
			continue
		}
		out = append(out, ScatterPoint{Team: t, Season: year, Regular: reg.Value(t), Playoffs: post.Value(t)})
	}
	return out
}

func EPAScatter(src pbp.Loader, years []int) (*EPAScatterReport, error) {
	rep := &EPAScatterReport{}
	loaded, err := eachSeason(src, years, func(year int, plays []pbp.Play) {
		rep.Points = append(rep.Points, EPAScatterSeason(plays, year)...)
	})
	if err != nil {
		return nil, err
	}
	if len(rep.Points) == 0 {
		return nil, ErrNoData
	}
	rep.Years = loaded
	return rep, nil
}

func (r *EPAScatterReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	p.Banner(fmt.Sprintf("OFFENSIVE EPA/PLAY: REGULAR SEASON VS PLAYOFFS (%s)", yearsLabel(r.Years)))
	var rows [][]string
	for _, pt := range r.Points {
		rows = append(rows, []string{
			fmt.Sprint(pt.Season), pt.Team,
			report.Signed(pt.Regular, 3), report.Signed(pt.Playoffs, 3), report.Signed(pt.Delta(), 3),
		})
	}
	p.Table([]string{"Season", "Team", "Regular", "Playoffs", "Change"}, rows)
	return p.Err()
}

func (r *EPAScatterReport) Records() []summary.Record {
	var out []summary.Record
	for _, pt := range r.Points {
		s := summary.Season(pt.Season)
		out = append(out,
			summary.Value(r.Name(), pt.Team, s, "regular_epa_per_play", pt.Regular),
			summary.Value(r.Name(), pt.Team, s, "playoff_epa_per_play", pt.Playoffs),
		)
	}
	return out
}
