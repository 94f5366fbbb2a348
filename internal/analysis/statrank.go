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

// StatReport is a league leaderboard for one catalog definition.
type StatReport struct {
	Def   rollup.Definition
	Team  string
	Years []int
	MinN  int
	Table *rollup.Table
	Rank  int
	Teams int
}

func (r *StatReport) Name() string { return r.Def.Name }

// Stat evaluates def over years and ranks team among groups with at least
// minN observations. team may be empty for a plain leaderboard.
func Stat(src pbp.Loader, def rollup.Definition, team string, years []int, minN int) (*StatReport, error) {
	tbl := rollup.NewTable(def)
	loaded, err := eachSeason(src, years, func(_ int, plays []pbp.Play) {
		tbl.Merge(rollup.Compute(def, plays))
	})
	if err != nil {
		return nil, err
	}
	if len(tbl.Peers(minN)) == 0 {
		return nil, ErrNoData
	}
	rep := &StatReport{Def: def, Team: team, Years: loaded, MinN: minN, Table: tbl}
	if team != "" {
		rep.Rank, rep.Teams, _ = tbl.Rank(team, minN)
	}
	return rep, nil
}

func (r *StatReport) format(a rollup.Acc) string {
	switch r.Def.Kind {
	case rollup.KindRate:
		return report.RateLine(a.Rate())
	case rollup.KindMean:
		return report.Signed(a.Mean(), 3)
	}
	return fmt.Sprintf("%.1f", a.Sum)
}

func (r *StatReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	p.Banner(fmt.Sprintf("%s (%s, %s)", r.Def.Name, yearsLabel(r.Years), r.Def.Better))
	var rows [][]string
	prev, rank := 0.0, 0
	for i, pr := range stats.Sorted(r.Table.Peers(r.MinN), r.Def.Better) {
		if i == 0 || pr.Value != prev {
			rank = i + 1
		}
		prev = pr.Value
		mark := ""
		if pr.Key == r.Team {
			mark = "<"
		}
		rows = append(rows, []string{fmt.Sprint(rank), pr.Key, r.format(r.Table.Get(pr.Key)), mark})
	}
	p.Table([]string{"#", "Group", "Value", ""}, rows)
	if r.Team != "" {
		p.Printf("\n%s: %s\n", r.Team, report.RankOf(r.Rank, r.Teams))
	}
	return p.Err()
}

func (r *StatReport) Records() []summary.Record {
	scope := yearsLabel(r.Years)
	var out []summary.Record
	for _, pr := range r.Table.Peers(r.MinN) {
		a := r.Table.Get(pr.Key)
		var rec summary.Record
		if r.Def.Kind == rollup.KindRate {
			rec = summary.Rate(r.Name(), pr.Key, scope, r.Def.Name, a.Rate())
		} else {
			rec = summary.Value(r.Name(), pr.Key, scope, r.Def.Name, pr.Value)
		}
		rank, size, _ := r.Table.Rank(pr.Key, r.MinN)
		out = append(out, rec.WithRank(rank, size))
	}
	return out
}
