package analysis

import (
	"fmt"
	"io"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/rollup"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// FourthDownCompareReport compares how often several teams converted the
// fourth downs they went for across a span of seasons.
type FourthDownCompareReport struct {
	From, To int
	Teams    []string
	Table    *rollup.Table
}

func (r *FourthDownCompareReport) Name() string { return "fourth_down_compare" }

func FourthDownCompare(src pbp.Loader, teams []string, from, to int) (*FourthDownCompareReport, error) {
	tbl := rollup.NewTable(FourthDownGoRate)
	_, err := eachSeason(src, span(from, to), func(_ int, plays []pbp.Play) {
		tbl.Merge(rollup.Compute(FourthDownGoRate, plays))
	})
	if err != nil {
		return nil, err
	}
	return &FourthDownCompareReport{From: from, To: to, Teams: teams, Table: tbl}, nil
}

func (r *FourthDownCompareReport) scope() string { return fmt.Sprintf("%d-%d", r.From, r.To) }

func (r *FourthDownCompareReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	p.Banner(fmt.Sprintf("FOURTH DOWN CONVERSION RATE (%s)", r.scope()))
	var rows [][]string
	for _, t := range r.Teams {
		a := r.Table.Get(t)
		rank, size, _ := r.Table.Rank(t, 1)
		rows = append(rows, []string{t, fmt.Sprintf("%.2f%%", a.Rate().Pct()),
			fmt.Sprint(a.N), fmt.Sprint(a.Hits), report.RankOf(rank, size)})
	}
	p.Table([]string{"Team", "Rate", "Attempts", "Converted", "Rank"}, rows)
	return p.Err()
}

func (r *FourthDownCompareReport) Records() []summary.Record {
	var out []summary.Record
	for _, t := range r.Teams {
		rank, size, _ := r.Table.Rank(t, 1)
		out = append(out, summary.Rate(r.Name(), t, r.scope(), "go_conversion_rate", r.Table.Get(t).Rate()).WithRank(rank, size))
	}
	return out
}
