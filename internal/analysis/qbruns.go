package analysis

import (
	"fmt"
	"io"
	"sort"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// MinTeamPasserAttempts is how many pass attempts make a passer one of the
// team's quarterbacks when none are named.
const MinTeamPasserAttempts = 10

// QBRunOptions narrows a QB run report. Zero weeks leave that end open.
type QBRunOptions struct {
	QBs              []string
	FromWeek, ToWeek int
}

func (o QBRunOptions) inWeeks(p *pbp.Play) bool {
	return (o.FromWeek == 0 || p.Week >= o.FromWeek) && (o.ToWeek == 0 || p.Week <= o.ToWeek)
}

// Carries totals rushing attempts and yards.
type Carries struct {
	Attempts int
	Yards    float64
}

func (c Carries) YPC() float64 { return stats.Ratio(c.Yards, float64(c.Attempts)) }

func (c *Carries) add(p *pbp.Play) {
	c.Attempts++
	c.Yards += zeroNaN(p.RushingYards)
}

// QBRunYear is one season of designed QB runs, RPO-style plays and team
// rushing.
type QBRunYear struct {
	Year     int
	QBs      []string
	Designed Carries
	ByQB     map[string]*Carries
	RPO      stats.Rate
	Rushing  Carries

	// RushSuccess counts rushes with positive EPA or a first down.
	RushSuccess stats.Rate
	rushEPA     []float64
}

func (y QBRunYear) EPAPerRush() float64 { return stats.Mean(y.rushEPA) }

// teamQBs lists team passers with at least MinTeamPasserAttempts
// regular-season pass attempts.
func teamQBs(plays []pbp.Play, team string) []string {
	att := map[string]int{}
	for i := range plays {
		p := &plays[i]
		if p.SeasonType == "REG" && p.PosTeam == team && p.PassAttempt && p.PasserName != "" {
			att[p.PasserName]++
		}
	}
	var out []string
	for name, n := range att {
		if n >= MinTeamPasserAttempts {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// rpoLike is a shotgun early-down short pass or run.
func rpoLike(p *pbp.Play) bool {
	return p.Shotgun && (p.Down == 1 || p.Down == 2) &&
		((p.PassAttempt && p.AirYards < 5) || p.RushAttempt)
}

// rpoSuccess gives credit for a first down, a touchdown, or 40% of the
// distance on first down and 60% on second.
func rpoSuccess(p *pbp.Play) bool {
	togo := float64(p.YardsToGo)
	switch {
	case p.FirstDown || p.Touchdown:
		return true
	case p.Down == 1:
		return p.YardsGained >= 0.4*togo
	case p.Down == 2:
		return p.YardsGained >= 0.6*togo
	}
	return false
}

// QBRunSeason measures team's regular-season offense in one season file.
// ok is false when the team had no offensive plays in the window.
func QBRunSeason(plays []pbp.Play, team string, year int, opts QBRunOptions) (QBRunYear, bool) {
	qbs := opts.QBs
	if len(qbs) == 0 {
		qbs = teamQBs(plays, team)
	}
	isQB := map[string]bool{}
	for _, q := range qbs {
		isQB[q] = true
	}
	y := QBRunYear{Year: year, QBs: qbs, ByQB: map[string]*Carries{}}
	n := 0
	for i := range plays {
		p := &plays[i]
		if p.SeasonType != "REG" || p.PosTeam != team || !opts.inWeeks(p) {
			continue
		}
		n++
		if rpoLike(p) {
			y.RPO.Den++
			if rpoSuccess(p) {
				y.RPO.Num++
			}
		}
		if !p.RushAttempt {
			continue
		}
		y.Rushing.add(p)
		y.rushEPA = append(y.rushEPA, p.EPA)
		y.RushSuccess.Den++
		if p.EPA > 0 || p.FirstDown {
			y.RushSuccess.Num++
		}
		if p.QBScramble || !isQB[p.RusherName] {
			continue
		}
		y.Designed.add(p)
		c, ok := y.ByQB[p.RusherName]
		if !ok {
			c = &Carries{}
			y.ByQB[p.RusherName] = c
		}
		c.add(p)
	}
	return y, n > 0
}

type QBRunReport struct {
	Team    string
	Options QBRunOptions
	Years   []QBRunYear
}

func (r *QBRunReport) Name() string { return "qb_runs" }

func QBRuns(src pbp.Loader, team string, years []int, opts QBRunOptions) (*QBRunReport, error) {
	rep := &QBRunReport{Team: team, Options: opts}
	if _, err := eachSeason(src, years, func(year int, plays []pbp.Play) {
		if y, ok := QBRunSeason(plays, team, year, opts); ok {
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

func (r *QBRunReport) mean(f func(QBRunYear) float64) float64 {
	xs := make([]float64, len(r.Years))
	for i, y := range r.Years {
		xs[i] = f(y)
	}
	return stats.Mean(xs)
}

func (r *QBRunReport) label() string {
	yrs := make([]int, len(r.Years))
	for i, y := range r.Years {
		yrs[i] = y.Year
	}
	return yearsLabel(yrs)
}

func (r *QBRunReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	title := fmt.Sprintf("%s QB RUNS AND RPO (%s)", r.Team, r.label())
	switch o := r.Options; {
	case o.FromWeek > 0 && o.ToWeek > 0:
		title += fmt.Sprintf(", WEEKS %d-%d", o.FromWeek, o.ToWeek)
	case o.FromWeek > 0:
		title += fmt.Sprintf(", FROM WEEK %d", o.FromWeek)
	case o.ToWeek > 0:
		title += fmt.Sprintf(", THROUGH WEEK %d", o.ToWeek)
	}
	p.Banner(title)

	p.Section("Designed QB runs")
	var rows [][]string
	for _, y := range r.Years {
		rows = append(rows, []string{fmt.Sprint(y.Year), fmt.Sprint(y.Designed.Attempts),
			fmt.Sprintf("%.0f", y.Designed.Yards), fmt.Sprintf("%.2f", y.Designed.YPC())})
		names := make([]string, 0, len(y.ByQB))
		for name := range y.ByQB {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c := y.ByQB[name]
			rows = append(rows, []string{"  " + name, fmt.Sprint(c.Attempts), fmt.Sprintf("%.0f", c.Yards), fmt.Sprintf("%.2f", c.YPC())})
		}
	}
	p.Table([]string{"Season", "Att", "Yds", "YPC"}, rows)
	p.Printf("Average: %.1f attempts, %.1f yards, %.2f per carry\n",
		r.mean(func(y QBRunYear) float64 { return float64(y.Designed.Attempts) }),
		r.mean(func(y QBRunYear) float64 { return y.Designed.Yards }),
		r.mean(func(y QBRunYear) float64 { return y.Designed.YPC() }))

	p.Section("RPO success rate (estimated)")
	for _, y := range r.Years {
		p.Printf("%d: %s\n", y.Year, report.RateLine(y.RPO))
	}
	p.Printf("Average: %.1f%%\n", r.mean(func(y QBRunYear) float64 { return y.RPO.Pct() }))

	p.Section("Team rushing effectiveness")
	rows = nil
	for _, y := range r.Years {
		rows = append(rows, []string{fmt.Sprint(y.Year), fmt.Sprint(y.Rushing.Attempts), fmt.Sprintf("%.0f", y.Rushing.Yards),
			fmt.Sprintf("%.2f", y.Rushing.YPC()), fmt.Sprintf("%+.3f", y.EPAPerRush()), fmt.Sprintf("%.1f%%", y.RushSuccess.Pct())})
	}
	p.Table([]string{"Season", "Rushes", "Yds", "YPC", "EPA/rush", "Success"}, rows)
	return p.Err()
}

func (r *QBRunReport) Records() []summary.Record {
	var out []summary.Record
	for _, y := range r.Years {
		scope := summary.Season(y.Year)
		out = append(out,
			summary.Value(r.Name(), r.Team, scope, "designed_qb_runs", float64(y.Designed.Attempts)),
			summary.Value(r.Name(), r.Team, scope, "designed_qb_run_yards", y.Designed.Yards),
			summary.Value(r.Name(), r.Team, scope, "designed_qb_run_ypc", y.Designed.YPC()),
			summary.Rate(r.Name(), r.Team, scope, "rpo_success_rate", y.RPO),
			summary.Value(r.Name(), r.Team, scope, "team_rush_ypc", y.Rushing.YPC()),
			summary.Value(r.Name(), r.Team, scope, "team_epa_per_rush", y.EPAPerRush()),
			summary.Rate(r.Name(), r.Team, scope, "team_rush_success_rate", y.RushSuccess),
		)
	}
	if len(r.Years) < 2 {
		return out
	}
	scope := r.label()
	return append(out,
		summary.Value(r.Name(), r.Team, scope, "designed_qb_runs_avg", r.mean(func(y QBRunYear) float64 { return float64(y.Designed.Attempts) })),
		summary.Value(r.Name(), r.Team, scope, "designed_qb_run_ypc_avg", r.mean(func(y QBRunYear) float64 { return y.Designed.YPC() })),
		summary.Value(r.Name(), r.Team, scope, "rpo_success_rate_avg", r.mean(func(y QBRunYear) float64 { return y.RPO.Pct() })),
		summary.Value(r.Name(), r.Team, scope, "team_rush_ypc_avg", r.mean(func(y QBRunYear) float64 { return y.Rushing.YPC() })),
		summary.Value(r.Name(), r.Team, scope, "team_epa_per_rush_avg", r.mean(QBRunYear.EPAPerRush)),
	)
}
