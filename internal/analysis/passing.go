package analysis

import (
	"fmt"
	"io"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// PasserLine accumulates one passer's box score and dropback values.
type PasserLine struct {
	Passer      string
	Completions int
	Incomplete  int
	Yards       float64
	TDs         int
	INTs        int
	Sacks       int

	Dropbacks int
	Successes int
	epaSum    float64
	epaN      int
	cpoeSum   float64
	cpoeN     int
}

// Attempts excludes spikes.
func (l *PasserLine) Attempts() int { return l.Completions + l.Incomplete }

func (l *PasserLine) CompPct() float64 {
	return stats.Percent(float64(l.Completions), float64(l.Attempts()))
}

func (l *PasserLine) YardsPerAttempt() float64 { return stats.Ratio(l.Yards, float64(l.Attempts())) }

// TDINT is touchdowns per interception, or the touchdown count when there
// are no interceptions.
func (l *PasserLine) TDINT() float64 {
	if l.INTs == 0 {
		return float64(l.TDs)
	}
	return float64(l.TDs) / float64(l.INTs)
}

func (l *PasserLine) Rating() float64 {
	return stats.PasserRating(float64(l.Completions), float64(l.Attempts()), l.Yards, float64(l.TDs), float64(l.INTs))
}

func (l *PasserLine) EPAPerDropback() float64 { return stats.Ratio(l.epaSum, float64(l.epaN)) }
func (l *PasserLine) SuccessRate() float64 {
	return stats.Percent(float64(l.Successes), float64(l.Dropbacks))
}
func (l *PasserLine) CPOE() float64 { return stats.Ratio(l.cpoeSum, float64(l.cpoeN)) }

func (l *PasserLine) add(p *pbp.Play) {
	if p.Sack {
		l.Sacks++
	}
	if !p.QBSpike {
		if p.CompletePass {
			l.Completions++
		}
		if p.IncompletePass {
			l.Incomplete++
		}
		if p.PassingYards == p.PassingYards {
			l.Yards += p.PassingYards
		}
		if p.PassTouchdown {
			l.TDs++
		}
		if p.Interception {
			l.INTs++
		}
	}
	if p.QBDropback {
		l.Dropbacks++
		if p.Success {
			l.Successes++
		}
		if p.QBEPA == p.QBEPA {
			l.epaSum += p.QBEPA
			l.epaN++
		}
		if p.CPOE == p.CPOE {
			l.cpoeSum += p.CPOE
			l.cpoeN++
		}
	}
}

func (l *PasserLine) values() map[string]float64 {
	return map[string]float64{
		"completion_pct":    l.CompPct(),
		"yards_per_attempt": l.YardsPerAttempt(),
		"td_int_ratio":      l.TDINT(),
		"passer_rating":     l.Rating(),
		"epa_per_dropback":  l.EPAPerDropback(),
		"success_rate":      l.SuccessRate(),
		"cpoe":              l.CPOE(),
	}
}

// PasserLines builds a line for every named passer in plays.
func PasserLines(lines map[string]*PasserLine, plays []pbp.Play) {
	for i := range plays {
		p := &plays[i]
		if p.PasserName == "" {
			continue
		}
		l, ok := lines[p.PasserName]
		if !ok {
			l = &PasserLine{Passer: p.PasserName}
			lines[p.PasserName] = l
		}
		l.add(p)
	}
}

type PassingReport struct {
	QB          string
	Years       []int
	MinAttempts int
	Line        PasserLine
	Qualified   int
	Metrics     []QBMetric
}

func (r *PassingReport) Name() string { return "passing" }

// Passing compares qb against every passer with at least minAttempts
// attempts over years.
func Passing(src pbp.Loader, qb string, years []int, minAttempts int) (*PassingReport, error) {
	if minAttempts <= 0 {
		minAttempts = MinQBAttempts
	}
	lines := map[string]*PasserLine{}
	loaded, err := eachSeason(src, years, func(_ int, plays []pbp.Play) {
		PasserLines(lines, plays)
	})
	if err != nil {
		return nil, err
	}
	me, ok := lines[qb]
	if !ok || me.Attempts() == 0 {
		return nil, ErrNoData
	}

	pool := map[string]map[string]float64{}
	for name, l := range lines {
		if l.Attempts() >= minAttempts {
			pool[name] = l.values()
		}
	}
	v := me.values()
	rep := &PassingReport{QB: qb, Years: loaded, MinAttempts: minAttempts, Line: *me, Qualified: len(pool)}
	rep.Metrics = []QBMetric{
		{Name: "completion_pct", Label: "Completion %", Format: "%.1f"},
		{Name: "yards_per_attempt", Label: "Yards/attempt"},
		{Name: "td_int_ratio", Label: "TD:INT"},
		{Name: "passer_rating", Label: "Passer rating", Format: "%.1f"},
		{Name: "epa_per_dropback", Label: "EPA/dropback", Format: "%+.3f"},
		{Name: "success_rate", Label: "Success rate %", Format: "%.1f"},
		{Name: "cpoe", Label: "CPOE", Format: "%+.2f"},
	}
	for i := range rep.Metrics {
		rep.Metrics[i].Value = v[rep.Metrics[i].Name]
	}
	rankMetrics(rep.Metrics, qb, pool)
	return rep, nil
}

func (r *PassingReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	l := &r.Line
	p.Banner(fmt.Sprintf("%s PASSING (%s)", r.QB, yearsLabel(r.Years)))
	p.Printf("Completions/attempts: %d/%d\n", l.Completions, l.Attempts())
	p.Printf("Yards: %.0f  TD: %d  INT: %d  Sacks: %d\n", l.Yards, l.TDs, l.INTs, l.Sacks)
	p.Printf("Dropbacks: %d\n", l.Dropbacks)
	p.Section(fmt.Sprintf("Against %d QBs with %d+ attempts", r.Qualified, r.MinAttempts))
	p.Table([]string{"Metric", r.QB, "League avg", "Rank"}, qbMetricRows(r.Metrics))
	return p.Err()
}

func (r *PassingReport) Records() []summary.Record {
	scope := yearsLabel(r.Years)
	l := &r.Line
	out := []summary.Record{
		summary.Rate(r.Name(), r.QB, scope, "completions", stats.Rate{Num: l.Completions, Den: l.Attempts()}),
		summary.Value(r.Name(), r.QB, scope, "passing_yards", l.Yards),
		summary.Value(r.Name(), r.QB, scope, "pass_tds", float64(l.TDs)),
		summary.Value(r.Name(), r.QB, scope, "interceptions", float64(l.INTs)),
		summary.Value(r.Name(), r.QB, scope, "sacks", float64(l.Sacks)),
	}
	return append(out, qbMetricRecords(r.Name(), r.QB, scope, r.Metrics)...)
}
