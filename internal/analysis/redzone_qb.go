package analysis

import (
	"fmt"
	"io"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// MinRedZoneQBPlays is the floor for a QB to join the red-zone comparison.
const MinRedZoneQBPlays = 10

// RedZoneQBLine is one QB's plays inside the opponent's 20 as passer or
// rusher.
type RedZoneQBLine struct {
	QB            string
	Plays         int
	Touchdowns    int
	PassAttempts  int
	Interceptions int
	Completions   int
	Successes     int
	airYards      []float64
	epa           []float64
}

func (l *RedZoneQBLine) TDRate() float64 {
	return stats.Percent(float64(l.Touchdowns), float64(l.Plays))
}

// INTRate is per pass attempt.
func (l *RedZoneQBLine) INTRate() float64 {
	return stats.Percent(float64(l.Interceptions), float64(l.PassAttempts))
}

func (l *RedZoneQBLine) CompPct() float64 {
	return stats.Percent(float64(l.Completions), float64(l.PassAttempts))
}

// ADOT is mean air yards over pass attempts.
func (l *RedZoneQBLine) ADOT() float64 { return stats.Mean(l.airYards) }
func (l *RedZoneQBLine) EPAPerPlay() float64 { return stats.Mean(l.epa) }
func (l *RedZoneQBLine) SuccessRate() float64 {
	return stats.Percent(float64(l.Successes), float64(l.Plays))
}

func (l *RedZoneQBLine) values() map[string]float64 {
	return map[string]float64{
		"td_rate":         l.TDRate(),
		"int_rate":        l.INTRate(),
		"avg_depth":       l.ADOT(),
		"completion_rate": l.CompPct(),
		"epa_per_play":    l.EPAPerPlay(),
		"success_rate":    l.SuccessRate(),
	}
}

func inRedZone(p *pbp.Play) bool { return p.Yardline100 > 0 && p.Yardline100 <= 20 }

// redZoneQBLines folds one season into per-QB red-zone lines, and counts
// every passer's pass attempts anywhere on the field into attempts.
func redZoneQBLines(lines map[string]*RedZoneQBLine, attempts map[string]int, plays []pbp.Play) {
	line := func(qb string) *RedZoneQBLine {
		l, ok := lines[qb]
		if !ok {
			l = &RedZoneQBLine{QB: qb}
			lines[qb] = l
		}
		return l
	}
	for i := range plays {
		p := &plays[i]
		if p.PassAttempt && p.PasserName != "" {
			attempts[p.PasserName]++
		}
		if !inRedZone(p) {
			continue
		}
		for j, qb := range []string{p.PasserName, p.RusherName} {
			if qb == "" || (j == 1 && qb == p.PasserName) {
				continue
			}
			l := line(qb)
			l.Plays++
			l.epa = append(l.epa, p.EPA)
			if p.Touchdown {
				l.Touchdowns++
			}
			if p.Interception {
				l.Interceptions++
			}
			if p.Success {
				l.Successes++
			}
			if p.PassAttempt {
				l.PassAttempts++
				l.airYards = append(l.airYards, p.AirYards)
				if p.CompletePass {
					l.Completions++
				}
			}
		}
	}
}

type RedZoneQBReport struct {
	QB          string
	Years       []int
	MinAttempts int
	Line        RedZoneQBLine
	Metrics     []QBMetric
}

func (r *RedZoneQBReport) Name() string { return "red_zone_qb" }

// RedZoneQB ranks qb inside the 20 against passers with at least
// minAttempts pass attempts and MinRedZoneQBPlays red-zone plays.
func RedZoneQB(src pbp.Loader, qb string, years []int, minAttempts int) (*RedZoneQBReport, error) {
	if minAttempts <= 0 {
		minAttempts = MinQBAttempts
	}
	lines := map[string]*RedZoneQBLine{}
	attempts := map[string]int{}
	loaded, err := eachSeason(src, years, func(_ int, plays []pbp.Play) {
		redZoneQBLines(lines, attempts, plays)
	})
	if err != nil {
		return nil, err
	}
	me, ok := lines[qb]
	if !ok {
		return nil, ErrNoData
	}

	pool := map[string]map[string]float64{}
	for name, l := range lines {
		if attempts[name] >= minAttempts && l.Plays >= MinRedZoneQBPlays {
			pool[name] = l.values()
		}
	}
	rep := &RedZoneQBReport{QB: qb, Years: loaded, MinAttempts: minAttempts, Line: *me}
	rep.Metrics = []QBMetric{
		{Name: "td_rate", Label: "TD rate %", Format: "%.2f"},
		{Name: "int_rate", Label: "INT rate %", Format: "%.2f", Better: stats.LowerIsBetter},
		{Name: "avg_depth", Label: "Avg depth of target", Format: "%.2f"},
		{Name: "completion_rate", Label: "Completion %", Format: "%.2f"},
		{Name: "epa_per_play", Label: "EPA/play", Format: "%+.4f"},
		{Name: "success_rate", Label: "Success rate %", Format: "%.2f"},
	}
	v := me.values()
	for i := range rep.Metrics {
		rep.Metrics[i].Value = v[rep.Metrics[i].Name]
	}
	rankMetrics(rep.Metrics, qb, pool)
	return rep, nil
}

func (r *RedZoneQBReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	l := &r.Line
	p.Banner(fmt.Sprintf("%s RED ZONE (%s)", r.QB, yearsLabel(r.Years)))
	p.Printf("Touchdowns: %d in %d plays\n", l.Touchdowns, l.Plays)
	p.Printf("Interceptions: %d in %d pass attempts\n", l.Interceptions, l.PassAttempts)
	pool := 0
	if len(r.Metrics) > 0 {
		pool = r.Metrics[0].Pool
	}
	p.Section(fmt.Sprintf("Against %d QBs with %d+ attempts and %d+ red-zone plays", pool, r.MinAttempts, MinRedZoneQBPlays))
	p.Table([]string{"Metric", r.QB, "League avg", "Rank"}, qbMetricRows(r.Metrics))
	return p.Err()
}

func (r *RedZoneQBReport) Records() []summary.Record {
	scope := yearsLabel(r.Years)
	l := &r.Line
	out := []summary.Record{
		summary.Value(r.Name(), r.QB, scope, "plays", float64(l.Plays)),
		summary.Value(r.Name(), r.QB, scope, "touchdowns", float64(l.Touchdowns)),
		summary.Value(r.Name(), r.QB, scope, "interceptions", float64(l.Interceptions)),
	}
	return append(out, qbMetricRecords(r.Name(), r.QB, scope, r.Metrics)...)
}
