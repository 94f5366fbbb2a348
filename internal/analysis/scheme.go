package analysis

import (
	"fmt"
	"io"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// Play-action shares assumed for under-center and shotgun passes. The
// play-by-play carries no play-action flag.
const (
	underCenterPlayAction = 0.5
	shotgunPlayAction     = 0.2
)

// SchemeYear estimates a QB's offensive scheme usage for one season along
// with how the team's line protected on dropbacks.
type SchemeYear struct {
	Year int

	Plays       int // QB plays as passer or rusher
	Passes      int
	ShotgunPass int
	RPO         int
	Motion      int
	Shotgun     int
	EmptyEPA    []float64

	Dropbacks int
	Hits      int
	Sacks     int
}

// PlayActionRate weights under-center and shotgun passes by their assumed
// play-action shares.
func (y SchemeYear) PlayActionRate() float64 {
	est := float64(y.Passes-y.ShotgunPass)*underCenterPlayAction + float64(y.ShotgunPass)*shotgunPlayAction
	return stats.Percent(est, float64(y.Passes))
}

func (y SchemeYear) RPORate() float64 { return stats.Percent(float64(y.RPO), float64(y.Plays)) }
func (y SchemeYear) MotionRate() float64 { return stats.Percent(float64(y.Motion), float64(y.Plays)) }
func (y SchemeYear) ShotgunRate() float64 { return stats.Percent(float64(y.Shotgun), float64(y.Plays)) }

// EmptyFormationEPA is mean EPA on shotgun passes with more than five to go.
func (y SchemeYear) EmptyFormationEPA() float64 { return stats.Mean(y.EmptyEPA) }

func (y SchemeYear) PressureRate() float64 {
	return stats.Percent(float64(y.Hits+y.Sacks), float64(y.Dropbacks))
}

// PassBlockWinRate is the share of dropbacks with neither a hit nor a sack.
func (y SchemeYear) PassBlockWinRate() float64 {
	if y.Dropbacks == 0 {
		return 0
	}
	return 100 - y.PressureRate()
}

func (y SchemeYear) SackRate() float64 { return stats.Percent(float64(y.Sacks), float64(y.Dropbacks)) }

// SchemeSeason measures qb's plays for team in one season file. ok is false
// when qb has none.
func SchemeSeason(plays []pbp.Play, qb, team string, year int) (SchemeYear, bool) {
	y := SchemeYear{Year: year}
	for i := range plays {
		p := &plays[i]
		if p.PosTeam != team {
			continue
		}
		if p.QBDropback {
			y.Dropbacks++
			if p.QBHit {
				y.Hits++
			}
			if p.Sack {
				y.Sacks++
			}
		}
		if p.PasserName != qb && p.RusherName != qb {
			continue
		}
		y.Plays++
		if p.Shotgun {
			y.Shotgun++
		}
		if p.Shotgun || p.NoHuddle {
			y.Motion++
		}
		if p.Shotgun && ((p.PassAttempt && p.AirYards < 5) || (p.RushAttempt && !p.QBScramble)) {
			y.RPO++
		}
		if !p.PassAttempt {
			continue
		}
		y.Passes++
		if p.Shotgun {
			y.ShotgunPass++
			if p.YardsToGo > 5 {
				y.EmptyEPA = append(y.EmptyEPA, p.EPA)
			}
		}
	}
	return y, y.Plays > 0
}

type SchemeReport struct {
	QB, Team string
	Years    []SchemeYear
}

func (r *SchemeReport) Name() string { return "scheme" }

func Scheme(src pbp.Loader, qb, team string, years []int) (*SchemeReport, error) {
	rep := &SchemeReport{QB: qb, Team: team}
	if _, err := eachSeason(src, years, func(year int, plays []pbp.Play) {
		if y, ok := SchemeSeason(plays, qb, team, year); ok {
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

type schemeMetric struct {
	name, label string
	value       func(SchemeYear) float64
	format      string
}

var schemeMetrics = []schemeMetric{
	{"play_action_rate", "Play-action rate (est.)", SchemeYear.PlayActionRate, "%.2f%%"},
	{"rpo_rate", "RPO frequency (est.)", SchemeYear.RPORate, "%.2f%%"},
	{"motion_rate", "Motion rate (est.)", SchemeYear.MotionRate, "%.2f%%"},
	{"empty_epa", "Empty formation EPA (est.)", SchemeYear.EmptyFormationEPA, "%.4f"},
	{"shotgun_rate", "Shotgun rate", SchemeYear.ShotgunRate, "%.2f%%"},
	{"pass_block_win_rate", "Pass block win rate", SchemeYear.PassBlockWinRate, "%.2f%%"},
	{"pressure_rate", "Pressure rate allowed", SchemeYear.PressureRate, "%.2f%%"},
	{"sack_rate", "Sack rate", SchemeYear.SackRate, "%.2f%%"},
}

func (r *SchemeReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	p.Banner(fmt.Sprintf("%s SCHEME EVOLUTION, %s", r.QB, r.Team))
	for _, y := range r.Years {
		p.Section(fmt.Sprintf("%d season", y.Year))
		for _, m := range schemeMetrics {
			p.Printf("%s: "+m.format+"\n", m.label, m.value(y))
		}
		p.Printf("QB plays: %d, dropbacks: %d, QB hits allowed: %d, sacks allowed: %d\n", y.Plays, y.Dropbacks, y.Hits, y.Sacks)
	}
	if len(r.Years) < 2 {
		return p.Err()
	}

	first, last := r.Years[0], r.Years[len(r.Years)-1]
	p.Section(fmt.Sprintf("Key changes (%d to %d)", first.Year, last.Year))
	var rows [][]string
	for _, m := range schemeMetrics {
		a, b := m.value(first), m.value(last)
		rows = append(rows, []string{m.label, fmt.Sprintf(m.format, a), fmt.Sprintf(m.format, b), report.Signed(b-a, 2)})
	}
	p.Table([]string{"Metric", fmt.Sprint(first.Year), fmt.Sprint(last.Year), "Change"}, rows)
	return p.Err()
}

func (r *SchemeReport) Records() []summary.Record {
	var out []summary.Record
	for _, y := range r.Years {
		for _, m := range schemeMetrics {
			out = append(out, summary.Value(r.Name(), r.QB, summary.Season(y.Year), m.name, m.value(y)))
		}
	}
	if len(r.Years) > 1 {
		first, last := r.Years[0], r.Years[len(r.Years)-1]
		scope := fmt.Sprintf("%d-%d", first.Year, last.Year)
		for _, m := range schemeMetrics {
			out = append(out, summary.Value(r.Name(), r.QB, scope, m.name+"_change", m.value(last)-m.value(first)))
		}
	}
	return out
}
