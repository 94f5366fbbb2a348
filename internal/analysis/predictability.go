package analysis

import (
	"fmt"
	"io"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// Situation is a down-and-distance bucket for run/pass tendencies.
type Situation struct {
	Name  string
	Label string
	Match func(p *pbp.Play) bool
}

var Situations = []Situation{
	{"first_down", "1st Down", func(p *pbp.Play) bool { return p.Down == 1 }},
	{"second_long", "2nd & Long (7+)", func(p *pbp.Play) bool { return p.Down == 2 && p.YardsToGo >= 7 }},
	{"third_short", "3rd & Short (1-3)", func(p *pbp.Play) bool { return p.Down == 3 && p.YardsToGo >= 1 && p.YardsToGo <= 3 }},
}

// Tendency is the run share of a situation. Passes are the rest.
type Tendency struct {
	Runs stats.Rate
}

func (t Tendency) RunPct() float64 { return t.Runs.Pct() }

func (t Tendency) PassPct() float64 {
	if t.Runs.Den == 0 {
		return 0
	}
	return 100 - t.Runs.Pct()
}

// PlayCallYear holds one tendency per entry of Situations.
type PlayCallYear struct {
	Year       int
	Tendencies []Tendency
}

// PlayCallSeason measures team's regular-season run/pass calls. ok is
// false when the team ran no offensive plays.
func PlayCallSeason(plays []pbp.Play, team string, year int) (PlayCallYear, bool) {
	y := PlayCallYear{Year: year, Tendencies: make([]Tendency, len(Situations))}
	n := 0
	for i := range plays {
		p := &plays[i]
		if p.SeasonType != "REG" || p.PosTeam != team || (p.PlayType != "run" && p.PlayType != "pass") {
			continue
		}
		n++
		for s, sit := range Situations {
			if !sit.Match(p) {
				continue
			}
			y.Tendencies[s].Runs.Den++
			if p.PlayType == "run" {
				y.Tendencies[s].Runs.Num++
			}
		}
	}
	return y, n > 0
}

// PredictabilityReport compares a base season's tendencies with the mean
// of later seasons.
type PredictabilityReport struct {
	Team   string
	Base   PlayCallYear
	Recent []PlayCallYear
}

func (r *PredictabilityReport) Name() string { return "predictability" }

// Predictability needs both the base season and at least one recent season.
func Predictability(src pbp.Loader, team string, base int, recent []int) (*PredictabilityReport, error) {
	rep := &PredictabilityReport{Team: team}
	var haveBase bool
	if _, err := eachSeason(src, append([]int{base}, recent...), func(year int, plays []pbp.Play) {
		y, ok := PlayCallSeason(plays, team, year)
		switch {
		case !ok:
		case year == base && !haveBase:
			rep.Base, haveBase = y, true
		default:
			rep.Recent = append(rep.Recent, y)
		}
	}); err != nil {
		return nil, err
	}
	if !haveBase || len(rep.Recent) == 0 {
		return nil, ErrNoData
	}
	return rep, nil
}

// RecentRunPct and RecentPassPct average the per-season percentages.
func (r *PredictabilityReport) RecentRunPct(s int) float64 {
	xs := make([]float64, len(r.Recent))
	for i, y := range r.Recent {
		xs[i] = y.Tendencies[s].RunPct()
	}
	return stats.Mean(xs)
}

func (r *PredictabilityReport) RecentPassPct(s int) float64 {
	xs := make([]float64, len(r.Recent))
	for i, y := range r.Recent {
		xs[i] = y.Tendencies[s].PassPct()
	}
	return stats.Mean(xs)
}

// RunChange is the shift in run share from the base season, in points.
func (r *PredictabilityReport) RunChange(s int) float64 {
	return r.RecentRunPct(s) - r.Base.Tendencies[s].RunPct()
}

// leans reports whether a run/pass split is lopsided enough to read.
func leans(s int, run, pass float64) bool {
	switch Situations[s].Name {
	case "first_down":
		return run > 55
	case "second_long":
		return pass > 70
	case "third_short":
		return run > 65 || pass > 65
	}
	return false
}

// Score counts lopsided splits over the base season and the recent mean,
// out of 2*len(Situations).
func (r *PredictabilityReport) Score() int {
	n := 0
	for s := range Situations {
		b := r.Base.Tendencies[s]
		if leans(s, b.RunPct(), b.PassPct()) {
			n++
		}
		if leans(s, r.RecentRunPct(s), r.RecentPassPct(s)) {
			n++
		}
	}
	return n
}

func (r *PredictabilityReport) recentLabel() string {
	yrs := make([]int, len(r.Recent))
	for i, y := range r.Recent {
		yrs[i] = y.Year
	}
	return yearsLabel(yrs)
}

func (r *PredictabilityReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	recent := r.recentLabel()
	p.Banner(fmt.Sprintf("%s PREDICTABILITY METRICS (%d vs %s)", r.Team, r.Base.Year, recent))

	p.Section("Run-pass ratio by down")
	for s, sit := range Situations {
		b := r.Base.Tendencies[s]
		p.Printf("%s:\n", sit.Label)
		p.Printf("  %d: %.1f%% run / %.1f%% pass (%d plays)\n", r.Base.Year, b.RunPct(), b.PassPct(), b.Runs.Den)
		p.Printf("  %s avg: %.1f%% run / %.1f%% pass\n", recent, r.RecentRunPct(s), r.RecentPassPct(s))
		p.Printf("  Change in run frequency: %s points\n", report.Signed(r.RunChange(s), 1))
	}

	score := r.Score()
	p.Section("Overall predictability")
	p.Printf("Predictability indicators: %d/%d\n", score, 2*len(Situations))
	switch {
	case score <= 2:
		p.Println("Unpredictable: balanced across situations")
	case score <= 4:
		p.Println("Moderately predictable: some tendencies defenses can exploit")
	default:
		p.Println("Highly predictable: clear patterns defenses can key on")
	}

	p.Section("Year by year")
	header := []string{"Season"}
	for _, sit := range Situations {
		header = append(header, sit.Label+" run%")
	}
	var rows [][]string
	for _, y := range append([]PlayCallYear{r.Base}, r.Recent...) {
		row := []string{fmt.Sprint(y.Year)}
		for _, t := range y.Tendencies {
			row = append(row, fmt.Sprintf("%.1f", t.RunPct()))
		}
		rows = append(rows, row)
	}
	p.Table(header, rows)
	return p.Err()
}

func (r *PredictabilityReport) Records() []summary.Record {
	var out []summary.Record
	recent := r.recentLabel()
	for s, sit := range Situations {
		out = append(out,
			summary.Rate(r.Name(), r.Team, summary.Season(r.Base.Year), sit.Name+"_run_pct", r.Base.Tendencies[s].Runs),
			summary.Value(r.Name(), r.Team, recent, sit.Name+"_run_pct", r.RecentRunPct(s)),
			summary.Value(r.Name(), r.Team, recent, sit.Name+"_run_change", r.RunChange(s)),
		)
	}
	return append(out, summary.Value(r.Name(), r.Team, recent, "predictability_score", float64(r.Score())))
}
