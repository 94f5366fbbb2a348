package analysis

import (
	"io"
	"log/slog"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// FourthDownWPAYear splits a season's fourth-down win probability added
// between conversions and failures. Blank WPA counts as zero.
type FourthDownWPAYear struct {
	Year        int
	Attempts    stats.Rate
	Conversions float64
	Failures    float64
}

func (y FourthDownWPAYear) Net() float64 { return y.Conversions + y.Failures }

func (y FourthDownWPAYear) PerAttempt() float64 { return stats.Ratio(y.Net(), float64(y.Attempts.Den)) }

type FourthDownWPAReport struct {
	Team  string
	Years []FourthDownWPAYear
	Total FourthDownWPAYear
}

func (r *FourthDownWPAReport) Name() string { return "fourth_down_wpa" }

// FourthDownWPASeason returns false when the season has no attempts or none by team.
func FourthDownWPASeason(plays []pbp.Play, team string, year int) (*FourthDownWPAYear, bool) {
	if pbp.Count(plays, FourthDownAttempt) == 0 {
		return nil, false
	}
	y := &FourthDownWPAYear{Year: year}
	mine := pbp.And(FourthDownAttempt, pbp.Offense(team))
	for i := range plays {
		p := &plays[i]
		if !mine(p) {
			continue
		}
		y.Attempts.Den++
		if p.Converted() {
			y.Attempts.Num++
			y.Conversions += zeroNaN(p.WPA)
		} else {
			y.Failures += zeroNaN(p.WPA)
		}
	}
	if y.Attempts.Den == 0 {
		return nil, false
	}
	return y, true
}

func FourthDownWPA(src pbp.Loader, team string, years []int) (*FourthDownWPAReport, error) {
	rep := &FourthDownWPAReport{Team: team}
	_, err := eachSeason(src, years, func(year int, plays []pbp.Play) {
		y, ok := FourthDownWPASeason(plays, team, year)
		if !ok {
			slog.Warn("no fourth-down attempts", "season", year, "team", team)
			return
		}
		rep.Years = append(rep.Years, *y)
		rep.Total.Attempts = rep.Total.Attempts.Add(y.Attempts)
		rep.Total.Conversions += y.Conversions
		rep.Total.Failures += y.Failures
	})
	if err != nil {
		return nil, err
	}
	if len(rep.Years) == 0 {
		return nil, ErrNoData
	}
	return rep, nil
}

func (r *FourthDownWPAReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	p.Banner("FOURTH DOWN WPA ANALYSIS (" + r.label() + ")")

	t := r.Total
	p.Printf("Total 4th down attempts: %d\n", t.Attempts.Den)
	p.Printf("Successful conversions: %d (%.1f%%)\n", t.Attempts.Num, t.Attempts.Pct())
	p.Printf("Failed attempts: %d (%.1f%%)\n", t.Attempts.Failed(), 100-t.Attempts.Pct())
	p.Printf("\nTotal WPA from conversions: %s\n", report.Signed(t.Conversions, 3))
	p.Printf("Total WPA from failures: %s\n", report.Signed(t.Failures, 3))
	p.Printf("Net WPA: %s\n", report.Signed(t.Net(), 3))
	p.Printf("Average WPA per attempt: %s\n", report.Signed(t.PerAttempt(), 4))

	p.Section("Year-by-Year WPA from 4th Downs")
	for _, y := range r.Years {
		p.Printf("%d: Net WPA %s (%d/%d conversions, avg %s per attempt)\n",
			y.Year, report.Signed(y.Net(), 3), y.Attempts.Num, y.Attempts.Den, report.Signed(y.PerAttempt(), 4))
	}
	if t.Net() > 0 {
		p.Printf("\nPositive net WPA: going for it added %s to %s win probability.\n", report.Signed(t.Net(), 3), r.Team)
	} else {
		p.Printf("\nNegative net WPA: going for it cost %s %.3f in win probability.\n", r.Team, -t.Net())
	}
	return p.Err()
}

func (r *FourthDownWPAReport) label() string {
	yrs := make([]int, len(r.Years))
	for i, y := range r.Years {
		yrs[i] = y.Year
	}
	return yearsLabel(yrs)
}

func (r *FourthDownWPAReport) Records() []summary.Record {
	var out []summary.Record
	add := func(scope string, y FourthDownWPAYear) {
		out = append(out,
			summary.Rate(r.Name(), r.Team, scope, "conversion_rate", y.Attempts),
			summary.Value(r.Name(), r.Team, scope, "wpa_conversions", y.Conversions),
			summary.Value(r.Name(), r.Team, scope, "wpa_failures", y.Failures),
			summary.Value(r.Name(), r.Team, scope, "net_wpa", y.Net()),
			summary.Value(r.Name(), r.Team, scope, "wpa_per_attempt", y.PerAttempt()),
		)
	}
	for _, y := range r.Years {
		add(summary.Season(y.Year), y)
	}
	if len(r.Years) > 1 {
		add(r.label(), r.Total)
	}
	return out
}
