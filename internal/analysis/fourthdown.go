package analysis

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/rollup"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// FourthDownYear is one season of fourth-down attempts.
type FourthDownYear struct {
	Year   int
	Team   stats.Rate
	League stats.Rate // every team, the subject included
	Zones  []stats.Rate
}

// FourthDownEra rolls seasons up into an era.
type FourthDownEra struct {
	Era    rollup.Era
	Team   stats.Rate
	League stats.Rate
	Zones  []stats.Rate
	Years  []FourthDownYear
}

type FourthDownReport struct {
	Team  string
	Eras  []FourthDownEra
	Zones []stats.Rate // every era together
}

func (r *FourthDownReport) Name() string { return "fourth_down" }

// FourthDownSeason computes one season. It returns false when the season
// has no attempts at all or none by team.
func FourthDownSeason(plays []pbp.Play, team string, year int) (*FourthDownYear, bool) {
	league := rollup.Compute(FourthDownRate.WithKey(rollup.League), plays).Get(rollup.LeagueKey)
	if league.N == 0 {
		return nil, false
	}
	teamDef := FourthDownRate.Where(pbp.Offense(team))
	own := rollup.Compute(teamDef, plays).Get(team)
	if own.N == 0 {
		return nil, false
	}
	y := &FourthDownYear{Year: year, Team: own.Rate(), League: league.Rate()}
	for _, z := range Zones {
		y.Zones = append(y.Zones, rollup.Compute(teamDef.Where(z.In), plays).Get(team).Rate())
	}
	return y, true
}

// FourthDown runs FourthDownSeason over every era.
func FourthDown(src pbp.Loader, team string, eras []rollup.Era) (*FourthDownReport, error) {
	rep := &FourthDownReport{Team: team, Zones: make([]stats.Rate, len(Zones))}
	for _, era := range eras {
		e := FourthDownEra{Era: era, Zones: make([]stats.Rate, len(Zones))}
		_, err := eachSeason(src, era.Years, func(year int, plays []pbp.Play) {
			y, ok := FourthDownSeason(plays, team, year)
			if !ok {
				slog.Warn("no fourth-down attempts", "season", year, "team", team)
				return
			}
			e.Years = append(e.Years, *y)
			e.Team = e.Team.Add(y.Team)
			e.League = e.League.Add(y.League)
			for i := range y.Zones {
				e.Zones[i] = e.Zones[i].Add(y.Zones[i])
			}
		})
		if err != nil && !errors.Is(err, ErrNoData) {
			return nil, err
		}
		if len(e.Years) == 0 {
			continue
		}
		for i := range e.Zones {
			rep.Zones[i] = rep.Zones[i].Add(e.Zones[i])
		}
		rep.Eras = append(rep.Eras, e)
	}
	if len(rep.Eras) == 0 {
		return nil, ErrNoData
	}
	return rep, nil
}

func (r *FourthDownReport) span() string {
	first := r.Eras[0].Era.Years
	last := r.Eras[len(r.Eras)-1].Era.Years
	return fmt.Sprintf("%d-%d", first[0], last[len(last)-1])
}

func (r *FourthDownReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	for _, e := range r.Eras {
		p.Banner(e.Era.Label())
		for _, y := range e.Years {
			p.Printf("  %d  %s: %s  League: %s\n", y.Year, r.Team, report.RateLine(y.Team), report.RateLine(y.League))
		}
		p.Printf("\n%s SUMMARY:\n", e.Era.Label())
		p.Printf("  %s: %s\n", r.Team, report.RateLine(e.Team))
		p.Printf("  League: %s\n", report.RateLine(e.League))
		p.Printf("  Difference: %s%%\n", report.Signed(e.Team.Pct()-e.League.Pct(), 1))
	}

	p.Banner("CONVERSION RATES BY ERA")
	for _, e := range r.Eras {
		p.Printf("%s: %.1f%% (%d/%d conversions)\n", yearsLabel(e.Era.Years), e.Team.Pct(), e.Team.Num, e.Team.Den)
	}

	p.Banner(fmt.Sprintf("FIELD POSITION ANALYSIS (%s)", r.span()))
	for i, z := range Zones {
		p.Printf("%s: %d attempts, %.1f%% conversion\n", z.Label, r.Zones[i].Den, r.Zones[i].Pct())
	}

	p.Banner("FIELD POSITION BREAKDOWN BY ERA")
	for _, e := range r.Eras {
		p.Printf("\n%s:\n", e.Era.Label())
		for i, z := range Zones {
			p.Printf("  %s: %d attempts, %.1f%% conversion\n", z.Label, e.Zones[i].Den, e.Zones[i].Pct())
		}
	}

	p.Banner("YEAR-BY-YEAR BREAKDOWN")
	for _, e := range r.Eras {
		p.Printf("\n%s:\n", e.Era.Label())
		for _, y := range e.Years {
			p.Printf("  %d: %.1f%% (League: %.1f%%, Diff: %s%%)\n",
				y.Year, y.Team.Pct(), y.League.Pct(), report.Signed(y.Team.Pct()-y.League.Pct(), 1))
		}
	}
	return p.Err()
}

func (r *FourthDownReport) Records() []summary.Record {
	var out []summary.Record
	add := func(scope string, team, league stats.Rate, zones []stats.Rate) {
		out = append(out,
			summary.Rate(r.Name(), r.Team, scope, "conversion_rate", team),
			summary.Rate(r.Name(), rollup.LeagueKey, scope, "conversion_rate", league),
		)
		for i, z := range Zones {
			out = append(out, summary.Rate(r.Name(), r.Team, scope, z.Name+"_conversion_rate", zones[i]))
		}
	}
	for _, e := range r.Eras {
		for _, y := range e.Years {
			add(summary.Season(y.Year), y.Team, y.League, y.Zones)
		}
		add(e.Era.Label(), e.Team, e.League, e.Zones)
	}
	return out
}
