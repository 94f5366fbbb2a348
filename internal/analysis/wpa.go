package analysis

import (
	"fmt"
	"io"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// WPAPhase is win probability added credited to each unit. Special-teams
// plays are removed from the offense and defense totals.
type WPAPhase struct {
	Year         int
	Offense      float64
	Defense      float64
	SpecialTeams float64
}

func (w WPAPhase) Total() float64 { return w.Offense + w.Defense + w.SpecialTeams }

func (w WPAPhase) add(o WPAPhase) WPAPhase {
	return WPAPhase{Year: w.Year, Offense: w.Offense + o.Offense, Defense: w.Defense + o.Defense, SpecialTeams: w.SpecialTeams + o.SpecialTeams}
}

type WPAPhaseReport struct {
	Team  string
	Years []WPAPhase
	Total WPAPhase
}

func (r *WPAPhaseReport) Name() string { return "wpa_phase" }

// WPAPhaseSeason splits one season's regular-season WPA for team.
func WPAPhaseSeason(plays []pbp.Play, team string, year int) WPAPhase {
	var off, def, stOff, stDef float64
	elig := pbp.And(pbp.RegularSeason, pbp.HasWPA)
	for i := range plays {
		p := &plays[i]
		if !elig(p) {
			continue
		}
		switch team {
		case p.PosTeam:
			off += p.WPA
			if p.SpecialTeams {
				stOff += p.WPA
			}
		case p.DefTeam:
			def -= p.WPA
			if p.SpecialTeams {
				stDef -= p.WPA
			}
		}
	}
	return WPAPhase{Year: year, Offense: off - stOff, Defense: def - stDef, SpecialTeams: stOff + stDef}
}

func WPAByPhase(src pbp.Loader, team string, years []int) (*WPAPhaseReport, error) {
	rep := &WPAPhaseReport{Team: team}
	_, err := eachSeason(src, years, func(year int, plays []pbp.Play) {
		y := WPAPhaseSeason(plays, team, year)
		rep.Years = append(rep.Years, y)
		rep.Total = rep.Total.add(y)
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *WPAPhaseReport) label() string {
	yrs := make([]int, len(r.Years))
	for i, y := range r.Years {
		yrs[i] = y.Year
	}
	return yearsLabel(yrs)
}

func (r *WPAPhaseReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	p.Banner(fmt.Sprintf("SUMMARY: %s WPA by Phase (%s)", r.Team, r.label()))
	for _, y := range r.Years {
		p.Printf("%d: Offense %s | Defense %s | Special Teams %s | Total %s\n", y.Year,
			report.Signed(y.Offense, 3), report.Signed(y.Defense, 3),
			report.Signed(y.SpecialTeams, 3), report.Signed(y.Total(), 3))
	}
	p.Banner(fmt.Sprintf("TOTALS (%s):", r.label()))
	p.Printf("Offense WPA:       %s\n", report.Signed(r.Total.Offense, 3))
	p.Printf("Defense WPA:       %s\n", report.Signed(r.Total.Defense, 3))
	p.Printf("Special Teams WPA: %s\n", report.Signed(r.Total.SpecialTeams, 3))
	p.Printf("Total WPA:         %s\n", report.Signed(r.Total.Total(), 3))
	return p.Err()
}

func (r *WPAPhaseReport) Records() []summary.Record {
	var out []summary.Record
	add := func(scope string, y WPAPhase) {
		out = append(out,
			summary.Value(r.Name(), r.Team, scope, "offense_wpa", y.Offense),
			summary.Value(r.Name(), r.Team, scope, "defense_wpa", y.Defense),
			summary.Value(r.Name(), r.Team, scope, "special_teams_wpa", y.SpecialTeams),
			summary.Value(r.Name(), r.Team, scope, "total_wpa", y.Total()),
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
