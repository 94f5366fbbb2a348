package chart

import (
	"fmt"

	"github.com/tyler180/nfl-pbp-reports/internal/analysis"
)

// ForReport draws the charts a report supports into dir and returns the
// files written. Reports without a chart return nothing.
func ForReport(rep analysis.Report, dir, format string) ([]string, error) {
	switch r := rep.(type) {
	case *analysis.FourthDownReport:
		return one(FourthDownEras(r, dir, format))
	case *analysis.WPAPhaseReport:
		return one(WPAPhases(r, dir, format))
	case *analysis.ExplosiveReport:
		return one(ExplosiveTrend(r, dir, format))
	case *analysis.DefenseReport:
		return one(DefenseTrend(r, dir, format))
	case *analysis.EPAScatterReport:
		return one(EPAScatter(r, dir, format))
	}
	return nil, nil
}

func one(path string, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// FourthDownEras pairs team and league conversion rate per era.
func FourthDownEras(r *analysis.FourthDownReport, dir, format string) (string, error) {
	var bars []Bar
	for _, e := range r.Eras {
		bars = append(bars,
			Bar{Label: e.Era.Name + " " + r.Team, Value: e.Team.Pct()},
			Bar{Label: e.Era.Name + " NFL", Value: e.League.Pct(), League: true},
		)
	}
	path := Path(dir, format, "fourth_down", r.Team)
	return path, Bars(path, format, fmt.Sprintf("%s fourth-down conversion rate by era", r.Team), "Conversion %", bars)
}

// WPAPhases shows each phase's total win probability added.
func WPAPhases(r *analysis.WPAPhaseReport, dir, format string) (string, error) {
	bars := []Bar{
		{Label: "Offense", Value: r.Total.Offense},
		{Label: "Defense", Value: r.Total.Defense},
		{Label: "Special teams", Value: r.Total.SpecialTeams},
	}
	path := Path(dir, format, "wpa_phase", r.Team)
	return path, Bars(path, format, fmt.Sprintf("%s win probability added by phase", r.Team), "WPA", bars)
}

func ExplosiveTrend(r *analysis.ExplosiveReport, dir, format string) (string, error) {
	s := Series{Name: r.Team + " explosive plays"}
	for _, y := range r.Years {
		s.Years = append(s.Years, y.Year)
		s.Values = append(s.Values, float64(y.Explosive))
	}
	path := Path(dir, format, "explosive", r.Team)
	return path, Lines(path, format, fmt.Sprintf("%s explosive plays (20+ yards)", r.Team), "Plays", []Series{s})
}

func DefenseTrend(r *analysis.DefenseReport, dir, format string) (string, error) {
	team := Series{Name: r.Team}
	league := Series{Name: "League average"}
	for _, y := range r.Years {
		team.Years = append(team.Years, y.Year)
		team.Values = append(team.Values, y.EPAPerPlay.Value)
		league.Years = append(league.Years, y.Year)
		league.Values = append(league.Values, y.EPAPerPlay.League)
	}
	path := Path(dir, format, "defense_epa", r.Team)
	return path, Lines(path, format, fmt.Sprintf("%s defensive EPA per play allowed", r.Team), "EPA/play", []Series{team, league})
}

func EPAScatter(r *analysis.EPAScatterReport, dir, format string) (string, error) {
	pts := make([]Point, len(r.Points))
	for i, p := range r.Points {
		pts[i] = Point{Label: fmt.Sprintf("%s %02d", p.Team, p.Season%100), X: p.Regular, Y: p.Playoffs}
	}
	path := Path(dir, format, "epa_scatter")
	return path, Scatter(path, "Offensive EPA/play: regular season vs playoffs", "Regular season", "Playoffs", pts)
}
