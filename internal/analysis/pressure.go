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

// PressureLine accumulates one passer's dropbacks. A dropback with a QB
// hit counts as pressured.
type PressureLine struct {
	Passer      string
	Dropbacks   int
	Attempts    int
	Completions int
	Sacks       int
	Scrambles   int

	Pressured      int
	PressAttempts  int
	PressComplete  int
	PressTurnovers int
	PressSuccesses int
	pressEPA       float64
	pressEPAN      int
	airYards       float64
	airYardsN      int
}

func (l *PressureLine) add(p *pbp.Play) {
	l.Dropbacks++
	if p.PassAttempt {
		l.Attempts++
	}
	if p.CompletePass {
		l.Completions++
	}
	if p.Sack {
		l.Sacks++
	}
	if p.QBScramble {
		l.Scrambles++
	}
	if p.AirYards == p.AirYards {
		l.airYards += p.AirYards
		l.airYardsN++
	}
	if !p.QBHit {
		return
	}
	l.Pressured++
	if p.PassAttempt {
		l.PressAttempts++
	}
	if p.CompletePass {
		l.PressComplete++
	}
	if p.Interception {
		l.PressTurnovers++
	}
	if p.FumbleLost {
		l.PressTurnovers++
	}
	if p.Success {
		l.PressSuccesses++
	}
	if p.EPA == p.EPA {
		l.pressEPA += p.EPA
		l.pressEPAN++
	}
}

func (l *PressureLine) PressureRate() float64 {
	return stats.Percent(float64(l.Pressured), float64(l.Dropbacks))
}
func (l *PressureLine) CompPctUnderPressure() float64 {
	return stats.Percent(float64(l.PressComplete), float64(l.PressAttempts))
}
func (l *PressureLine) CompPct() float64 {
	return stats.Percent(float64(l.Completions), float64(l.Attempts))
}
func (l *PressureLine) SackRate() float64 {
	return stats.Percent(float64(l.Sacks), float64(l.Dropbacks))
}
func (l *PressureLine) TurnoverRate() float64 {
	return stats.Percent(float64(l.PressTurnovers), float64(l.Pressured))
}
func (l *PressureLine) EPAUnderPressure() float64 {
	return stats.Ratio(l.pressEPA, float64(l.pressEPAN))
}
func (l *PressureLine) SuccessUnderPressure() float64 {
	return stats.Percent(float64(l.PressSuccesses), float64(l.Pressured))
}
func (l *PressureLine) AvgAirYards() float64 { return stats.Ratio(l.airYards, float64(l.airYardsN)) }

// TimeToThrow estimates seconds from snap to throw from average depth of
// target. Play-by-play carries no timing, so this is a stand-in for
// tracking data.
func (l *PressureLine) TimeToThrow() float64 {
	return EstimateTimeToThrow(l.AvgAirYards())
}

func EstimateTimeToThrow(airYards float64) float64 {
	switch {
	case airYards < 5:
		return 2.3
	case airYards < 15:
		return 2.3 + (airYards-5)*0.03
	}
	return 2.6 + (airYards-15)*0.02
}

func (l *PressureLine) values() map[string]float64 {
	return map[string]float64{
		"pressure_rate":           l.PressureRate(),
		"completion_pct_pressure": l.CompPctUnderPressure(),
		"completion_pct":          l.CompPct(),
		"sack_rate":               l.SackRate(),
		"turnover_rate_pressure":  l.TurnoverRate(),
		"epa_pressure":            l.EPAUnderPressure(),
		"success_rate_pressure":   l.SuccessUnderPressure(),
		"time_to_throw":           l.TimeToThrow(),
	}
}

// dropbackQB names the quarterback on a dropback. Scrambles carry the QB
// as rusher only.
func dropbackQB(p *pbp.Play) string {
	switch {
	case !p.QBDropback:
		return ""
	case p.PasserName != "":
		return p.PasserName
	case p.QBScramble:
		return p.RusherName
	}
	return ""
}

// BadGame is one of the QB's worst games by total EPA.
type BadGame struct {
	GameID    string
	Week      int
	Opponent  string
	EPA       float64
	Sacks     int
	Turnovers int
}

// worstGames sums EPA per game over plays where qb passed or ran for team
// and returns the n lowest.
func worstGames(plays []pbp.Play, qb, team string, n int) []BadGame {
	idx := map[string]int{}
	opp := map[string]map[string]int{}
	var games []BadGame
	for i := range plays {
		p := &plays[i]
		if p.PosTeam != team || (p.PasserName != qb && p.RusherName != qb) {
			continue
		}
		j, ok := idx[p.GameID]
		if !ok {
			j = len(games)
			idx[p.GameID] = j
			games = append(games, BadGame{GameID: p.GameID, Week: p.Week})
			opp[p.GameID] = map[string]int{}
		}
		g := &games[j]
		if p.EPA == p.EPA {
			g.EPA += p.EPA
		}
		if p.Sack {
			g.Sacks++
		}
		if p.Interception {
			g.Turnovers++
		}
		if p.FumbleLost {
			g.Turnovers++
		}
		if p.DefTeam != "" {
			opp[p.GameID][p.DefTeam]++
		}
	}
	for i := range games {
		games[i].Opponent = modalTeam(opp[games[i].GameID])
	}
	sort.SliceStable(games, func(i, j int) bool { return games[i].EPA < games[j].EPA })
	if len(games) > n {
		games = games[:n]
	}
	return games
}

type PressureReport struct {
	QB        string
	Team      string
	Years     []int
	Line      PressureLine
	Qualified int
	Metrics   []QBMetric
	Worst     []BadGame
}

func (r *PressureReport) Name() string { return "pressure" }

// Pressure profiles qb's dropbacks against passers with at least
// minAttempts pass attempts and dropbacks. team selects the QB's games for
// the worst-game list and may be empty.
func Pressure(src pbp.Loader, qb, team string, years []int, minAttempts int) (*PressureReport, error) {
	if minAttempts <= 0 {
		minAttempts = MinQBAttempts
	}
	lines := map[string]*PressureLine{}
	var worst []BadGame
	loaded, err := eachSeason(src, years, func(_ int, plays []pbp.Play) {
		for i := range plays {
			p := &plays[i]
			name := dropbackQB(p)
			if name == "" {
				continue
			}
			l, ok := lines[name]
			if !ok {
				l = &PressureLine{Passer: name}
				lines[name] = l
			}
			l.add(p)
		}
		if team != "" {
			worst = append(worst, worstGames(plays, qb, team, 3)...)
		}
	})
	if err != nil {
		return nil, err
	}
	me, ok := lines[qb]
	if !ok || me.Dropbacks == 0 {
		return nil, ErrNoData
	}
	sort.SliceStable(worst, func(i, j int) bool { return worst[i].EPA < worst[j].EPA })
	if len(worst) > 3 {
		worst = worst[:3]
	}

	pool := map[string]map[string]float64{}
	for name, l := range lines {
		if l.Attempts >= minAttempts && l.Dropbacks >= minAttempts {
			pool[name] = l.values()
		}
	}
	v := me.values()
	rep := &PressureReport{QB: qb, Team: team, Years: loaded, Line: *me, Qualified: len(pool), Worst: worst}
	rep.Metrics = []QBMetric{
		{Name: "pressure_rate", Label: "Pressure rate %", Format: "%.1f", Better: stats.LowerIsBetter},
		{Name: "completion_pct_pressure", Label: "Comp % under pressure", Format: "%.1f"},
		{Name: "completion_pct", Label: "Comp % overall", Format: "%.1f"},
		{Name: "sack_rate", Label: "Sack rate %", Format: "%.1f", Better: stats.LowerIsBetter},
		{Name: "turnover_rate_pressure", Label: "Turnover % under pressure", Format: "%.1f", Better: stats.LowerIsBetter},
		{Name: "epa_pressure", Label: "EPA/play under pressure", Format: "%+.3f"},
		{Name: "success_rate_pressure", Label: "Success % under pressure", Format: "%.1f"},
		{Name: "time_to_throw", Label: "Est. time to throw (s)", Better: stats.LowerIsBetter},
	}
	for i := range rep.Metrics {
		rep.Metrics[i].Value = v[rep.Metrics[i].Name]
	}
	rankMetrics(rep.Metrics, qb, pool)
	return rep, nil
}

func (r *PressureReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	l := &r.Line
	p.Banner(fmt.Sprintf("%s UNDER PRESSURE (%s)", r.QB, yearsLabel(r.Years)))
	p.Printf("Dropbacks: %d  Pressured: %d  Sacks: %d  Scrambles: %d\n", l.Dropbacks, l.Pressured, l.Sacks, l.Scrambles)
	p.Printf("Average air yards: %.1f\n", l.AvgAirYards())
	p.Section(fmt.Sprintf("Against %d qualifying QBs", r.Qualified))
	p.Table([]string{"Metric", r.QB, "League avg", "Rank"}, qbMetricRows(r.Metrics))

	if len(r.Worst) > 0 {
		p.Section("Worst games by total EPA")
		var rows [][]string
		for _, g := range r.Worst {
			rows = append(rows, []string{fmt.Sprint(g.Week), g.Opponent, fmt.Sprintf("%+.1f", g.EPA), fmt.Sprint(g.Sacks), fmt.Sprint(g.Turnovers)})
		}
		p.Table([]string{"Week", "Opp", "EPA", "Sacks", "Turnovers"}, rows)
	}
	return p.Err()
}

func (r *PressureReport) Records() []summary.Record {
	scope := yearsLabel(r.Years)
	l := &r.Line
	out := []summary.Record{
		summary.Rate(r.Name(), r.QB, scope, "pressured_dropbacks", stats.Rate{Num: l.Pressured, Den: l.Dropbacks}),
		summary.Value(r.Name(), r.QB, scope, "scrambles", float64(l.Scrambles)),
	}
	return append(out, qbMetricRecords(r.Name(), r.QB, scope, r.Metrics)...)
}
