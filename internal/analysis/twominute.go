package analysis

import (
	"fmt"
	"io"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

const (
	// TwoMinuteSeconds is the end-of-half window.
	TwoMinuteSeconds = 120
	// MinTwoMinutePlays is the floor for a QB to join the league comparison.
	MinTwoMinutePlays = 10
)

// TwoMinuteDrill matches plays in the last two minutes of either half.
var TwoMinuteDrill pbp.Predicate = func(p *pbp.Play) bool {
	return p.HalfSecondsRemaining > 0 && p.HalfSecondsRemaining <= TwoMinuteSeconds
}

// TwoMinuteLine is one QB's end-of-half output for one team.
type TwoMinuteLine struct {
	QB            string
	Team          string
	Plays         int
	Successes     int
	Attempts      int
	Completions   int
	TDs           int
	INTs          int
	Drives        int
	ScoringDrives int
	Points        int
	Games         int
	epaSum        float64
	epaN          int
}

func (l *TwoMinuteLine) ScoringRate() float64 {
	return stats.Percent(float64(l.ScoringDrives), float64(l.Drives))
}
func (l *TwoMinuteLine) PointsPerGame() float64 { return stats.PerGame(float64(l.Points), l.Games) }
func (l *TwoMinuteLine) SuccessRate() float64 {
	return stats.Percent(float64(l.Successes), float64(l.Plays))
}
func (l *TwoMinuteLine) EPAPerPlay() float64 { return stats.Ratio(l.epaSum, float64(l.epaN)) }
func (l *TwoMinuteLine) CompPct() float64 {
	return stats.Percent(float64(l.Completions), float64(l.Attempts))
}

func (l *TwoMinuteLine) values() map[string]float64 {
	return map[string]float64{
		"drives_with_points_pct": l.ScoringRate(),
		"points_per_game":        l.PointsPerGame(),
		"success_rate":           l.SuccessRate(),
	}
}

type drivePoints struct {
	first, last float64
}

// addSeason folds one season of plays where l.QB passed or ran for l.Team.
// Drives are keyed by game and drive number.
func (l *TwoMinuteLine) addSeason(plays []pbp.Play) {
	type key struct {
		game  string
		drive int
	}
	drives := map[key]*drivePoints{}
	var order []key
	games := map[string]struct{}{}
	for i := range plays {
		p := &plays[i]
		if !TwoMinuteDrill(p) || p.PosTeam != l.Team || (p.PasserName != l.QB && p.RusherName != l.QB) {
			continue
		}
		l.Plays++
		games[p.GameID] = struct{}{}
		if p.Success {
			l.Successes++
		}
		if p.PassAttempt {
			l.Attempts++
		}
		if p.CompletePass {
			l.Completions++
		}
		if p.Touchdown {
			l.TDs++
		}
		if p.Interception {
			l.INTs++
		}
		if p.EPA == p.EPA {
			l.epaSum += p.EPA
			l.epaN++
		}
		k := key{p.GameID, p.Drive}
		d, ok := drives[k]
		if !ok {
			d = &drivePoints{first: p.PosTeamScore}
			drives[k] = d
			order = append(order, k)
		}
		d.last = p.PosTeamScorePost
	}
	l.Games += len(games)
	l.Drives += len(order)
	for _, k := range order {
		d := drives[k]
		if pts := zeroNaN(d.last) - zeroNaN(d.first); pts > 0 {
			l.ScoringDrives++
			l.Points += int(pts)
		}
	}
}

type TwoMinuteReport struct {
	QB      string
	Team    string
	Years   []int
	Line    TwoMinuteLine
	Pool    int
	Metrics []QBMetric
}

func (r *TwoMinuteReport) Name() string { return "two_minute" }

// TwoMinute reports qb's two-minute drill for team against every QB with
// at least minAttempts pass attempts. Other QBs are measured at their most
// frequent team; qb is always measured at team.
func TwoMinute(src pbp.Loader, qb, team string, years []int, minAttempts int) (*TwoMinuteReport, error) {
	if minAttempts <= 0 {
		minAttempts = MinQBAttempts
	}
	me := &TwoMinuteLine{QB: qb, Team: team}
	attempts := map[string]int{}
	teams := map[string]map[string]int{}
	seasons := map[int][]pbp.Play{}

	loaded, err := eachSeason(src, years, func(year int, plays []pbp.Play) {
		me.addSeason(plays)
		for i := range plays {
			p := &plays[i]
			if !p.PassAttempt || p.PasserName == "" {
				continue
			}
			attempts[p.PasserName]++
			if teams[p.PasserName] == nil {
				teams[p.PasserName] = map[string]int{}
			}
			teams[p.PasserName][p.PosTeam]++
		}
		seasons[year] = plays
	})
	if err != nil {
		return nil, err
	}
	if me.Plays == 0 {
		return nil, ErrNoData
	}

	pool := map[string]map[string]float64{}
	for name, n := range attempts {
		if n < minAttempts {
			continue
		}
		l := me
		if name != qb {
			l = &TwoMinuteLine{QB: name, Team: modalTeam(teams[name])}
			for _, y := range loaded {
				l.addSeason(seasons[y])
			}
		}
		if l.Plays >= MinTwoMinutePlays {
			pool[name] = l.values()
		}
	}

	rep := &TwoMinuteReport{QB: qb, Team: team, Years: loaded, Line: *me, Pool: len(pool)}
	v := me.values()
	rep.Metrics = []QBMetric{
		{Name: "drives_with_points_pct", Label: "Drives ending in points %", Format: "%.1f"},
		{Name: "points_per_game", Label: "Points per game"},
		{Name: "success_rate", Label: "Success rate %", Format: "%.1f"},
	}
	for i := range rep.Metrics {
		rep.Metrics[i].Value = v[rep.Metrics[i].Name]
	}
	rankMetrics(rep.Metrics, qb, pool)
	return rep, nil
}

func (r *TwoMinuteReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	l := &r.Line
	p.Banner(fmt.Sprintf("%s TWO-MINUTE DRILL, %s (%s)", r.QB, r.Team, yearsLabel(r.Years)))
	p.Printf("Plays: %d over %d games\n", l.Plays, l.Games)
	p.Printf("Drives: %d, %d ending in points (%s)\n", l.Drives, l.ScoringDrives, report.Pct(l.ScoringRate()))
	p.Printf("Points: %d (%.2f per game)\n", l.Points, l.PointsPerGame())
	p.Printf("Success rate: %s  EPA/play: %s\n", report.Pct(l.SuccessRate()), report.Signed(l.EPAPerPlay(), 3))
	p.Printf("Completions: %d/%d (%s)  TD: %d  INT: %d\n", l.Completions, l.Attempts, report.Pct(l.CompPct()), l.TDs, l.INTs)
	p.Section(fmt.Sprintf("Against %d QBs with %d+ two-minute plays", r.Pool, MinTwoMinutePlays))
	p.Table([]string{"Metric", r.QB, "League avg", "Rank"}, qbMetricRows(r.Metrics))
	return p.Err()
}

func (r *TwoMinuteReport) Records() []summary.Record {
	scope := yearsLabel(r.Years)
	l := &r.Line
	out := []summary.Record{
		summary.Rate(r.Name(), r.QB, scope, "scoring_drives", stats.Rate{Num: l.ScoringDrives, Den: l.Drives}),
		summary.Rate(r.Name(), r.QB, scope, "completions", stats.Rate{Num: l.Completions, Den: l.Attempts}),
		summary.Value(r.Name(), r.QB, scope, "epa_per_play", l.EPAPerPlay()),
		summary.Value(r.Name(), r.QB, scope, "touchdowns", float64(l.TDs)),
		summary.Value(r.Name(), r.QB, scope, "interceptions", float64(l.INTs)),
	}
	return append(out, qbMetricRecords(r.Name(), r.QB, scope, r.Metrics)...)
}
