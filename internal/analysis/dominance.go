package analysis

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// TeamSeason is a regular-season line derived from game finals.
type TeamSeason struct {
	Team               string
	Year               int
	Wins, Losses, Ties int
	PointsFor          int
	PointsAgainst      int
}

func (s TeamSeason) Games() int    { return s.Wins + s.Losses + s.Ties }
func (s TeamSeason) Diff() int     { return s.PointsFor - s.PointsAgainst }
func (s TeamSeason) PPG() float64  { return stats.PerGame(float64(s.PointsFor), s.Games()) }
func (s TeamSeason) OPPG() float64 { return stats.PerGame(float64(s.PointsAgainst), s.Games()) }

func (s TeamSeason) ExpectedWins() float64 {
	return stats.Pythagorean(float64(s.PointsFor), float64(s.PointsAgainst), s.Games(), stats.NFLPythagoreanExponent)
}

// Luck is actual minus expected wins.
func (s TeamSeason) Luck() float64 { return float64(s.Wins) - s.ExpectedWins() }

// TeamSeasons builds every team's line from a season's games.
func TeamSeasons(games []pbp.Game, year int) map[string]*TeamSeason {
	out := map[string]*TeamSeason{}
	line := func(t string) *TeamSeason {
		if s, ok := out[t]; ok {
			return s
		}
		s := &TeamSeason{Team: t, Year: year}
		out[t] = s
		return s
	}
	for _, g := range games {
		for _, t := range []string{g.Home, g.Away} {
			s := line(t)
			pf, pa := g.For(t)
			s.PointsFor += pf
			s.PointsAgainst += pa
			switch {
			case pf > pa:
				s.Wins++
			case pf < pa:
				s.Losses++
			default:
				s.Ties++
			}
		}
	}
	return out
}

type DominanceYear struct {
	TeamSeason
	DiffRank int
	Teams    int
}

type DominanceReport struct {
	Team  string
	Years []DominanceYear
}

func (r *DominanceReport) Name() string { return "dominance" }

// DominanceSeason returns false when team played no regular-season games.
func DominanceSeason(plays []pbp.Play, team string, year int) (*DominanceYear, bool) {
	lines := TeamSeasons(pbp.GamesByLastPlay(plays, pbp.RegularSeason), year)
	mine, ok := lines[team]
	if !ok {
		return nil, false
	}
	peers := make([]stats.Peer, 0, len(lines))
	for t, s := range lines {
		peers = append(peers, stats.Peer{Key: t, Value: float64(s.Diff())})
	}
	rank, size, _ := stats.Rank(peers, team, stats.HigherIsBetter)
	return &DominanceYear{TeamSeason: *mine, DiffRank: rank, Teams: size}, true
}

func Dominance(src pbp.Loader, team string, years []int) (*DominanceReport, error) {
	rep := &DominanceReport{Team: team}
	_, err := eachSeason(src, years, func(year int, plays []pbp.Play) {
		y, ok := DominanceSeason(plays, team, year)
		if !ok {
			slog.Warn("no regular-season games", "season", year, "team", team)
			return
		}
		rep.Years = append(rep.Years, *y)
	})
	if err != nil {
		return nil, err
	}
	if len(rep.Years) == 0 {
		return nil, ErrNoData
	}
	return rep, nil
}

func (r *DominanceReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	p.Banner(fmt.Sprintf("REGULAR SEASON DOMINANCE: %s", r.Team))
	var rows [][]string
	for _, y := range r.Years {
		rows = append(rows, []string{
			fmt.Sprint(y.Year), report.Record(y.Wins, y.Losses, y.Ties),
			fmt.Sprint(y.PointsFor), fmt.Sprint(y.PointsAgainst), fmt.Sprintf("%+d", y.Diff()),
			fmt.Sprintf("%.1f", y.PPG()), fmt.Sprintf("%.1f", y.OPPG()), report.RankOf(y.DiffRank, y.Teams),
		})
	}
	p.Table([]string{"Year", "Record", "PF", "PA", "Diff", "PPG", "PPG allowed", "Diff rank"}, rows)

	p.Section("Expected wins vs actual (Pythagorean, exponent 2.37)")
	for _, y := range r.Years {
		verdict := "performed exactly as expected"
		switch l := y.Luck(); {
		case l > 0:
			verdict = fmt.Sprintf("outperformed expectations by %.1f wins", l)
		case l < 0:
			verdict = fmt.Sprintf("underperformed expectations by %.1f wins", -l)
		}
		p.Printf("%d: Expected %.1f, Actual %s (%s)\n", y.Year, y.ExpectedWins(), report.Record(y.Wins, y.Losses, y.Ties), verdict)
	}
	return p.Err()
}

func (r *DominanceReport) Records() []summary.Record {
	var out []summary.Record
	for _, y := range r.Years {
		s := summary.Season(y.Year)
		out = append(out,
			summary.Rate(r.Name(), r.Team, s, "win_pct", stats.Rate{Num: y.Wins, Den: y.Games()}),
			summary.Value(r.Name(), r.Team, s, "point_diff", float64(y.Diff())).WithRank(y.DiffRank, y.Teams),
			summary.Value(r.Name(), r.Team, s, "ppg", y.PPG()),
			summary.Value(r.Name(), r.Team, s, "ppg_allowed", y.OPPG()),
			summary.Value(r.Name(), r.Team, s, "pythag_wins", y.ExpectedWins()),
			summary.Value(r.Name(), r.Team, s, "luck", y.Luck()),
		)
	}
	return out
}
