package analysis

import (
	"fmt"
	"io"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/rollup"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// ExplosiveYards is the gain that makes a play explosive.
const ExplosiveYards = 20

type ExplosiveYear struct {
	Year           int
	Plays          int // pass or rush attempts
	Explosive      int
	Pass           int
	Rush           int
	ExplosiveYards float64
	TotalYards     float64

	Completions    int // with YAC recorded
	YAC            float64
	ReceivingYards float64
}

func (y ExplosiveYear) AvgExplosiveYards() float64 {
	return stats.Ratio(y.ExplosiveYards, float64(y.Explosive))
}

func (y ExplosiveYear) ExplosiveShare() float64 { return stats.Percent(y.ExplosiveYards, y.TotalYards) }

func (y ExplosiveYear) PerGame() float64 {
	return stats.PerGame(float64(y.Explosive), stats.SeasonGames(y.Year))
}

func (y ExplosiveYear) AvgYAC() float64   { return stats.Ratio(y.YAC, float64(y.Completions)) }
func (y ExplosiveYear) YACShare() float64 { return stats.Percent(y.YAC, y.ReceivingYards) }

type ExplosiveEra struct {
	Era         rollup.Era
	AvgPlays    float64 // explosive plays per season
	AvgYAC      float64 // mean of seasonal YAC per completion
	SeasonCount int
}

type ExplosiveReport struct {
	Team  string
	Years []ExplosiveYear
	Eras  []ExplosiveEra
}

func (r *ExplosiveReport) Name() string { return "explosive" }

// ExplosiveSeason counts team's regular-season explosive plays and YAC.
func ExplosiveSeason(plays []pbp.Play, team string, year int) ExplosiveYear {
	y := ExplosiveYear{Year: year}
	offense := pbp.And(pbp.RegularSeason, pbp.Offense(team))
	for i := range plays {
		p := &plays[i]
		if !offense(p) {
			continue
		}
		if p.PassAttempt || p.RushAttempt {
			y.Plays++
			y.TotalYards += zeroNaN(p.YardsGained)
			if p.YardsGained >= ExplosiveYards {
				y.Explosive++
				y.ExplosiveYards += p.YardsGained
				if p.PassAttempt {
					y.Pass++
				}
				if p.RushAttempt {
					y.Rush++
				}
			}
		}
		if p.CompletePass && p.YardsAfterCatch == p.YardsAfterCatch {
			y.Completions++
			y.YAC += p.YardsAfterCatch
			y.ReceivingYards += zeroNaN(p.ReceivingYards)
		}
	}
	return y
}

func Explosive(src pbp.Loader, team string, years []int, eras []rollup.Era) (*ExplosiveReport, error) {
	rep := &ExplosiveReport{Team: team}
	_, err := eachSeason(src, years, func(year int, plays []pbp.Play) {
		rep.Years = append(rep.Years, ExplosiveSeason(plays, team, year))
	})
	if err != nil {
		return nil, err
	}
	for _, era := range eras {
		e := ExplosiveEra{Era: era}
		var counts, yac []float64
		for _, y := range rep.Years {
			if !era.Contains(y.Year) {
				continue
			}
			counts = append(counts, float64(y.Explosive))
			if y.Completions > 0 {
				yac = append(yac, y.AvgYAC())
			}
		}
		if len(counts) == 0 {
			continue
		}
		e.SeasonCount, e.AvgPlays, e.AvgYAC = len(counts), stats.Mean(counts), stats.Mean(yac)
		rep.Eras = append(rep.Eras, e)
	}
	return rep, nil
}

func (r *ExplosiveReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	p.Banner(fmt.Sprintf("EXPLOSIVE PLAYS (%d+ YARDS): %s", ExplosiveYards, r.Team))
	var rows [][]string
	for _, y := range r.Years {
		rows = append(rows, []string{
			fmt.Sprint(y.Year), fmt.Sprint(y.Explosive), fmt.Sprint(y.Pass), fmt.Sprint(y.Rush),
			fmt.Sprintf("%.1f", y.AvgExplosiveYards()), fmt.Sprintf("%.0f", y.ExplosiveYards),
			report.Pct(y.ExplosiveShare()), fmt.Sprintf("%.1f", y.PerGame()),
		})
	}
	p.Table([]string{"Year", "Plays", "Pass", "Rush", "Avg", "Yards", "Share", "Per game"}, rows)

	p.Banner("YARDS AFTER CATCH (YAC)")
	rows = rows[:0]
	for _, y := range r.Years {
		if y.Completions == 0 {
			continue
		}
		rows = append(rows, []string{
			fmt.Sprint(y.Year), fmt.Sprint(y.Completions), fmt.Sprintf("%.0f", y.YAC),
			fmt.Sprintf("%.2f", y.AvgYAC()), report.Pct(y.YACShare()),
		})
	}
	p.Table([]string{"Year", "Completions", "YAC", "YAC/comp", "Share of rec yds"}, rows)

	if len(r.Eras) > 0 {
		p.Banner("EXPLOSIVE PLAY COMPARISON")
		for _, e := range r.Eras {
			p.Printf("%s average: %.1f explosive plays per season, %.2f YAC per completion\n",
				e.Era.Label(), e.AvgPlays, e.AvgYAC)
		}
		if len(r.Eras) > 1 {
			first, last := r.Eras[0], r.Eras[len(r.Eras)-1]
			diff := last.AvgPlays - first.AvgPlays
			p.Printf("Change from %s to %s: %s plays (%s%%)\n", first.Era.Name, last.Era.Name,
				report.Signed(diff, 1), report.Signed(stats.Percent(diff, first.AvgPlays), 1))
		}
	}
	return p.Err()
}

func (r *ExplosiveReport) Records() []summary.Record {
	var out []summary.Record
	for _, y := range r.Years {
		s := summary.Season(y.Year)
		out = append(out,
			summary.Rate(r.Name(), r.Team, s, "explosive_play_rate", stats.Rate{Num: y.Explosive, Den: y.Plays}),
			summary.Value(r.Name(), r.Team, s, "explosive_pass", float64(y.Pass)),
			summary.Value(r.Name(), r.Team, s, "explosive_rush", float64(y.Rush)),
			summary.Value(r.Name(), r.Team, s, "explosive_yards_share", y.ExplosiveShare()),
			summary.Value(r.Name(), r.Team, s, "explosive_per_game", y.PerGame()),
			summary.Value(r.Name(), r.Team, s, "yac_per_completion", y.AvgYAC()),
		)
	}
	for _, e := range r.Eras {
		out = append(out, summary.Value(r.Name(), r.Team, e.Era.Label(), "explosive_per_season", e.AvgPlays))
	}
	return out
}
