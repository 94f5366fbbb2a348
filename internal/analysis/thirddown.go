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

const (
	gamesPerSeason   = 17
	otherTeams       = 31
	winsPerFailDrive = 0.05
)

// ThirdDownDefenseYear is the conversion rate a defense allowed in one season.
type ThirdDownDefenseYear struct {
	Year  int
	Rate  stats.Rate
	Rank  int
	Teams int
}

type ThirdDownReport struct {
	Team     string
	From, To int
	Seasons  int
	Offense  *rollup.Table
	Defense  []ThirdDownDefenseYear
}

func (r *ThirdDownReport) Name() string { return "third_down" }

func ThirdDown(src pbp.Loader, team string, from, to int) (*ThirdDownReport, error) {
	rep := &ThirdDownReport{Team: team, From: from, To: to, Offense: rollup.NewTable(ThirdDownRate)}
	loaded, err := eachSeason(src, span(from, to), func(year int, plays []pbp.Play) {
		rep.Offense.Merge(rollup.Compute(ThirdDownRate, plays))

		def := rollup.Compute(ThirdDownAllowed, plays)
		if !def.Has(team) {
			return
		}
		rank, size, _ := def.Rank(team, 1)
		rep.Defense = append(rep.Defense, ThirdDownDefenseYear{Year: year, Rate: def.Get(team).Rate(), Rank: rank, Teams: size})
	})
	if err != nil {
		return nil, err
	}
	rep.Seasons = len(loaded)
	return rep, nil
}

func (r *ThirdDownReport) TeamRate() stats.Rate { return r.Offense.Get(r.Team).Rate() }

// LeagueRate pools every other team.
func (r *ThirdDownReport) LeagueRate() stats.Rate { return r.Offense.TotalExcept(r.Team).Rate() }

func (r *ThirdDownReport) Rank() (rank, size int) {
	rank, size, _ = r.Offense.Rank(r.Team, 1)
	return rank, size
}

// ExtraFailedDrives estimates how many more third downs per season the
// team failed than an average team would have.
func (r *ThirdDownReport) ExtraFailedDrives() float64 {
	totalGames := float64(r.Seasons * gamesPerSeason)
	if totalGames == 0 {
		return 0
	}
	team, league := r.TeamRate(), r.LeagueRate()
	teamFailed := float64(team.Den) / totalGames * (1 - team.Frac())
	leagueFailed := float64(league.Den) / (totalGames * otherTeams) * (1 - league.Frac())
	return (teamFailed - leagueFailed) * gamesPerSeason
}

func (r *ThirdDownReport) WinsLost() float64 { return r.ExtraFailedDrives() * winsPerFailDrive }

func (r *ThirdDownReport) scope() string { return fmt.Sprintf("%d-%d", r.From, r.To) }

func (r *ThirdDownReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	team, league := r.TeamRate(), r.LeagueRate()
	rank, size := r.Rank()

	p.Banner(fmt.Sprintf("THIRD DOWN EFFICIENCY ANALYSIS (%s)", r.scope()))
	p.Printf("\n%s conversion rate: %.2f%%\n", r.Team, team.Pct())
	p.Printf("League average: %.2f%%\n", league.Pct())
	p.Printf("League rank: %s\n", report.RankOf(rank, size))
	p.Printf("\n%s attempts: %d\n", r.Team, team.Den)
	p.Printf("%s converted: %d\n", r.Team, team.Num)
	p.Printf("\nAdditional failed drives per season: %.1f\n", r.ExtraFailedDrives())
	p.Printf("Estimated wins lost per season: %.2f\n", r.WinsLost())

	if len(r.Defense) > 0 {
		p.Section("Third-down defense (conversion rate allowed, regular season)")
		var rows [][]string
		for _, d := range r.Defense {
			rows = append(rows, []string{fmt.Sprint(d.Year), report.RateLine(d.Rate), report.RankOf(d.Rank, d.Teams)})
		}
		p.Table([]string{"Year", "Allowed", "Rank"}, rows)
	}
	return p.Err()
}

func (r *ThirdDownReport) Records() []summary.Record {
	rank, size := r.Rank()
	out := []summary.Record{
		summary.Rate(r.Name(), r.Team, r.scope(), "conversion_rate", r.TeamRate()).WithRank(rank, size),
		summary.Rate(r.Name(), rollup.LeagueKey, r.scope(), "conversion_rate_excl_"+r.Team, r.LeagueRate()),
		summary.Value(r.Name(), r.Team, r.scope(), "extra_failed_drives_per_season", r.ExtraFailedDrives()),
		summary.Value(r.Name(), r.Team, r.scope(), "wins_lost_per_season", r.WinsLost()),
	}
	for _, d := range r.Defense {
		out = append(out, summary.Rate(r.Name(), r.Team, summary.Season(d.Year), "conversion_rate_allowed", d.Rate).WithRank(d.Rank, d.Teams))
	}
	return out
}
