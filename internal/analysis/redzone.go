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

// MinRedZoneDrives is how many red-zone trips a team needs to be ranked.
const MinRedZoneDrives = 50

// Points a red-zone touchdown is worth over a field goal.
const tdOverFG = 4

type RedZoneReport struct {
	Team     string
	From, To int
	Seasons  int
	TD       *rollup.Table
	FG       *rollup.Table
}

func (r *RedZoneReport) Name() string { return "red_zone" }

func RedZoneRate(src pbp.Loader, team string, from, to int) (*RedZoneReport, error) {
	rep := &RedZoneReport{Team: team, From: from, To: to, TD: rollup.NewTable(RedZoneTD), FG: rollup.NewTable(RedZoneFG)}
	loaded, err := eachSeason(src, span(from, to), func(_ int, plays []pbp.Play) {
		rep.TD.Merge(rollup.Compute(RedZoneTD, plays))
		rep.FG.Merge(rollup.Compute(RedZoneFG, plays))
	})
	if err != nil {
		return nil, err
	}
	rep.Seasons = len(loaded)
	return rep, nil
}

func (r *RedZoneReport) TeamRate() stats.Rate   { return r.TD.Get(r.Team).Rate() }
func (r *RedZoneReport) LeagueRate() stats.Rate { return r.TD.TotalExcept(r.Team).Rate() }
func (r *RedZoneReport) FGDrives() int          { return r.FG.Get(r.Team).Hits }

func (r *RedZoneReport) Rank() (rank, size int) {
	rank, size, _ = r.TD.Rank(r.Team, MinRedZoneDrives)
	return rank, size
}

// ExtraFieldGoals is the per-season count of red-zone trips that fell short
// of a touchdown beyond what the league rate predicts.
func (r *RedZoneReport) ExtraFieldGoals() float64 {
	drives := float64(r.TeamRate().Den)
	expected := drives * r.LeagueRate().Frac()
	return stats.Ratio(drives-expected, float64(r.Seasons))
}

func (r *RedZoneReport) PointsLost() float64 { return r.ExtraFieldGoals() * tdOverFG }

func (r *RedZoneReport) scope() string { return fmt.Sprintf("%d-%d", r.From, r.To) }

func (r *RedZoneReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	team, league := r.TeamRate(), r.LeagueRate()
	rank, size := r.Rank()

	p.Banner(fmt.Sprintf("RED ZONE TOUCHDOWN RATE ANALYSIS (%s)", r.scope()))
	p.Printf("\n%s TD rate: %.2f%%\n", r.Team, team.Pct())
	p.Printf("League average: %.2f%%\n", league.Pct())
	p.Printf("League rank: %s (teams with %d+ drives)\n", report.RankOf(rank, size), MinRedZoneDrives)
	p.Printf("\n%s total RZ drives: %d\n", r.Team, team.Den)
	p.Printf("%s TD drives: %d\n", r.Team, team.Num)
	p.Printf("%s FG drives: %d\n", r.Team, r.FGDrives())
	p.Printf("\nAdditional FGs per season (vs expected): %.1f\n", r.ExtraFieldGoals())
	p.Printf("Point differential per year: %.1f points\n", r.PointsLost())
	return p.Err()
}

func (r *RedZoneReport) Records() []summary.Record {
	rank, size := r.Rank()
	return []summary.Record{
		summary.Rate(r.Name(), r.Team, r.scope(), "td_rate", r.TeamRate()).WithRank(rank, size),
		summary.Rate(r.Name(), rollup.LeagueKey, r.scope(), "td_rate_excl_"+r.Team, r.LeagueRate()),
		summary.Rate(r.Name(), r.Team, r.scope(), "fg_rate", r.FG.Get(r.Team).Rate()),
		summary.Value(r.Name(), r.Team, r.scope(), "extra_fgs_per_season", r.ExtraFieldGoals()),
		summary.Value(r.Name(), r.Team, r.scope(), "points_lost_per_season", r.PointsLost()),
	}
}
