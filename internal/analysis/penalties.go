package analysis

import (
	"fmt"
	"io"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// PenaltyLine is one team's penalty count over the games it played.
type PenaltyLine struct {
	Team      string
	Penalties int
	Games     int
}

func (l PenaltyLine) PerGame() float64 { return stats.PerGame(float64(l.Penalties), l.Games) }

type PenaltyReport struct {
	Team   string
	Years  []int
	Lines  map[string]*PenaltyLine
	Rank   int
	Teams  int
	League float64 // mean per-game rate of the other teams
}

func (r *PenaltyReport) Name() string { return "penalties" }

func (r *PenaltyReport) Subject() PenaltyLine {
	if l, ok := r.Lines[r.Team]; ok {
		return *l
	}
	return PenaltyLine{Team: r.Team}
}

// Difference is how many more penalties per game the team commits than
// the league average.
func (r *PenaltyReport) Difference() float64 { return r.Subject().PerGame() - r.League }

// addPenalties counts, per team, the games it appeared in and the flags
// charged to it.
func addPenalties(lines map[string]*PenaltyLine, plays []pbp.Play) {
	line := func(t string) *PenaltyLine {
		l, ok := lines[t]
		if !ok {
			l = &PenaltyLine{Team: t}
			lines[t] = l
		}
		return l
	}
	games := map[string]map[string]struct{}{}
	for i := range plays {
		p := &plays[i]
		for _, t := range []string{p.HomeTeam, p.AwayTeam} {
			if t == "" {
				continue
			}
			if games[t] == nil {
				games[t] = map[string]struct{}{}
			}
			games[t][p.GameID] = struct{}{}
		}
		if p.Penalty && p.PenaltyTeam != "" {
			line(p.PenaltyTeam).Penalties++
		}
	}
	for t, g := range games {
		line(t).Games += len(g)
	}
}

func Penalties(src pbp.Loader, team string, from, to int) (*PenaltyReport, error) {
	rep := &PenaltyReport{Team: team, Lines: map[string]*PenaltyLine{}}
	years, err := eachSeason(src, span(from, to), func(_ int, plays []pbp.Play) {
		addPenalties(rep.Lines, plays)
	})
	if err != nil {
		return nil, err
	}
	rep.Years = years
	if rep.Subject().Games == 0 {
		return nil, ErrNoData
	}

	var peers []stats.Peer
	for t, l := range rep.Lines {
		if l.Games > 0 {
			peers = append(peers, stats.Peer{Key: t, Value: l.PerGame()})
		}
	}
	rep.Rank, rep.Teams, _ = stats.Rank(peers, team, stats.LowerIsBetter)
	rep.League = stats.MeanOf(stats.Without(peers, team))
	return rep, nil
}

func (r *PenaltyReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	me := r.Subject()
	p.Banner(fmt.Sprintf("%s PENALTIES (%s)", r.Team, yearsLabel(r.Years)))
	p.Printf("%s penalties: %d in %d games\n", r.Team, me.Penalties, me.Games)
	p.Printf("%s penalties per game: %.2f\n", r.Team, me.PerGame())
	p.Printf("League average (other teams): %.2f per game\n", r.League)
	p.Printf("Difference: %s per game\n", report.Signed(r.Difference(), 2))
	p.Printf("League rank (fewest = 1st): %s\n", report.RankOf(r.Rank, r.Teams))

	p.Section("Fewest penalties per game")
	var peers []stats.Peer
	for t, l := range r.Lines {
		if l.Games > 0 {
			peers = append(peers, stats.Peer{Key: t, Value: l.PerGame()})
		}
	}
	var rows [][]string
	for i, pr := range stats.Sorted(peers, stats.LowerIsBetter) {
		l := r.Lines[pr.Key]
		rows = append(rows, []string{fmt.Sprint(i + 1), pr.Key, fmt.Sprint(l.Penalties), fmt.Sprint(l.Games), fmt.Sprintf("%.2f", pr.Value)})
	}
	p.Table([]string{"#", "Team", "Penalties", "Games", "Per game"}, rows)
	return p.Err()
}

func (r *PenaltyReport) Records() []summary.Record {
	scope := yearsLabel(r.Years)
	me := r.Subject()
	return []summary.Record{
		summary.Value(r.Name(), r.Team, scope, "penalties", float64(me.Penalties)),
		summary.Value(r.Name(), r.Team, scope, "penalties_per_game", me.PerGame()).WithRank(r.Rank, r.Teams),
		summary.Value(r.Name(), r.Team, scope, "league_penalties_per_game", r.League),
	}
}
