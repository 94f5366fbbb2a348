package analysis

import (
	"fmt"
	"io"
	"strings"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/rollup"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// ChallengeLine counts replay reviews. Reversed reviews are the successes.
type ChallengeLine struct {
	Reviews stats.Rate
	Upheld  int
}

func (l *ChallengeLine) add(p *pbp.Play) {
	res := strings.ToLower(p.ReplayResult)
	l.Reviews.Den++
	if strings.Contains(res, "reversed") {
		l.Reviews.Num++
	}
	if strings.Contains(res, "upheld") {
		l.Upheld++
	}
}

type ChallengeReport struct {
	Team     string
	From, To int
	Own      ChallengeLine // games the team played
	League   ChallengeLine // every other game
}

func (r *ChallengeReport) Name() string { return "challenges" }

// Challenges counts replay reviews in games the team played against those
// in every other game. Reviews are not attributed to the challenging side.
func Challenges(src pbp.Loader, team string, from, to int) (*ChallengeReport, error) {
	rep := &ChallengeReport{Team: team, From: from, To: to}
	_, err := eachSeason(src, span(from, to), func(_ int, plays []pbp.Play) {
		for i := range plays {
			p := &plays[i]
			if !p.Replay {
				continue
			}
			if p.Involves(team) {
				rep.Own.add(p)
			} else {
				rep.League.add(p)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *ChallengeReport) WriteText(w io.Writer) error {
	p := report.NewPrinter(w)
	me := r.Own
	p.Banner(fmt.Sprintf("CHALLENGE SUCCESS RATE ANALYSIS (%d-%d)", r.From, r.To))
	p.Printf("\n%s challenges: %d\n", r.Team, me.Reviews.Den)
	p.Printf("%s successful (reversed): %d\n", r.Team, me.Reviews.Num)
	p.Printf("%s failed (upheld): %d\n", r.Team, me.Upheld)
	p.Printf("%s success rate: %.2f%%\n", r.Team, me.Reviews.Pct())
	p.Printf("\nLeague average success rate: %.2f%%\n", r.League.Reviews.Pct())
	p.Printf("\nLeague total challenges: %d\n", r.League.Reviews.Den)
	p.Printf("League successful (reversed): %d\n", r.League.Reviews.Num)
	return p.Err()
}

func (r *ChallengeReport) Records() []summary.Record {
	scope := fmt.Sprintf("%d-%d", r.From, r.To)
	return []summary.Record{
		summary.Rate(r.Name(), r.Team, scope, "challenge_success_rate", r.Own.Reviews),
		summary.Value(r.Name(), r.Team, scope, "challenges_upheld", float64(r.Own.Upheld)),
		summary.Rate(r.Name(), rollup.LeagueKey, scope, "challenge_success_rate_excl_"+r.Team, r.League.Reviews),
	}
}
