package analysis

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/rollup"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
)

// final is the last play of a game, carrying both score columns.
func final(id, home, away string, hs, as float64) pbp.Play {
	return play(func(p *pbp.Play) {
		p.GameID, p.HomeTeam, p.AwayTeam = id, home, away
		p.PosTeam, p.DefTeam = home, away
		p.TotalHomeScore, p.TotalAwayScore = hs, as
		p.HomeScore, p.AwayScore = hs, as
	})
}

func TestOneScore(t *testing.T) {
	plays := []pbp.Play{
		final("g1", "BAL", "PIT", 20, 17),
		final("g2", "CLE", "BAL", 24, 21),
		final("g3", "BAL", "CIN", 10, 30),
		final("g4", "PIT", "CLE", 14, 10),
		final("g5", "CIN", "PIT", 35, 0),
	}
	rep, err := OneScore(seasons{2023: plays}, "BAL", 2023, 2023, 2023)
	require.NoError(t, err)
	require.Equal(t, 1, rep.Wins)
	require.Equal(t, 1, rep.Losses)
	require.Equal(t, 3, rep.Games)
	require.Equal(t, stats.Rate{Num: 1, Den: 2}, rep.League)
	require.InDelta(t, 1.0, rep.ExpectedWins(), 1e-9)
	require.InDelta(t, 0.0, rep.WinsLost(), 1e-9)
	require.ElementsMatch(t, []int{3, 20}, rep.RecentLossMargins)
	require.InDelta(t, 11.5, rep.AvgRecentLossMargin(), 1e-9)
	require.InDelta(t, 200.0/3, rep.OneScoreShare(), 1e-9)
}

func TestOneScoreLeagueDefaultsToEven(t *testing.T) {
	plays := []pbp.Play{
		final("g1", "BAL", "PIT", 20, 17),
		final("g2", "CLE", "BAL", 24, 21),
		final("g3", "BAL", "CIN", 23, 20),
		final("g4", "PIT", "CLE", 35, 10),
	}
	rep, err := OneScore(seasons{2023: plays}, "BAL", 2023, 2023, 2023)
	require.NoError(t, err)
	require.Zero(t, rep.League.Den)
	require.InDelta(t, 0.5, rep.LeagueFrac(), 1e-9)
	require.InDelta(t, 1.5, rep.ExpectedWins(), 1e-9)
	require.InDelta(t, -0.5, rep.WinsLost(), 1e-9)

	recs := rep.Records()
	require.Equal(t, rollup.LeagueKey, recs[1].Subject)
	require.InDelta(t, 50.0, recs[1].Value, 1e-9)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteText(&buf))
	require.Contains(t, buf.String(), "League average: ~50.0%")
}

func TestDominanceSeason(t *testing.T) {
	plays := []pbp.Play{
		final("g1", "BAL", "PIT", 30, 10),
		final("g2", "CLE", "BAL", 17, 24),
		final("g3", "PIT", "CLE", 21, 14),
	}
	y, ok := DominanceSeason(plays, "BAL", 2023)
	require.True(t, ok)
	require.Equal(t, 2, y.Wins)
	require.Equal(t, 54, y.PointsFor)
	require.Equal(t, 27, y.PointsAgainst)
	require.Equal(t, 1, y.DiffRank)
	require.Equal(t, 3, y.Teams)

	pf, pa := math.Pow(54, 2.37), math.Pow(27, 2.37)
	require.InDelta(t, pf/(pf+pa)*2, y.ExpectedWins(), 1e-9)
	require.InDelta(t, 2-y.ExpectedWins(), y.Luck(), 1e-9)

	_, ok = DominanceSeason(plays, "KC", 2023)
	require.False(t, ok)
}

func TestWPAPhaseSeason(t *testing.T) {
	wp := func(off, def string, wpa float64, st bool) pbp.Play {
		return play(func(p *pbp.Play) { p.PosTeam, p.DefTeam, p.WPA, p.SpecialTeams = off, def, wpa, st })
	}
	plays := []pbp.Play{
		wp("BAL", "PIT", 0.10, false),
		wp("BAL", "PIT", 0.05, true),
		wp("PIT", "BAL", -0.20, false),
		wp("PIT", "BAL", 0.03, true),
		wp("PIT", "CLE", 0.50, false),
		play(func(p *pbp.Play) { p.PosTeam, p.DefTeam = "BAL", "PIT" }), // no WPA
	}
	ph := WPAPhaseSeason(plays, "BAL", 2023)
	require.InDelta(t, 0.10, ph.Offense, 1e-9)
	require.InDelta(t, 0.20, ph.Defense, 1e-9)
	require.InDelta(t, 0.02, ph.SpecialTeams, 1e-9)
	require.InDelta(t, 0.32, ph.Total(), 1e-9)
}

func TestExplosiveSeason(t *testing.T) {
	plays := []pbp.Play{
		play(func(p *pbp.Play) { p.PosTeam, p.PassAttempt, p.YardsGained = "BAL", true, 25 }),
		play(func(p *pbp.Play) { p.PosTeam, p.RushAttempt, p.YardsGained = "BAL", true, 40 }),
		play(func(p *pbp.Play) { p.PosTeam, p.RushAttempt, p.YardsGained = "BAL", true, 5 }),
		play(func(p *pbp.Play) {
			p.PosTeam, p.PassAttempt, p.CompletePass, p.YardsGained = "BAL", true, true, 15
			p.YardsAfterCatch, p.ReceivingYards = 6, 15
		}),
		play(func(p *pbp.Play) { p.PosTeam, p.RushAttempt, p.YardsGained = "PIT", true, 60 }),
	}
	y := ExplosiveSeason(plays, "BAL", 2020)
	require.Equal(t, 4, y.Plays)
	require.Equal(t, 2, y.Explosive)
	require.Equal(t, 1, y.Pass)
	require.Equal(t, 1, y.Rush)
	require.InDelta(t, 32.5, y.AvgExplosiveYards(), 1e-9)
	require.InDelta(t, 65.0/85*100, y.ExplosiveShare(), 1e-9)
	require.InDelta(t, 2.0/16, y.PerGame(), 1e-9)
	require.InDelta(t, 40.0, y.YACShare(), 1e-9)
}

func TestDefenseSeason(t *testing.T) {
	d := func(off, def string, yds, e float64) pbp.Play {
		return play(func(p *pbp.Play) {
			p.GameID, p.HomeTeam, p.AwayTeam = "g1", "BAL", "PIT"
			p.PosTeam, p.DefTeam, p.PlayType, p.YardsGained, p.EPA = off, def, "run", yds, e
			p.TotalHomeScore, p.TotalAwayScore = 0, 0
		})
	}
	plays := []pbp.Play{
		d("PIT", "BAL", 5, 0.1),
		d("PIT", "BAL", 15, 0.3),
		d("BAL", "PIT", 10, 0.5),
		final("g1", "BAL", "PIT", 20, 10),
	}
	plays[3].PlayType = "no_play"

	y, ok := DefenseSeason(plays, "BAL", 2023)
	require.True(t, ok)
	require.Equal(t, 1, y.Games)
	require.InDelta(t, 10.0, y.PointsPerGame.Value, 1e-9)
	require.Equal(t, 1, y.PointsPerGame.Rank)
	require.InDelta(t, 15.0, y.PointsPerGame.League, 1e-9)
	require.InDelta(t, 20.0, y.YardsPerGame.Value, 1e-9)
	require.InDelta(t, 10.0, y.YardsPerPlay, 1e-9)
	require.InDelta(t, 0.2, y.EPAPerPlay.Value, 1e-9)
	require.Equal(t, 1, y.EPAPerPlay.Rank)
	require.Equal(t, 2, y.EPAPerPlay.Teams)

	rep, err := DefenseEPAByEra(seasons{2023: plays}, "BAL", []rollup.Era{{Name: "Now", Years: []int{2023}}})
	require.NoError(t, err)
	require.Len(t, rep.Eras, 1)
	require.InDelta(t, 10.0, rep.Eras[0].PointsPerGame, 1e-9)
}

func TestPenalties(t *testing.T) {
	flag := func(id, home, away, team string) pbp.Play {
		return play(func(p *pbp.Play) {
			p.GameID, p.HomeTeam, p.AwayTeam = id, home, away
			p.Penalty, p.PenaltyTeam = team != "", team
		})
	}
	plays := []pbp.Play{
		flag("g1", "BAL", "PIT", "BAL"),
		flag("g1", "BAL", "PIT", "BAL"),
		flag("g1", "BAL", "PIT", "PIT"),
		flag("g2", "CLE", "BAL", "BAL"),
		flag("g2", "CLE", "BAL", ""),
		flag("g3", "PIT", "CLE", "PIT"),
		flag("g3", "PIT", "CLE", "PIT"),
		flag("g3", "PIT", "CLE", "CLE"),
	}
	rep, err := Penalties(seasons{2023: plays}, "BAL", 2023, 2023)
	require.NoError(t, err)
	me := rep.Subject()
	require.Equal(t, 3, me.Penalties)
	require.Equal(t, 2, me.Games)
	require.InDelta(t, 1.5, me.PerGame(), 1e-9)
	require.InDelta(t, 1.0, rep.League, 1e-9)
	require.InDelta(t, 0.5, rep.Difference(), 1e-9)
	require.Equal(t, 2, rep.Rank)
	require.Equal(t, 3, rep.Teams)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteText(&buf))
	require.Contains(t, buf.String(), "2nd of 3")
}

func TestEPAScatterSeason(t *testing.T) {
	e := func(team, st string, v float64) pbp.Play {
		return play(func(p *pbp.Play) { p.PosTeam, p.SeasonType, p.EPA = team, st, v })
	}
	plays := []pbp.Play{
		e("BAL", "REG", 0.1), e("BAL", "REG", 0.3), e("BAL", "POST", 0.5),
		e("PIT", "REG", 0.2),
		e("KC", "POST", 0.4),
	}
	pts := EPAScatterSeason(plays, 2023)
	require.Len(t, pts, 1)
	require.Equal(t, "BAL", pts[0].Team)
	require.InDelta(t, 0.2, pts[0].Regular, 1e-9)
	require.InDelta(t, 0.3, pts[0].Delta(), 1e-9)

	_, err := EPAScatter(seasons{2023: plays[3:4]}, []int{2023})
	require.ErrorIs(t, err, ErrNoData)
}

func TestStatLeaderboard(t *testing.T) {
	plays := []pbp.Play{
		fourth("BAL", 40, true), fourth("BAL", 40, false),
		fourth("PIT", 40, true),
		fourth("CLE", 40, false),
	}
	def, ok := Lookup("fourth_down_conversion_rate")
	require.True(t, ok)
	_, ok = Lookup("nope")
	require.False(t, ok)

	rep, err := Stat(seasons{2023: plays}, def, "BAL", []int{2023}, 1)
	require.NoError(t, err)
	require.Equal(t, 2, rep.Rank)
	require.Equal(t, 3, rep.Teams)
	require.Len(t, rep.Records(), 3)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteText(&buf))
	require.Contains(t, buf.String(), "1/2 (50.0%)")
}
