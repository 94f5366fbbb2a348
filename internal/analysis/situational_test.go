package analysis

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/rollup"
)

func TestChallenges(t *testing.T) {
	review := func(home, away, result string) pbp.Play {
		return play(func(p *pbp.Play) {
			p.HomeTeam, p.AwayTeam = home, away
			p.Replay, p.ReplayResult = true, result
		})
	}
	src := seasons{2023: {
		review("BAL", "PIT", "Reversed"),
		review("CLE", "BAL", "upheld"),
		review("BAL", "CIN", "stands"),
		play(func(p *pbp.Play) { p.HomeTeam, p.AwayTeam = "BAL", "PIT" }),
		review("PIT", "CLE", "REVERSED"),
		review("CIN", "CLE", "Upheld"),
	}}

	rep, err := Challenges(src, "BAL", 2023, 2023)
	require.NoError(t, err)
	require.Equal(t, 1, rep.Own.Reviews.Num)
	require.Equal(t, 3, rep.Own.Reviews.Den)
	require.Equal(t, 1, rep.Own.Upheld)
	require.Equal(t, 1, rep.League.Reviews.Num)
	require.Equal(t, 2, rep.League.Reviews.Den)

	recs := rep.Records()
	require.InDelta(t, 100.0/3, recs[0].Value, 1e-9)
	require.Equal(t, rollup.LeagueKey, recs[2].Subject)
	require.InDelta(t, 50.0, recs[2].Value, 1e-9)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteText(&buf))
	require.Contains(t, buf.String(), "BAL failed (upheld): 1")
	require.Contains(t, buf.String(), "League average success rate: 50.00%")
}

func TestGameManagementSeason(t *testing.T) {
	at := func(qtr int, secs float64, mut func(*pbp.Play)) pbp.Play {
		return play(func(p *pbp.Play) {
			p.GameID, p.HomeTeam, p.AwayTeam = "g1", "BAL", "PIT"
			p.PosTeam, p.DefTeam = "BAL", "PIT"
			p.Qtr, p.QuarterSecondsRemaining = qtr, secs
			p.HomeTimeoutsRemaining, p.AwayTimeoutsRemaining = 3, 3
			mut(p)
		})
	}
	plays := []pbp.Play{
		at(1, 300, func(p *pbp.Play) {}),
		at(1, 5, func(p *pbp.Play) { p.HomeTimeoutsRemaining = 2 }),
		at(2, 100, func(p *pbp.Play) { p.Touchdown, p.HomeTimeoutsRemaining = true, 1 }),
		at(2, 50, func(p *pbp.Play) {
			p.PosTeam, p.DefTeam, p.FieldGoalResult = "PIT", "BAL", "made"
			p.HomeTimeoutsRemaining = math.NaN()
		}),
		at(3, 400, func(p *pbp.Play) {
			p.HomeTimeoutsRemaining, p.PenaltyTeam, p.PenaltyYards = 2, "BAL", 10
		}),
		at(4, 300, func(p *pbp.Play) { p.PenaltyTeam = "BAL" }),
		at(4, 110, func(p *pbp.Play) {
			p.FieldGoalResult, p.HomeTimeoutsRemaining = "made", 1
			p.TotalHomeScore, p.TotalAwayScore = 14, 10
		}),
		at(4, 20, func(p *pbp.Play) {
			p.PosTeam, p.DefTeam, p.FieldGoalResult = "PIT", "BAL", "made"
			p.HomeTimeoutsRemaining = 0
			p.TotalHomeScore, p.TotalAwayScore = 17, 13
		}),
		at(2, 30, func(p *pbp.Play) { p.SeasonType, p.Touchdown = "POST", true }),
		play(func(p *pbp.Play) { p.GameID, p.HomeTeam, p.AwayTeam, p.PenaltyTeam = "g2", "CLE", "CIN", "CLE" }),
	}

	y, ok := GameManagementSeason(plays, "BAL", 2023)
	require.True(t, ok)
	require.Equal(t, 1, y.Games)
	require.Equal(t, [4]float64{2, 3, 2, 0}, y.Timeouts)
	require.Equal(t, 7, y.FirstHalfScored)
	require.Equal(t, 3, y.FirstHalfAllowed)
	require.Equal(t, 3, y.SecondHalfScored)
	require.Equal(t, 1, y.EndGames.Num)
	require.Equal(t, 1, y.EndGames.Den)
	require.InDelta(t, 3.0, y.EndGamePointsAllowed(), 1e-9)
	require.Equal(t, 2, y.Penalties)
	require.InDelta(t, 10.0, y.PenaltyYards, 1e-9)

	_, ok = GameManagementSeason(plays, "KC", 2023)
	require.False(t, ok)

	rep, err := GameManagement(seasons{2023: plays}, "BAL", []int{2022, 2023})
	require.NoError(t, err)
	require.InDelta(t, 2.0, rep.OddQuarterTimeouts(), 1e-9)
	require.InDelta(t, 7.0, rep.FirstHalfScoredPerGame(), 1e-9)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteText(&buf))
	require.Contains(t, buf.String(), "End of Q2: 3.00 timeouts remaining")
	require.Contains(t, buf.String(), "Win %: 100.0%")

	seen := map[string]bool{}
	for _, r := range rep.Records() {
		require.False(t, seen[r.SortKey()], "duplicate %s", r.SortKey())
		seen[r.SortKey()] = true
	}
}

func TestReturns(t *testing.T) {
	ret := func(team, playType, returner string, yards float64, td bool) pbp.Play {
		return play(func(p *pbp.Play) {
			p.PlayType, p.ReturnTeam, p.ReturnYards, p.ReturnTouchdown = playType, team, yards, td
			if playType == "punt" {
				p.PuntReturner = returner
			} else {
				p.KickoffReturner = returner
			}
		})
	}
	src := seasons{2023: {
		ret("BAL", "punt", "D.Duvernay", 15, false),
		ret("BAL", "punt", "D.Duvernay", 60, true),
		ret("BAL", "kickoff", "J.Hill", 25, false),
		ret("BAL", "kickoff", "", 0, false),
		ret("PIT", "punt", "C.Austin", 200, false),
		ret("CLE", "kickoff", "J.Ford", 20, false),
	}}

	rep, err := Returns(src, "BAL", []int{2023})
	require.NoError(t, err)
	require.Len(t, rep.Years, 1)
	y := rep.Years[0]
	require.Equal(t, ReturnUnit{Returns: 2, Yards: 75, Touchdowns: 1}, y.Line.Punt)
	require.Equal(t, ReturnUnit{Returns: 1, Yards: 25}, y.Line.Kickoff)
	require.InDelta(t, 37.5, y.Line.Punt.Average(), 1e-9)
	require.Equal(t, 2, y.Rank)
	require.Equal(t, 3, y.Teams)
	require.Len(t, rep.Records(), 4)

	_, err = Returns(src, "NYG", []int{2023})
	require.ErrorIs(t, err, ErrNoData)
}

func TestPredictability(t *testing.T) {
	calls := func(year, down, togo, runs, passes int) []pbp.Play {
		var out []pbp.Play
		for i := 0; i < runs+passes; i++ {
			kind := "pass"
			if i < runs {
				kind = "run"
			}
			out = append(out, play(func(p *pbp.Play) {
				p.Season, p.PosTeam, p.Down, p.YardsToGo, p.PlayType = year, "BAL", down, togo, kind
			}))
		}
		return out
	}
	season := func(parts ...[]pbp.Play) []pbp.Play {
		var out []pbp.Play
		for _, p := range parts {
			out = append(out, p...)
		}
		return out
	}
	src := seasons{
		2019: season(calls(2019, 1, 10, 6, 4), calls(2019, 2, 8, 2, 8), calls(2019, 3, 2, 1, 1), calls(2019, 2, 3, 5, 0)),
		2023: season(calls(2023, 1, 10, 5, 5), calls(2023, 2, 7, 5, 5), calls(2023, 3, 1, 3, 0)),
		2024: season(calls(2024, 1, 10, 3, 7), calls(2024, 2, 10, 1, 9), calls(2024, 3, 3, 0, 2)),
	}

	rep, err := Predictability(src, "BAL", 2019, []int{2023, 2024})
	require.NoError(t, err)
	require.Equal(t, 2019, rep.Base.Year)
	require.Len(t, rep.Recent, 2)
	require.InDelta(t, 60.0, rep.Base.Tendencies[0].RunPct(), 1e-9)
	require.InDelta(t, 80.0, rep.Base.Tendencies[1].PassPct(), 1e-9)
	require.InDelta(t, 40.0, rep.RecentRunPct(0), 1e-9)
	require.InDelta(t, -20.0, rep.RunChange(0), 1e-9)
	require.InDelta(t, 70.0, rep.RecentPassPct(1), 1e-9)
	require.InDelta(t, 50.0, rep.RecentRunPct(2), 1e-9)
	require.Equal(t, 2, rep.Score())

	var buf bytes.Buffer
	require.NoError(t, rep.WriteText(&buf))
	require.Contains(t, buf.String(), "Predictability indicators: 2/6")
	require.Contains(t, buf.String(), "Unpredictable")

	_, err = Predictability(src, "BAL", 2018, []int{2023})
	require.ErrorIs(t, err, ErrNoData)
	_, err = Predictability(src, "BAL", 2019, []int{2025})
	require.ErrorIs(t, err, ErrNoData)
}

func TestScheme(t *testing.T) {
	chi := func(mut func(*pbp.Play)) pbp.Play {
		return play(func(p *pbp.Play) {
			p.PosTeam, p.DefTeam = "CHI", "GB"
			mut(p)
		})
	}
	qbPass := func(mut func(*pbp.Play)) pbp.Play {
		return chi(func(p *pbp.Play) {
			p.PasserName, p.PassAttempt, p.QBDropback = "C.Williams", true, true
			mut(p)
		})
	}
	src := seasons{
		2024: {
			qbPass(func(p *pbp.Play) { p.Shotgun, p.AirYards, p.YardsToGo, p.EPA, p.QBHit = true, 3, 10, 0.5, true }),
			qbPass(func(p *pbp.Play) { p.AirYards, p.YardsToGo = 12, 5 }),
			chi(func(p *pbp.Play) { p.PasserName, p.QBDropback, p.Sack, p.Shotgun = "C.Williams", true, true, true }),
			chi(func(p *pbp.Play) { p.RusherName, p.RushAttempt, p.Shotgun = "C.Williams", true, true }),
			chi(func(p *pbp.Play) { p.RusherName, p.RushAttempt, p.NoHuddle = "D.Swift", true, true }),
			chi(func(p *pbp.Play) { p.PasserName, p.PassAttempt, p.QBDropback = "T.Bagent", true, true }),
			qbPass(func(p *pbp.Play) { p.Shotgun, p.NoHuddle, p.YardsToGo, p.EPA = true, true, 3, -1 }),
		},
		2025: {
			qbPass(func(p *pbp.Play) { p.Shotgun, p.AirYards, p.YardsToGo, p.EPA = true, 3, 10, 0.1 }),
		},
	}

	y, ok := SchemeSeason(src[2024], "C.Williams", "CHI", 2024)
	require.True(t, ok)
	require.Equal(t, 5, y.Plays)
	require.Equal(t, 3, y.Passes)
	require.InDelta(t, 30.0, y.PlayActionRate(), 1e-9)
	require.InDelta(t, 40.0, y.RPORate(), 1e-9)
	require.InDelta(t, 80.0, y.MotionRate(), 1e-9)
	require.InDelta(t, 80.0, y.ShotgunRate(), 1e-9)
	require.InDelta(t, 0.5, y.EmptyFormationEPA(), 1e-9)
	require.Equal(t, 5, y.Dropbacks)
	require.InDelta(t, 40.0, y.PressureRate(), 1e-9)
	require.InDelta(t, 60.0, y.PassBlockWinRate(), 1e-9)
	require.InDelta(t, 20.0, y.SackRate(), 1e-9)

	rep, err := Scheme(src, "C.Williams", "CHI", []int{2024, 2025})
	require.NoError(t, err)
	recs := rep.Records()
	require.Len(t, recs, 3*len(schemeMetrics))
	require.Equal(t, "2024-2025", recs[2*len(schemeMetrics)].Scope)
	require.Equal(t, "play_action_rate_change", recs[2*len(schemeMetrics)].Metric)
	require.InDelta(t, -10.0, recs[2*len(schemeMetrics)].Value, 1e-9)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteText(&buf))
	require.Contains(t, buf.String(), "Key changes (2024 to 2025)")

	_, err = Scheme(src, "J.Fields", "CHI", []int{2024})
	require.ErrorIs(t, err, ErrNoData)
}

func TestRedZoneQB(t *testing.T) {
	var plays []pbp.Play
	rz := func(qb string, n, tds, ints int) {
		for i := 0; i < n; i++ {
			td, pick := i < tds, i >= n-ints
			plays = append(plays, pass(qb, func(p *pbp.Play) {
				p.Yardline100, p.AirYards, p.EPA = 12, 5, 0.2
				p.Touchdown, p.Interception = td, pick
				p.CompletePass, p.Success = td, td
			}))
		}
	}
	rz("A.Aaa", 10, 3, 1)
	rz("B.Bbb", 10, 5, 0)
	rz("C.Ccc", 4, 3, 0)
	plays = append(plays, pass("A.Aaa", func(p *pbp.Play) { p.Yardline100 = 40 }))

	rep, err := RedZoneQB(seasons{2023: plays}, "A.Aaa", []int{2023}, 2)
	require.NoError(t, err)
	require.Equal(t, 10, rep.Line.Plays)
	require.Equal(t, 10, rep.Line.PassAttempts)

	td := metricNamed(t, rep.Metrics, "td_rate")
	require.InDelta(t, 30.0, td.Value, 1e-9)
	require.InDelta(t, 40.0, td.League, 1e-9)
	require.Equal(t, 2, td.Rank)
	require.Equal(t, 2, td.Pool)

	ints := metricNamed(t, rep.Metrics, "int_rate")
	require.InDelta(t, 10.0, ints.Value, 1e-9)
	require.Equal(t, 2, ints.Rank)
	require.InDelta(t, 5.0, metricNamed(t, rep.Metrics, "avg_depth").Value, 1e-9)

	c, err := RedZoneQB(seasons{2023: plays}, "C.Ccc", []int{2023}, 2)
	require.NoError(t, err)
	require.Zero(t, metricNamed(t, c.Metrics, "td_rate").Rank, "below the play floor")

	_, err = RedZoneQB(seasons{2023: plays}, "Z.Zzz", []int{2023}, 2)
	require.ErrorIs(t, err, ErrNoData)
}

func TestQBRuns(t *testing.T) {
	bal := func(mut func(*pbp.Play)) pbp.Play {
		return play(func(p *pbp.Play) {
			p.PosTeam, p.DefTeam, p.Week = "BAL", "PIT", 1
			mut(p)
		})
	}
	rush := func(who string, mut func(*pbp.Play)) pbp.Play {
		return bal(func(p *pbp.Play) {
			p.RushAttempt, p.RusherName = true, who
			mut(p)
		})
	}
	var plays []pbp.Play
	for i := 0; i < 10; i++ {
		plays = append(plays, bal(func(p *pbp.Play) { p.PassAttempt, p.PasserName = true, "L.Jackson" }))
	}
	plays = append(plays,
		rush("L.Jackson", func(p *pbp.Play) {
			p.RushingYards, p.YardsGained, p.EPA = 8, 8, 0.3
			p.Shotgun, p.Down, p.YardsToGo = true, 1, 10
		}),
		rush("L.Jackson", func(p *pbp.Play) {
			p.QBScramble, p.RushingYards, p.EPA, p.FirstDown = true, 12, 0.6, true
		}),
		rush("J.Dobbins", func(p *pbp.Play) {
			p.RushingYards, p.YardsGained, p.EPA = 2, 2, -0.4
			p.Shotgun, p.Down, p.YardsToGo = true, 2, 5
		}),
		rush("L.Jackson", func(p *pbp.Play) { p.Down = 3 }),
		rush("L.Jackson", func(p *pbp.Play) { p.Week, p.RushingYards, p.EPA = 12, 5, 0.1 }),
		bal(func(p *pbp.Play) {
			p.PassAttempt, p.PasserName = true, "L.Jackson"
			p.Shotgun, p.Down, p.YardsToGo, p.AirYards, p.YardsGained = true, 1, 10, 2, 3
		}),
		rush("T.Watt", func(p *pbp.Play) { p.PosTeam = "PIT" }),
	)
	src := seasons{2023: plays}

	rep, err := QBRuns(src, "BAL", []int{2023}, QBRunOptions{})
	require.NoError(t, err)
	y := rep.Years[0]
	require.Equal(t, []string{"L.Jackson"}, y.QBs)
	require.Equal(t, Carries{Attempts: 3, Yards: 13}, y.Designed)
	require.Equal(t, 3, y.ByQB["L.Jackson"].Attempts)
	require.Equal(t, 5, y.Rushing.Attempts)
	require.InDelta(t, 5.4, y.Rushing.YPC(), 1e-9)
	require.InDelta(t, 0.15, y.EPAPerRush(), 1e-9)
	require.Equal(t, 3, y.RushSuccess.Num)
	require.Equal(t, 5, y.RushSuccess.Den)
	require.Equal(t, 1, y.RPO.Num)
	require.Equal(t, 3, y.RPO.Den)

	late, err := QBRuns(src, "BAL", []int{2023}, QBRunOptions{FromWeek: 11, ToWeek: 17})
	require.NoError(t, err)
	require.Equal(t, Carries{Attempts: 1, Yards: 5}, late.Years[0].Designed)

	var buf bytes.Buffer
	require.NoError(t, late.WriteText(&buf))
	require.Contains(t, buf.String(), "WEEKS 11-17")

	named, err := QBRuns(src, "BAL", []int{2023}, QBRunOptions{QBs: []string{"J.Dobbins"}})
	require.NoError(t, err)
	require.Equal(t, Carries{Attempts: 1, Yards: 2}, named.Years[0].Designed)
}
