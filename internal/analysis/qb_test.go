package analysis

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
)

func metricNamed(t *testing.T, ms []QBMetric, name string) QBMetric {
	t.Helper()
	for _, m := range ms {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("no metric %q", name)
	return QBMetric{}
}

func pass(qb string, mut func(*pbp.Play)) pbp.Play {
	return play(func(p *pbp.Play) {
		p.PosTeam, p.DefTeam, p.PasserName = "BAL", "PIT", qb
		p.PassAttempt, p.QBDropback = true, true
		mut(p)
	})
}

func TestPassing(t *testing.T) {
	comp := func(td bool) pbp.Play {
		return pass("A.Aaa", func(p *pbp.Play) {
			p.CompletePass, p.PassingYards, p.Success, p.QBEPA, p.CPOE = true, 10, true, 0.5, 5
			p.PassTouchdown = td
		})
	}
	plays := []pbp.Play{
		comp(true), comp(false), comp(false),
		pass("A.Aaa", func(p *pbp.Play) { p.IncompletePass, p.QBEPA, p.CPOE = true, -0.5, -10 }),
		pass("A.Aaa", func(p *pbp.Play) { p.IncompletePass, p.QBSpike, p.QBDropback = true, true, false }),
		pass("A.Aaa", func(p *pbp.Play) { p.PassAttempt, p.Sack, p.QBEPA = false, true, -1 }),
		pass("B.Bbb", func(p *pbp.Play) { p.CompletePass, p.PassingYards = true, 5 }),
		pass("B.Bbb", func(p *pbp.Play) { p.IncompletePass = true }),
		pass("C.Ccc", func(p *pbp.Play) { p.CompletePass, p.PassingYards = true, 50 }),
	}
	rep, err := Passing(seasons{2023: plays}, "A.Aaa", []int{2023}, 2)
	require.NoError(t, err)

	l := rep.Line
	require.Equal(t, 4, l.Attempts(), "spike excluded")
	require.Equal(t, 1, l.Sacks)
	require.Equal(t, 5, l.Dropbacks)
	require.InDelta(t, 30.0, l.Yards, 1e-9)
	require.InDelta(t, 1.0, l.TDINT(), 1e-9, "no interceptions: TD count")
	require.InDelta(t, stats.PasserRating(3, 4, 30, 1, 0), l.Rating(), 1e-9)
	require.InDelta(t, 0.0, l.EPAPerDropback(), 1e-9)
	require.InDelta(t, 60.0, l.SuccessRate(), 1e-9)
	require.InDelta(t, 1.25, l.CPOE(), 1e-9)

	require.Equal(t, 2, rep.Qualified)
	cp := metricNamed(t, rep.Metrics, "completion_pct")
	require.InDelta(t, 75.0, cp.Value, 1e-9)
	require.InDelta(t, 62.5, cp.League, 1e-9)
	require.Equal(t, 1, cp.Rank)
	require.Equal(t, 2, cp.Pool)
	require.InDelta(t, 5.0, metricNamed(t, rep.Metrics, "yards_per_attempt").League, 1e-9)

	// below the floor: reported but not ranked
	rep, err = Passing(seasons{2023: plays}, "C.Ccc", []int{2023}, 2)
	require.NoError(t, err)
	require.Zero(t, metricNamed(t, rep.Metrics, "completion_pct").Rank)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteText(&buf))
	require.Contains(t, buf.String(), "unranked")
}

func TestEstimateTimeToThrow(t *testing.T) {
	cases := []struct {
		air, want float64
	}{
		{3, 2.3},
		{5, 2.3},
		{10, 2.45},
		{15, 2.6},
		{25, 2.8},
	}
	for _, tc := range cases {
		require.InDelta(t, tc.want, EstimateTimeToThrow(tc.air), 1e-9, "air yards %v", tc.air)
	}
}

func TestPressure(t *testing.T) {
	a := func(game string, week int, mut func(*pbp.Play)) pbp.Play {
		return pass("A.Aaa", func(p *pbp.Play) {
			p.GameID, p.Week = game, week
			mut(p)
		})
	}
	plays := []pbp.Play{
		a("g1", 1, func(p *pbp.Play) { p.QBHit, p.CompletePass, p.EPA, p.Success, p.AirYards = true, true, 0.2, true, 10 }),
		a("g1", 1, func(p *pbp.Play) { p.QBHit, p.IncompletePass, p.Interception, p.EPA, p.AirYards = true, true, true, -2, 20 }),
		a("g1", 1, func(p *pbp.Play) { p.CompletePass, p.EPA, p.AirYards = true, 0.5, 0 }),
		a("g1", 1, func(p *pbp.Play) { p.PassAttempt, p.Sack, p.QBHit, p.EPA = false, true, true, -1 }),
		a("g1", 1, func(p *pbp.Play) {
			p.PassAttempt, p.PasserName, p.RusherName = false, "", "A.Aaa"
			p.QBScramble, p.RushAttempt, p.EPA = true, true, 0.3
		}),
		a("g2", 2, func(p *pbp.Play) { p.DefTeam, p.CompletePass, p.EPA, p.AirYards = "CLE", true, 1.0, 10 }),
		pass("B.Bbb", func(p *pbp.Play) { p.IncompletePass = true }),
		pass("B.Bbb", func(p *pbp.Play) { p.PassAttempt, p.Sack = false, true }),
	}
	rep, err := Pressure(seasons{2023: plays}, "A.Aaa", "BAL", []int{2023}, 1)
	require.NoError(t, err)

	l := rep.Line
	require.Equal(t, 6, l.Dropbacks)
	require.Equal(t, 3, l.Pressured)
	require.Equal(t, 1, l.Scrambles)
	require.InDelta(t, 50.0, l.CompPctUnderPressure(), 1e-9)
	require.InDelta(t, 100.0/3, l.TurnoverRate(), 1e-9)
	require.InDelta(t, -2.8/3, l.EPAUnderPressure(), 1e-9)
	require.InDelta(t, 100.0/6, l.SackRate(), 1e-9)
	require.InDelta(t, 75.0, l.CompPct(), 1e-9)
	require.InDelta(t, 10.0, l.AvgAirYards(), 1e-9)
	require.InDelta(t, 2.45, l.TimeToThrow(), 1e-9)

	sr := metricNamed(t, rep.Metrics, "sack_rate")
	require.Equal(t, 1, sr.Rank, "lower sack rate ranks first")
	require.Equal(t, 2, sr.Pool)

	require.Len(t, rep.Worst, 2)
	require.Equal(t, "g1", rep.Worst[0].GameID)
	require.Equal(t, "PIT", rep.Worst[0].Opponent)
	require.Equal(t, 1, rep.Worst[0].Sacks)
	require.Equal(t, 1, rep.Worst[0].Turnovers)
	require.InDelta(t, -2.0, rep.Worst[0].EPA, 1e-9)
}

func TestTwoMinute(t *testing.T) {
	tm := func(game string, drive int, secs, score, post float64, mut func(*pbp.Play)) pbp.Play {
		return pass("A.Aaa", func(p *pbp.Play) {
			p.GameID, p.Drive, p.HalfSecondsRemaining = game, drive, secs
			p.PosTeamScore, p.PosTeamScorePost = score, post
			if mut != nil {
				mut(p)
			}
		})
	}
	plays := []pbp.Play{
		tm("g1", 5, 100, 7, 7, func(p *pbp.Play) { p.CompletePass, p.Success = true, true }),
		tm("g1", 5, 80, 7, 7, nil),
		tm("g1", 5, 40, 7, 14, func(p *pbp.Play) { p.CompletePass, p.Touchdown, p.Success = true, true, true }),
		tm("g1", 6, 110, 14, 14, nil),
		tm("g2", 5, 90, 0, 3, nil),
		tm("g1", 4, 300, 0, 7, nil),
		tm("g2", 7, 30, 3, 10, func(p *pbp.Play) { p.PasserName = "B.Bbb" }),
	}
	rep, err := TwoMinute(seasons{2023: plays}, "A.Aaa", "BAL", []int{2023}, 1)
	require.NoError(t, err)

	l := rep.Line
	require.Equal(t, 5, l.Plays)
	require.Equal(t, 3, l.Drives, "drive numbers repeat across games")
	require.Equal(t, 2, l.ScoringDrives)
	require.Equal(t, 10, l.Points)
	require.Equal(t, 2, l.Games)
	require.InDelta(t, 5.0, l.PointsPerGame(), 1e-9)
	require.InDelta(t, 40.0, l.SuccessRate(), 1e-9)
	require.InDelta(t, 40.0, l.CompPct(), 1e-9)
	require.Equal(t, 1, l.TDs)

	// five plays is under the league floor
	require.Zero(t, rep.Pool)
	require.Zero(t, metricNamed(t, rep.Metrics, "points_per_game").Rank)

	_, err = TwoMinute(seasons{2023: plays}, "Z.Zzz", "BAL", []int{2023}, 1)
	require.ErrorIs(t, err, ErrNoData)
}

func TestTwoMinuteRanksRequestedTeam(t *testing.T) {
	var plays []pbp.Play
	add := func(qb, team string, n, successes int) {
		for i := 0; i < n; i++ {
			ok := i < successes
			plays = append(plays, pass(qb, func(p *pbp.Play) {
				p.PosTeam = team
				p.GameID = qb + "-" + team
				p.Drive, p.HalfSecondsRemaining = 1, 60
				p.PosTeamScore, p.PosTeamScorePost = 0, 0
				p.Success = ok
			}))
		}
	}
	// A.Aaa threw most of his passes for NYG and all of them succeeded.
	add("A.Aaa", "BAL", 12, 0)
	add("A.Aaa", "NYG", 30, 30)
	add("B.Bbb", "KC", 40, 20)

	rep, err := TwoMinute(seasons{2023: plays}, "A.Aaa", "BAL", []int{2023}, 10)
	require.NoError(t, err)
	require.Equal(t, 12, rep.Line.Plays)

	m := metricNamed(t, rep.Metrics, "success_rate")
	require.InDelta(t, 0.0, m.Value, 1e-9)
	require.InDelta(t, 25.0, m.League, 1e-9)
	require.Equal(t, 2, m.Rank)
	require.Equal(t, 2, m.Pool)
}
