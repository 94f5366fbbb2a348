package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/rollup"
)

// seasons is an in-memory pbp.Loader.
type seasons map[int][]pbp.Play

func (s seasons) Season(year int) ([]pbp.Play, error) {
	plays, ok := s[year]
	if !ok {
		return nil, fmt.Errorf("%w: %d", pbp.ErrSeasonMissing, year)
	}
	return plays, nil
}

func play(mut func(*pbp.Play)) pbp.Play {
	p := pbp.NewPlay()
	p.Season = 2023
	p.SeasonType = "REG"
	mut(&p)
	return p
}

func fourth(team string, yardline float64, converted bool) pbp.Play {
	return play(func(p *pbp.Play) {
		p.PosTeam, p.Down, p.PlayType, p.Yardline100 = team, 4, "run", yardline
		p.FirstDown = converted
	})
}

func thirdDowns(team string, att, conv int) []pbp.Play {
	var out []pbp.Play
	for i := 0; i < att; i++ {
		ok := i < conv
		out = append(out, play(func(p *pbp.Play) {
			p.PosTeam, p.Down = team, 3
			if ok {
				p.ThirdDownConverted, p.ThirdDownFailed = pbp.Yes, pbp.No
			} else {
				p.ThirdDownConverted, p.ThirdDownFailed = pbp.No, pbp.Yes
			}
		}))
	}
	return out
}

func TestFourthDownSeason(t *testing.T) {
	var plays []pbp.Play
	for i := 0; i < 10; i++ {
		plays = append(plays, fourth("BAL", float64(10+i*8), i < 4))
	}
	plays = append(plays, fourth("PIT", 30, true), fourth("PIT", 30, false))
	plays = append(plays, play(func(p *pbp.Play) { p.PosTeam, p.Down, p.PlayType = "BAL", 4, "punt" }))

	y, ok := FourthDownSeason(plays, "BAL", 2023)
	require.True(t, ok)
	require.Equal(t, 10, y.Team.Den)
	require.Equal(t, 4, y.Team.Num)
	require.InDelta(t, 40.0, y.Team.Pct(), 1e-9)
	require.Equal(t, 12, y.League.Den)
	require.Equal(t, 5, y.League.Num)

	// own 58-82, opponent 26-50, red zone 10-18
	require.Len(t, y.Zones, 3)
	require.Equal(t, 4, y.Zones[0].Den)
	require.Equal(t, 4, y.Zones[1].Den)
	require.Equal(t, 2, y.Zones[2].Den)
	require.Equal(t, 2, y.Zones[2].Num)
}

func TestFourthDownSeasonNoAttempts(t *testing.T) {
	plays := []pbp.Play{fourth("PIT", 40, true)}
	y, ok := FourthDownSeason(plays, "BAL", 2023)
	require.False(t, ok)
	require.Nil(t, y)

	y, ok = FourthDownSeason(nil, "BAL", 2023)
	require.False(t, ok)
	require.Nil(t, y)
}

func TestFourthDownErasSkipMissingSeasons(t *testing.T) {
	src := seasons{
		2022: {fourth("BAL", 40, true), fourth("BAL", 40, false)},
		2023: {fourth("BAL", 10, true)},
	}
	eras := []rollup.Era{
		{Name: "Early", Years: []int{2021, 2022}},
		{Name: "Late", Years: []int{2023}},
		{Name: "Future", Years: []int{2030}},
	}
	rep, err := FourthDown(src, "BAL", eras)
	require.NoError(t, err)
	require.Len(t, rep.Eras, 2)
	require.Equal(t, 1, rep.Eras[0].Team.Num)
	require.Equal(t, 2, rep.Eras[0].Team.Den)
	require.Equal(t, 3, rep.Zones[0].Den+rep.Zones[1].Den+rep.Zones[2].Den)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteText(&buf))
	require.Contains(t, buf.String(), "Early (2021-2022)")
	require.NotEmpty(t, rep.Records())
}

func TestNoData(t *testing.T) {
	src := seasons{}
	_, err := FourthDown(src, "BAL", []rollup.Era{{Name: "X", Years: []int{2019}}})
	require.True(t, errors.Is(err, ErrNoData))

	_, err = ThirdDown(src, "BAL", 2019, 2020)
	require.ErrorIs(t, err, ErrNoData)

	_, err = Passing(src, "A.Aaa", []int{2019}, 0)
	require.ErrorIs(t, err, ErrNoData)
}

func TestThirdDownRank(t *testing.T) {
	var plays []pbp.Play
	for i, team := range []string{"A", "B", "C", "D", "E"} {
		plays = append(plays, thirdDowns(team, 20, 14-i)...)
	}
	rep, err := ThirdDown(seasons{2023: plays}, "C", 2023, 2023)
	require.NoError(t, err)

	require.InDelta(t, 60.0, rep.TeamRate().Pct(), 1e-9)
	require.Equal(t, 48, rep.LeagueRate().Num)
	require.Equal(t, 80, rep.LeagueRate().Den)
	rank, size := rep.Rank()
	require.Equal(t, 3, rank)
	require.Equal(t, 5, size)

	// 20·0.4 failures against 80/31·0.4 for an average other team
	require.InDelta(t, 8-32.0/31, rep.ExtraFailedDrives(), 1e-9)
	require.InDelta(t, rep.ExtraFailedDrives()*0.05, rep.WinsLost(), 1e-9)
}

func TestRedZoneDrives(t *testing.T) {
	rz := func(drive int, y float64, mut func(*pbp.Play)) pbp.Play {
		return play(func(p *pbp.Play) {
			p.GameID, p.Drive, p.PosTeam, p.PlayType, p.Yardline100 = "g1", drive, "BAL", "run", y
			if mut != nil {
				mut(p)
			}
		})
	}
	plays := []pbp.Play{
		rz(1, 15, nil),
		rz(1, 5, func(p *pbp.Play) { p.Touchdown = true }),
		rz(2, 10, nil),
		rz(2, 8, func(p *pbp.Play) { p.PlayType, p.FieldGoalAttempt = "field_goal", true }),
		rz(3, 35, func(p *pbp.Play) { p.Touchdown = true }),
	}
	rep, err := RedZoneRate(seasons{2023: plays}, "BAL", 2023, 2023)
	require.NoError(t, err)
	require.Equal(t, 1, rep.TeamRate().Num)
	require.Equal(t, 2, rep.TeamRate().Den)
	require.Equal(t, 1, rep.FGDrives())

	rank, _ := rep.Rank()
	require.Zero(t, rank, "two trips is below the ranking floor")
}

func TestFourthDownWPA(t *testing.T) {
	withWPA := func(p pbp.Play, wpa float64) pbp.Play {
		p.WPA = wpa
		return p
	}
	src := seasons{2023: {
		withWPA(fourth("BAL", 40, true), 0.1),
		fourth("BAL", 30, true),
		withWPA(fourth("BAL", 60, false), -0.05),
		withWPA(fourth("KC", 5, true), 0.2),
	}}

	rep, err := FourthDownWPA(src, "BAL", []int{2022, 2023})
	require.NoError(t, err)
	require.Len(t, rep.Years, 1)
	require.Equal(t, 3, rep.Total.Attempts.Den)
	require.Equal(t, 2, rep.Total.Attempts.Num)
	require.InDelta(t, 0.1, rep.Total.Conversions, 1e-9)
	require.InDelta(t, -0.05, rep.Total.Failures, 1e-9)
	require.InDelta(t, 0.05/3, rep.Total.PerAttempt(), 1e-9)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteText(&buf))
	require.Contains(t, buf.String(), "Total 4th down attempts: 3")
	require.Contains(t, buf.String(), "Positive net WPA")

	_, err = FourthDownWPA(src, "NYG", []int{2023})
	require.ErrorIs(t, err, ErrNoData)
}

func TestFourthDownCompare(t *testing.T) {
	decision := func(team, playType string, converted bool, seasonType string) pbp.Play {
		return play(func(p *pbp.Play) {
			p.PosTeam, p.Down, p.PlayType, p.SeasonType = team, 4, playType, seasonType
			if converted {
				p.FourthDownConverted, p.FourthDownFailed = pbp.Yes, pbp.No
			} else {
				p.FourthDownConverted, p.FourthDownFailed = pbp.No, pbp.Yes
			}
		})
	}
	src := seasons{2023: {
		decision("BAL", "pass", true, "REG"),
		decision("BAL", "run", true, "POST"),
		decision("BAL", "pass", false, "REG"),
		decision("BAL", "punt", false, "REG"),
		decision("NYG", "run", true, "REG"),
	}}

	rep, err := FourthDownCompare(src, []string{"BAL", "NYG"}, 2023, 2023)
	require.NoError(t, err)
	recs := rep.Records()
	require.Len(t, recs, 2)
	require.Equal(t, "BAL", recs[0].Subject)
	require.Equal(t, 2, recs[0].Numerator)
	require.Equal(t, 3, recs[0].Denominator)
	require.Equal(t, 2, recs[0].Rank)
	require.Equal(t, 1, recs[1].Rank)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteText(&buf))
	require.Contains(t, buf.String(), "FOURTH DOWN CONVERSION RATE (2023-2023)")
	require.Contains(t, buf.String(), "66.67%")
}

func TestYearsLabel(t *testing.T) {
	require.Equal(t, "", yearsLabel(nil))
	require.Equal(t, "2023", yearsLabel([]int{2023}))
	require.Equal(t, "2019-2021", yearsLabel([]int{2019, 2020, 2021}))
	require.Equal(t, "2012,2014", yearsLabel([]int{2012, 2014}))
	require.Equal(t, "2012,2013,2016", yearsLabel([]int{2012, 2013, 2016}))
}

func TestFourthDownWPATotalScopeWithGap(t *testing.T) {
	at := func(year int) pbp.Play {
		p := fourth("BAL", 40, true)
		p.Season = year
		return p
	}
	src := seasons{2012: {at(2012)}, 2014: {at(2014)}}

	rep, err := FourthDownWPA(src, "BAL", []int{2012, 2013, 2014})
	require.NoError(t, err)
	recs := rep.Records()
	require.Equal(t, "2012,2014", recs[len(recs)-1].Scope)
}
