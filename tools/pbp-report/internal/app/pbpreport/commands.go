package pbpreport

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tyler180/nfl-pbp-reports/internal/analysis"
	"github.com/tyler180/nfl-pbp-reports/internal/nflverse"
	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/pfr"
	"github.com/tyler180/nfl-pbp-reports/internal/report"
)

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "fourth-down",
			Usage: "fourth-down conversion rate by era, team vs league, with field-position buckets",
			Flags: []cli.Flag{teamFlag, erasFlag},
			Action: func(c *cli.Context) error {
				r := rt(c)
				eras, err := r.eras(c)
				if err != nil {
					return err
				}
				rep, err := analysis.FourthDown(r.src, r.team(c), eras)
				return r.emit(c, rep, err)
			},
		},
		{
			Name:  "fourth-down-wpa",
			Usage: "win probability added on fourth-down attempts",
			Flags: yearsFlags,
			Action: func(c *cli.Context) error {
				r := rt(c)
				years, err := r.years(c)
				if err != nil {
					return err
				}
				rep, err := analysis.FourthDownWPA(r.src, r.team(c), years)
				return r.emit(c, rep, err)
			},
		},
		{
			Name:  "fourth-down-compare",
			Usage: "fourth-down aggression and conversion for several teams",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "teams", Value: "BAL,NYG", Usage: "comma list of teams"},
				fromFlag, toFlag,
			},
			Action: func(c *cli.Context) error {
				r := rt(c)
				from, to, err := r.span(c)
				if err != nil {
					return err
				}
				var teams []string
				for _, t := range strings.Split(c.String("teams"), ",") {
					if t = strings.TrimSpace(t); t != "" {
						teams = append(teams, strings.ToUpper(t))
					}
				}
				rep, err := analysis.FourthDownCompare(r.src, teams, from, to)
				return r.emit(c, rep, err)
			},
		},
		rangeCommand("third-down", "third-down conversion rate, league rank and drives lost", func(r *runtime, team string, from, to int) (analysis.Report, error) {
			return analysis.ThirdDown(r.src, team, from, to)
		}),
		rangeCommand("red-zone", "red-zone touchdown rate per drive", func(r *runtime, team string, from, to int) (analysis.Report, error) {
			return analysis.RedZoneRate(r.src, team, from, to)
		}),
		rangeCommand("penalties", "penalties per game against the league", func(r *runtime, team string, from, to int) (analysis.Report, error) {
			return analysis.Penalties(r.src, team, from, to)
		}),
		rangeCommand("challenges", "replay review success rate in the team's games against the league", func(r *runtime, team string, from, to int) (analysis.Report, error) {
			return analysis.Challenges(r.src, team, from, to)
		}),
		yearsCommand("game-management", "timeouts, two-minute scoring, end-game results and penalties", func(r *runtime, team string, years []int) (analysis.Report, error) {
			return analysis.GameManagement(r.src, team, years)
		}),
		yearsCommand("returns", "punt and kickoff return production ranked by return yards", func(r *runtime, team string, years []int) (analysis.Report, error) {
			return analysis.Returns(r.src, team, years)
		}),
		{
			Name:  "predictability",
			Usage: "run/pass tendencies by down, a base season against recent seasons",
			Flags: append(append([]cli.Flag{}, yearsFlags...),
				&cli.IntFlag{Name: "base", Value: 2019, Usage: "season to compare against"}),
			Action: func(c *cli.Context) error {
				r := rt(c)
				years, err := r.years(c)
				if err != nil {
					return err
				}
				base := c.Int("base")
				var recent []int
				for _, y := range years {
					if y != base {
						recent = append(recent, y)
					}
				}
				rep, err := analysis.Predictability(r.src, r.team(c), base, recent)
				return r.emit(c, rep, err)
			},
		},
		{
			Name:  "wpa-phase",
			Usage: "win probability added split into offense, defense and special teams",
			Flags: yearsFlags,
			Action: func(c *cli.Context) error {
				r := rt(c)
				years, err := r.years(c)
				if err != nil {
					return err
				}
				rep, err := analysis.WPAByPhase(r.src, r.team(c), years)
				return r.emit(c, rep, err)
			},
		},
		{
			Name:  "explosive",
			Usage: "explosive plays and yards after catch by season and era",
			Flags: append(append([]cli.Flag{}, yearsFlags...), erasFlag),
			Action: func(c *cli.Context) error {
				r := rt(c)
				years, err := r.years(c)
				if err != nil {
					return err
				}
				eras, err := r.eras(c)
				if err != nil {
					return err
				}
				rep, err := analysis.Explosive(r.src, r.team(c), years, eras)
				return r.emit(c, rep, err)
			},
		},
		{
			Name:  "one-score",
			Usage: "record in games decided by eight points or fewer",
			Flags: append(append([]cli.Flag{}, rangeFlags...),
				&cli.IntFlag{Name: "recent-from", Value: 2020, Usage: "first season of the recent losing-margin window"}),
			Action: func(c *cli.Context) error {
				r := rt(c)
				from, to, err := r.span(c)
				if err != nil {
					return err
				}
				rep, err := analysis.OneScore(r.src, r.team(c), from, to, c.Int("recent-from"))
				return r.emit(c, rep, err)
			},
		},
		{
			Name:  "dominance",
			Usage: "regular-season record, point differential and Pythagorean luck",
			Flags: yearsFlags,
			Action: func(c *cli.Context) error {
				r := rt(c)
				years, err := r.years(c)
				if err != nil {
					return err
				}
				rep, err := analysis.Dominance(r.src, r.team(c), years)
				return r.emit(c, rep, err)
			},
		},
		{
			Name:  "defense-epa",
			Usage: "defensive points, yards and EPA allowed by season and era",
			Flags: []cli.Flag{teamFlag, erasFlag},
			Action: func(c *cli.Context) error {
				r := rt(c)
				eras, err := r.eras(c)
				if err != nil {
					return err
				}
				rep, err := analysis.DefenseEPAByEra(r.src, r.team(c), eras)
				return r.emit(c, rep, err)
			},
		},
		{
			Name:  "passing",
			Usage: "quarterback passing line ranked among qualifying passers",
			Flags: qbYearsFlags,
			Action: func(c *cli.Context) error {
				r := rt(c)
				years, err := r.years(c)
				if err != nil {
					return err
				}
				rep, err := analysis.Passing(r.src, r.qb(c), years, r.minAttempts(c))
				return r.emit(c, rep, err)
			},
		},
		{
			Name:  "pressure",
			Usage: "quarterback play under pressure and worst games",
			Flags: qbYearsFlags,
			Action: func(c *cli.Context) error {
				r := rt(c)
				years, err := r.years(c)
				if err != nil {
					return err
				}
				rep, err := analysis.Pressure(r.src, r.qb(c), r.qbTeam(c), years, r.minAttempts(c))
				return r.emit(c, rep, err)
			},
		},
		{
			Name:  "two-minute",
			Usage: "quarterback two-minute drill against the league",
			Flags: qbYearsFlags,
			Action: func(c *cli.Context) error {
				r := rt(c)
				years, err := r.years(c)
				if err != nil {
					return err
				}
				rep, err := analysis.TwoMinute(r.src, r.qb(c), r.qbTeam(c), years, r.minAttempts(c))
				return r.emit(c, rep, err)
			},
		},
		{
			Name:  "scheme",
			Usage: "estimated play-action, RPO, motion and protection rates for a quarterback",
			Flags: []cli.Flag{qbFlag, qbTeamFlag, fromFlag, toFlag, yearsFlag},
			Action: func(c *cli.Context) error {
				r := rt(c)
				years, err := r.years(c)
				if err != nil {
					return err
				}
				rep, err := analysis.Scheme(r.src, r.qb(c), r.qbTeam(c), years)
				return r.emit(c, rep, err)
			},
		},
		{
			Name:  "red-zone-qb",
			Usage: "quarterback play inside the 20 ranked among qualifying passers",
			Flags: []cli.Flag{qbFlag, fromFlag, toFlag, yearsFlag, minAttFlag},
			Action: func(c *cli.Context) error {
				r := rt(c)
				years, err := r.years(c)
				if err != nil {
					return err
				}
				rep, err := analysis.RedZoneQB(r.src, r.qb(c), years, r.minAttempts(c))
				return r.emit(c, rep, err)
			},
		},
		{
			Name:  "qb-runs",
			Usage: "designed quarterback runs, RPO-style plays and team rushing",
			Flags: append(append([]cli.Flag{}, yearsFlags...),
				&cli.StringSliceFlag{Name: "qb", Usage: "quarterback to count designed runs for; repeatable (default: team passers)"},
				&cli.IntFlag{Name: "from-week", Usage: "first week"},
				&cli.IntFlag{Name: "to-week", Usage: "last week"}),
			Action: func(c *cli.Context) error {
				r := rt(c)
				years, err := r.years(c)
				if err != nil {
					return err
				}
				opts := analysis.QBRunOptions{QBs: c.StringSlice("qb"), FromWeek: c.Int("from-week"), ToWeek: c.Int("to-week")}
				if opts.ToWeek > 0 && opts.FromWeek > opts.ToWeek {
					return fmt.Errorf("--from-week %d is after --to-week %d", opts.FromWeek, opts.ToWeek)
				}
				rep, err := analysis.QBRuns(r.src, r.team(c), years, opts)
				return r.emit(c, rep, err)
			},
		},
		{
			Name:  "epa-scatter",
			Usage: "offensive EPA per play, regular season vs playoffs, for playoff teams",
			Flags: []cli.Flag{fromFlag, toFlag, yearsFlag},
			Action: func(c *cli.Context) error {
				r := rt(c)
				years, err := r.years(c)
				if err != nil {
					return err
				}
				rep, err := analysis.EPAScatter(r.src, years)
				return r.emitWithChart(c, rep, err)
			},
		},
		statCommand(),
		historyCommand(),
		cleanCommand(),
		fetchCommand(),
		standingsCommand(),
	}
}

func rangeCommand(name, usage string, run func(r *runtime, team string, from, to int) (analysis.Report, error)) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: rangeFlags,
		Action: func(c *cli.Context) error {
			r := rt(c)
			from, to, err := r.span(c)
			if err != nil {
				return err
			}
			rep, err := run(r, r.team(c), from, to)
			return r.emit(c, rep, err)
		},
	}
}

func yearsCommand(name, usage string, run func(r *runtime, team string, years []int) (analysis.Report, error)) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: yearsFlags,
		Action: func(c *cli.Context) error {
			r := rt(c)
			years, err := r.years(c)
			if err != nil {
				return err
			}
			rep, err := run(r, r.team(c), years)
			return r.emit(c, rep, err)
		},
	}
}

func statCommand() *cli.Command {
	return &cli.Command{
		Name:      "stat",
		Usage:     "league leaderboard for one catalog statistic; no argument lists them",
		ArgsUsage: "NAME",
		Flags: append(append([]cli.Flag{}, yearsFlags...),
			&cli.IntFlag{Name: "min", Value: 1, Usage: "observations a team needs to be ranked"}),
		Action: func(c *cli.Context) error {
			r := rt(c)
			name := c.Args().First()
			if name == "" {
				p := report.NewPrinter(r.out)
				rows := make([][]string, 0, len(analysis.Catalog))
				for _, d := range analysis.Catalog {
					rows = append(rows, []string{d.Name, d.Kind.String(), d.Better.String()})
				}
				p.Table([]string{"Statistic", "Kind", "Better"}, rows)
				return p.Err()
			}
			def, ok := analysis.Lookup(name)
			if !ok {
				return fmt.Errorf("unknown statistic %q", name)
			}
			years, err := r.years(c)
			if err != nil {
				return err
			}
			team := ""
			if c.IsSet("team") {
				team = r.team(c)
			}
			rep, err := analysis.Stat(r.src, def, team, years, c.Int("min"))
			return r.emit(c, rep, err)
		},
	}
}

func cleanCommand() *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "keep only one team's games in a season file",
		Flags: []cli.Flag{
			teamFlag,
			&cli.StringFlag{Name: "in", Usage: "input CSV (default: the season file in the data dir)"},
			&cli.StringFlag{Name: "out", Usage: "output CSV (default: overwrite the input)"},
			&cli.IntFlag{Name: "season", Usage: "season whose data-dir file to clean when --in is not given"},
		},
		Action: func(c *cli.Context) error {
			r := rt(c)
			in := c.String("in")
			if in == "" {
				if !c.IsSet("season") {
					return fmt.Errorf("clean needs --in or --season")
				}
				in = pbp.Source{Dir: r.cfg.Data.Dir, Pattern: r.cfg.Data.Pattern}.Path(c.Int("season"))
			}
			team := r.team(c)
			st, err := pbp.CleanFile(in, c.String("out"), team)
			if err != nil {
				return err
			}
			out := c.String("out")
			if out == "" {
				out = in
			}
			p := report.NewPrinter(r.out)
			p.Banner(fmt.Sprintf("Cleaned %s for %s", in, team))
			p.Printf("Original rows:  %d\n", st.OriginalRows)
			p.Printf("Kept rows:      %d\n", st.FilteredRows)
			p.Printf("Rows removed:   %d\n", st.RowsRemoved())
			p.Printf("Unique games:   %d (%d home, %d away)\n", st.Games, st.HomeGames, st.AwayGames)
			rows := make([][]string, 0, len(st.Opponents))
			for _, o := range st.OpponentList() {
				rows = append(rows, []string{o, strconv.Itoa(st.Opponents[o])})
			}
			p.Section("Opponents")
			p.Table([]string{"Opponent", "Games"}, rows)
			p.Printf("\nWritten to %s\n", out)
			return p.Err()
		},
	}
}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "download play-by-play season files from the nflverse pbp release",
		Flags: []cli.Flag{fromFlag, toFlag, yearsFlag},
		Action: func(c *cli.Context) error {
			r := rt(c)
			years, err := r.years(c)
			if err != nil {
				return err
			}
			client := nflverse.NewClient()
			for _, y := range years {
				path, err := client.FetchSeason(c.Context, r.cfg.Data.Dir, y)
				if err != nil {
					return fmt.Errorf("season %d: %w", y, err)
				}
				fmt.Fprintf(r.out, "%d -> %s\n", y, path)
			}
			return nil
		},
	}
}

func standingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "standings",
		Usage: "league standings from Pro-Football-Reference, checked against play-by-play finals",
		Flags: []cli.Flag{&cli.IntFlag{Name: "season", Value: 2024}},
		Action: func(c *cli.Context) error {
			r := rt(c)
			season := c.Int("season")
			rows, err := pfr.NewClient().Standings(c.Context, season)
			if err != nil {
				return err
			}
			return writeStandings(r, season, rows)
		},
	}
}

// writeStandings prints the scraped table next to the differential derived
// from the season file when one is available.
func writeStandings(r *runtime, season int, rows []pfr.Standing) error {
	var derived map[string]*analysis.TeamSeason
	if plays, err := r.src.Season(season); err == nil {
		derived = analysis.TeamSeasons(pbp.GamesByLastPlay(plays, pbp.RegularSeason), season)
	}

	p := report.NewPrinter(r.out)
	p.Banner(fmt.Sprintf("%d standings by point differential", season))
	table := make([][]string, 0, len(rows))
	mismatches := 0
	for i, s := range rows {
		check := "-"
		if ts, ok := derived[s.Team]; ok {
			check = strconv.Itoa(ts.Diff())
			if ts.Diff() != s.PointDiff() {
				check += " !"
				mismatches++
			}
		}
		table = append(table, []string{
			strconv.Itoa(i + 1), s.Team, s.Conference, s.Record(),
			strconv.Itoa(s.PointsFor), strconv.Itoa(s.PointsAgainst),
			fmt.Sprintf("%+d", s.PointDiff()), check,
		})
	}
	p.Table([]string{"#", "Team", "Conf", "W-L", "PF", "PA", "Diff", "PBP Diff"}, table)
	if derived != nil {
		p.Printf("\n%d of %d teams differ from the play-by-play finals\n", mismatches, len(rows))
	}
	return p.Err()
}
