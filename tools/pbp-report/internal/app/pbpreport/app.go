// Package pbpreport is the pbp-report command line: one subcommand per
// report plus the data housekeeping commands.
package pbpreport

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/tyler180/nfl-pbp-reports/internal/config"
	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/rollup"
)

const runtimeKey = "runtime"

// runtime is the per-invocation state built by the Before hook.
type runtime struct {
	cfg   *config.Config
	out   io.Writer
	src   pbp.Loader
	now   func() time.Time
	newID func() string
	sinks sinkFactory
}

func rt(c *cli.Context) *runtime { return c.App.Metadata[runtimeKey].(*runtime) }

// New builds the CLI. Report text goes to stdout; logs go to stderr.
func New(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "pbp-report",
		Usage:     "situational team and quarterback reports from nflverse play-by-play",
		Writer:    stdout,
		ErrWriter: stderr,
		Metadata:  map[string]any{},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "config.yaml", Usage: "YAML config file (optional)"},
			&cli.StringFlag{Name: "data-dir", Usage: "directory of play_by_play_{year}.csv files"},
			&cli.StringFlag{Name: "pattern", Usage: "season file name pattern with one %d"},
			&cli.StringFlag{Name: "out-dir", Usage: "charts and exports directory"},
			&cli.BoolFlag{Name: "charts", Usage: "render charts for reports that have them"},
			&cli.StringFlag{Name: "export", Usage: "comma list of csv, xlsx, parquet"},
			&cli.StringFlag{Name: "publish", Usage: "comma list of sqlite, dynamodb, s3, redis"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		Before: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel()})))
			c.App.Metadata[runtimeKey] = &runtime{
				cfg:   cfg,
				out:   stdout,
				src:   pbp.NewCachedSource(pbp.Source{Dir: cfg.Data.Dir, Pattern: cfg.Data.Pattern}, cfg.Data.CacheDir),
				now:   time.Now,
				newID: func() string { return uuid.NewString() },
				sinks: defaultSinks,
			}
			return nil
		},
		Commands: commands(),
	}
}

// loadConfig layers flags over the file and environment.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if v := c.String("data-dir"); v != "" {
		cfg.Data.Dir = v
	}
	if v := c.String("pattern"); v != "" {
		cfg.Data.Pattern = v
	}
	if v := c.String("out-dir"); v != "" {
		cfg.Output.Dir = v
	}
	if c.IsSet("charts") {
		cfg.Output.Charts = c.Bool("charts")
	}
	if c.IsSet("export") {
		cfg.Output.Export = splitList(c.String("export"))
	}
	if c.IsSet("publish") {
		cfg.Publish.Sinks = splitList(c.String("publish"))
	}
	if v := c.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	return cfg, cfg.Validate()
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Common per-command flags. Unset values fall back to config defaults.
var (
	teamFlag     = &cli.StringFlag{Name: "team", Aliases: []string{"t"}, Usage: "team abbreviation (default from config)"}
	qbFlag       = &cli.StringFlag{Name: "qb", Usage: "passer name as nflverse writes it, e.g. C.Williams"}
	qbTeamFlag   = &cli.StringFlag{Name: "qb-team", Usage: "the quarterback's team"}
	fromFlag     = &cli.IntFlag{Name: "from", Usage: "first season"}
	toFlag       = &cli.IntFlag{Name: "to", Usage: "last season"}
	yearsFlag    = &cli.StringFlag{Name: "years", Usage: "seasons, e.g. 2019-2024 or 2012,2014"}
	erasFlag     = &cli.StringSliceFlag{Name: "era", Usage: "era as Name=YEARS; repeatable"}
	minAttFlag   = &cli.IntFlag{Name: "min-attempts", Usage: "pass attempts to qualify"}
	rangeFlags   = []cli.Flag{teamFlag, fromFlag, toFlag}
	yearsFlags   = []cli.Flag{teamFlag, fromFlag, toFlag, yearsFlag}
	qbYearsFlags = []cli.Flag{qbFlag, qbTeamFlag, fromFlag, toFlag, yearsFlag, minAttFlag}
)

func (r *runtime) team(c *cli.Context) string {
	if v := c.String("team"); v != "" {
		return strings.ToUpper(v)
	}
	return r.cfg.Defaults.Team
}

func (r *runtime) qb(c *cli.Context) string {
	if v := c.String("qb"); v != "" {
		return v
	}
	return r.cfg.Defaults.QB
}

func (r *runtime) qbTeam(c *cli.Context) string {
	if v := c.String("qb-team"); v != "" {
		return strings.ToUpper(v)
	}
	return r.cfg.Defaults.QBTeam
}

func (r *runtime) minAttempts(c *cli.Context) int {
	if c.IsSet("min-attempts") {
		return c.Int("min-attempts")
	}
	return r.cfg.Defaults.MinAttempts
}

func (r *runtime) span(c *cli.Context) (int, int, error) {
	from, to := r.cfg.Defaults.From, r.cfg.Defaults.To
	if c.IsSet("from") {
		from = c.Int("from")
	}
	if c.IsSet("to") {
		to = c.Int("to")
	}
	if from > to {
		return 0, 0, fmt.Errorf("--from %d is after --to %d", from, to)
	}
	return from, to, nil
}

func (r *runtime) years(c *cli.Context) ([]int, error) {
	if v := c.String("years"); v != "" {
		return rollup.ParseYears(v)
	}
	from, to, err := r.span(c)
	if err != nil {
		return nil, err
	}
	return rollup.Span(from, to), nil
}

func (r *runtime) eras(c *cli.Context) ([]rollup.Era, error) {
	specs := c.StringSlice("era")
	if len(specs) == 0 {
		return r.cfg.Eras, nil
	}
	var out []rollup.Era
	var errs []error
	for _, s := range specs {
		e, err := rollup.ParseEra(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, e)
	}
	return out, errors.Join(errs...)
}
