package pbpreport

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/urfave/cli/v2"

	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/store"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "show the latest published records for a report and subject",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "report", Required: true, Usage: "report name, e.g. third_down"},
			&cli.StringFlag{Name: "subject", Usage: "team, quarterback or compare key (default: config team)"},
			&cli.StringFlag{Name: "source", Value: "sqlite", Usage: "sqlite, dynamodb or redis"},
		},
		Action: func(c *cli.Context) error {
			r := rt(c)
			subject := c.String("subject")
			if subject == "" {
				subject = r.cfg.Defaults.Team
			}
			recs, runs, err := r.history(c.Context, c.String("source"), c.String("report"), subject)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Fprintln(r.out, NoData)
				return nil
			}
			return writeHistory(r, recs, runs)
		},
	}
}

// history reads the newest run for report/subject from source. runs is
// only known for sqlite, which keeps every run.
func (r *runtime) history(ctx context.Context, source, rep, subject string) ([]summary.Record, []string, error) {
	switch source {
	case "sqlite":
		db, err := store.OpenSQLite(r.cfg.Publish.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		defer db.Close()
		recs, err := db.Latest(ctx, rep, subject)
		if err != nil {
			return nil, nil, err
		}
		runs, err := db.Runs(ctx, rep, subject)
		return recs, runs, err
	case "dynamodb":
		ac, err := loadAWS(ctx, r.cfg)
		if err != nil {
			return nil, nil, err
		}
		recs, err := store.QueryRecords(ctx, dynamodb.NewFromConfig(ac), r.cfg.AWS.DynamoTable, rep, subject)
		return recs, nil, err
	case "redis":
		client, err := store.NewRedisClient(r.cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		defer client.Close()
		recs, err := store.NewRedisWriter(client, r.cfg.Redis.TTL).Read(ctx, rep, subject)
		return recs, nil, err
	}
	return nil, nil, fmt.Errorf("unknown history source %q", source)
}

func writeHistory(r *runtime, recs []summary.Record, runs []string) error {
	first := recs[0]
	p := report.NewPrinter(r.out)
	p.Banner(fmt.Sprintf("%s / %s (run %s)", first.Report, first.Subject, first.RunID))
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		counts := ""
		if rec.Denominator > 0 {
			counts = fmt.Sprintf("%d/%d", rec.Numerator, rec.Denominator)
		}
		rank := ""
		if rec.Rank > 0 {
			rank = report.RankOf(rec.Rank, rec.Peers)
		}
		rows = append(rows, []string{rec.Scope, rec.Metric, strconv.FormatFloat(rec.Value, 'f', 3, 64), counts, rank})
	}
	p.Table([]string{"Scope", "Metric", "Value", "Count", "Rank"}, rows)
	if len(runs) > 1 {
		p.Printf("\n%d runs stored; previous run %s\n", len(runs), runs[1])
	}
	return p.Err()
}
