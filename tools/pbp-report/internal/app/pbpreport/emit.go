package pbpreport

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/tyler180/nfl-pbp-reports/internal/analysis"
	"github.com/tyler180/nfl-pbp-reports/internal/chart"
	"github.com/tyler180/nfl-pbp-reports/internal/export"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// NoData is printed when none of the requested seasons had usable plays.
const NoData = "No data available"

func (r *runtime) emit(c *cli.Context, rep analysis.Report, err error) error {
	return r.finish(c, rep, err, r.cfg.Output.Charts)
}

// emitWithChart renders the report's chart even without --charts.
func (r *runtime) emitWithChart(c *cli.Context, rep analysis.Report, err error) error {
	return r.finish(c, rep, err, true)
}

// finish prints rep, then renders charts, writes exports and publishes its
// records under a fresh run id.
func (r *runtime) finish(c *cli.Context, rep analysis.Report, err error, charts bool) error {
	if errors.Is(err, analysis.ErrNoData) {
		fmt.Fprintln(r.out, NoData)
		return nil
	}
	if err != nil {
		return err
	}
	if err := rep.WriteText(r.out); err != nil {
		return err
	}

	runID := r.newID()
	recs := rep.Records()
	summary.Stamp(recs, runID, r.now())

	var files []string
	if charts {
		paths, err := chart.ForReport(rep, r.cfg.Output.Dir, r.cfg.Output.ChartFormat)
		if err != nil {
			return fmt.Errorf("charts: %w", err)
		}
		for _, p := range paths {
			fmt.Fprintf(r.out, "\nChart saved: %s\n", p)
		}
		files = append(files, paths...)
	}
	if len(r.cfg.Output.Export) > 0 {
		dir := filepath.Join(r.cfg.Output.Dir, "exports")
		paths, err := export.Write(dir, rep.Name()+"_"+runID, r.cfg.Output.Export, recs)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(r.out, "Exported: %s\n", p)
		}
		files = append(files, paths...)
	}
	if err := r.publish(c.Context, runID, recs, files); err != nil {
		return err
	}
	slog.Info("report complete", "report", rep.Name(), "run_id", runID, "records", len(recs), "files", len(files))
	return nil
}
