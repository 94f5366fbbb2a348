// Package export writes summary records to files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	parquet "github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"

	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

var header = []string{"run_id", "report", "subject", "scope", "metric", "numerator", "denominator", "value", "rank", "peers", "created_at"}

func row(r summary.Record) []string {
	return []string{
		r.RunID, r.Report, r.Subject, r.Scope, r.Metric,
		strconv.Itoa(r.Numerator), strconv.Itoa(r.Denominator),
		strconv.FormatFloat(r.Value, 'f', -1, 64),
		strconv.Itoa(r.Rank), strconv.Itoa(r.Peers),
		strconv.FormatInt(r.CreatedAt, 10),
	}
}

// Write exports recs in each format to dir/<base>.<format> and returns the
// files written.
func Write(dir, base string, formats []string, recs []summary.Record) ([]string, error) {
	if len(formats) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var out []string
	for _, f := range formats {
		path := filepath.Join(dir, base+"."+f)
		var err error
		switch f {
		case "csv":
			err = CSV(path, recs)
		case "xlsx":
			err = XLSX(path, recs)
		case "parquet":
			err = Parquet(path, recs)
		default:
			err = fmt.Errorf("unknown export format %q", f)
		}
		if err != nil {
			return out, fmt.Errorf("export %s: %w", f, err)
		}
		out = append(out, path)
	}
	return out, nil
}

func CSV(path string, recs []summary.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	_ = w.Write(header)
	for _, r := range recs {
		_ = w.Write(row(r))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// XLSX writes one sheet per report, in first-seen order.
func XLSX(path string, recs []summary.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	var sheets []string
	byReport := map[string][]summary.Record{}
	for _, r := range recs {
		if _, ok := byReport[r.Report]; !ok {
			sheets = append(sheets, r.Report)
		}
		byReport[r.Report] = append(byReport[r.Report], r)
	}
	if len(sheets) == 0 {
		sheets = []string{"records"}
	}

	for i, name := range sheets {
		sheet := sheetName(name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return err
		}
		for j, r := range byReport[name] {
			cell, _ := excelize.CoordinatesToCellName(1, j+2)
			vals := []interface{}{
				r.RunID, r.Report, r.Subject, r.Scope, r.Metric,
				r.Numerator, r.Denominator, r.Value, r.Rank, r.Peers, r.CreatedAt,
			}
			if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
				return err
			}
		}
		_ = f.SetColWidth(sheet, "A", "A", 38)
		_ = f.SetColWidth(sheet, "B", "E", 24)
	}
	return f.SaveAs(path)
}

// sheetName trims to Excel's 31-character sheet name limit.
func sheetName(s string) string {
	if len(s) > 31 {
		return s[:31]
	}
	return s
}

func Parquet(path string, recs []summary.Record) error {
	return parquet.WriteFile(path, recs, parquet.Compression(&parquet.Snappy))
}

func ReadParquet(path string) ([]summary.Record, error) {
	return parquet.ReadFile[summary.Record](path)
}
