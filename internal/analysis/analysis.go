// Package analysis turns seasons of play-by-play into typed reports. Every
// report can print itself and flatten into summary records.
package analysis

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// ErrNoData means none of the requested seasons could be loaded or none
// had eligible plays.
var ErrNoData = errors.New("no data available")

// Report is the common surface of every analysis result.
type Report interface {
	Name() string
	WriteText(w io.Writer) error
	Records() []summary.Record
}

// eachSeason loads every year and hands it to fn. Missing seasons are
// logged and skipped; any other load error stops the run. It returns the
// years that loaded, or ErrNoData when none did.
func eachSeason(src pbp.Loader, years []int, fn func(year int, plays []pbp.Play)) ([]int, error) {
	var loaded []int
	for _, y := range years {
		plays, err := src.Season(y)
		if errors.Is(err, pbp.ErrSeasonMissing) {
			slog.Warn("season file not found", "season", y)
			continue
		}
		if err != nil {
			return loaded, fmt.Errorf("season %d: %w", y, err)
		}
		fn(y, plays)
		loaded = append(loaded, y)
	}
	if len(loaded) == 0 {
		return nil, ErrNoData
	}
	return loaded, nil
}

func span(from, to int) []int {
	var out []int
	for y := from; y <= to; y++ {
		out = append(out, y)
	}
	return out
}

// yearsLabel renders contiguous years as "2019-2021" and anything with a
// gap as "2012,2014".
func yearsLabel(years []int) string {
	switch len(years) {
	case 0:
		return ""
	case 1:
		return strconv.Itoa(years[0])
	}
	for i := 1; i < len(years); i++ {
		if years[i] != years[i-1]+1 {
			parts := make([]string, len(years))
			for j, y := range years {
				parts[j] = strconv.Itoa(y)
			}
			return strings.Join(parts, ",")
		}
	}
	return fmt.Sprintf("%d-%d", years[0], years[len(years)-1])
}

func epa(p *pbp.Play) float64   { return p.EPA }
func qbEPA(p *pbp.Play) float64 { return p.QBEPA }
func wpa(p *pbp.Play) float64   { return p.WPA }
func cpoe(p *pbp.Play) float64  { return p.CPOE }
func yards(p *pbp.Play) float64 { return p.YardsGained }

// zeroNaN treats a blank value as 0, matching fillna(0) style sums.
func zeroNaN(v float64) float64 {
	if v != v {
		return 0
	}
	return v
}
