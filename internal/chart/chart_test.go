package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyler180/nfl-pbp-reports/internal/analysis"
	"github.com/tyler180/nfl-pbp-reports/internal/rollup"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
)

var pngMagic = []byte("\x89PNG")

func TestPath(t *testing.T) {
	require.Equal(t, filepath.Join("out", "fourth_down_bal.png"), Path("out", "", "fourth_down", "BAL"))
	require.Equal(t, filepath.Join("out", "passing_cwilliams.svg"), Path("out", SVG, "passing", "C.Williams"))
}

func TestBarsCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "bars.png")
	err := Bars(path, PNG, "t", "y", []Bar{{Label: "A", Value: 40}, {Label: "B", Value: -10, League: true}})
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, pngMagic))

	require.Error(t, Bars(path, PNG, "t", "y", nil))
	require.Error(t, Bars(path, "gif", "t", "y", []Bar{{Label: "A", Value: 1}}))
}

func TestLinesSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.svg")
	err := Lines(path, SVG, "t", "y", []Series{
		{Name: "BAL", Years: []int{2019, 2020, 2021}, Values: []float64{1, 3, 2}},
		{Name: "NFL", Years: []int{2019, 2020, 2021}, Values: []float64{2, 2, 2}},
	})
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "<svg")
}

func TestScatter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s", "scatter.png")
	err := Scatter(path, "t", "x", "y", []Point{{Label: "BAL 23", X: 0.1, Y: 0.2}, {Label: "KC 23", X: 0.15, Y: 0.05}})
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, pngMagic))
}

func TestForReport(t *testing.T) {
	dir := t.TempDir()
	rep := &analysis.FourthDownReport{
		Team: "BAL",
		Eras: []analysis.FourthDownEra{
			{Era: rollup.Era{Name: "Early", Years: []int{2008}}, Team: stats.Rate{Num: 4, Den: 10}, League: stats.Rate{Num: 50, Den: 100}},
		},
	}
	files, err := ForReport(rep, dir, PNG)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "fourth_down_bal.png")}, files)
	require.FileExists(t, files[0])

	files, err = ForReport(&analysis.PenaltyReport{}, dir, PNG)
	require.NoError(t, err)
	require.Empty(t, files)
}
