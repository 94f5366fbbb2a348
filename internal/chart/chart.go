// Package chart renders report charts to PNG or SVG files.
package chart

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	PNG = "png"
	SVG = "svg"

	width  = 1000
	height = 500
)

var (
	teamColor   = drawing.ColorFromHex("241773") // Ravens purple
	leagueColor = drawing.ColorFromHex("9a9a9a")
	lineColors  = []drawing.Color{teamColor, chart.ColorRed, chart.ColorGreen, chart.ColorOrange, chart.ColorCyan}
)

// Bar is one labelled bar. League bars are drawn grey.
type Bar struct {
	Label  string
	Value  float64
	League bool
}

// Series is one named line over seasons.
type Series struct {
	Name   string
	Years  []int
	Values []float64
}

func provider(format string) (chart.RendererProvider, error) {
	switch format {
	case "", PNG:
		return chart.PNG, nil
	case SVG:
		return chart.SVG, nil
	}
	return nil, fmt.Errorf("unknown chart format %q", format)
}

// Path joins dir and a file name built from parts and the format extension.
func Path(dir, format string, parts ...string) string {
	if format == "" {
		format = PNG
	}
	name := strings.ToLower(strings.Join(parts, "_"))
	name = strings.NewReplacer(" ", "_", "/", "-", ".", "").Replace(name)
	return filepath.Join(dir, name+"."+format)
}

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func save(path, format string, render func(rp chart.RendererProvider, f *os.File) error) error {
	rp, err := provider(format)
	if err != nil {
		return err
	}
	f, err := create(path)
	if err != nil {
		return err
	}
	if err := render(rp, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// Bars draws a bar chart. With a zero base, negative values hang below
// the axis.
func Bars(path, format, title, yLabel string, bars []Bar) error {
	if len(bars) == 0 {
		return fmt.Errorf("chart %s: no bars", title)
	}
	values := make([]chart.Value, len(bars))
	for i, b := range bars {
		c := teamColor
		if b.League {
			c = leagueColor
		}
		values[i] = chart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: chart.Style{FillColor: c, StrokeColor: c},
		}
	}
	bc := chart.BarChart{
		Title:        title,
		Width:        width,
		Height:       height,
		BarWidth:     40,
		Background:   chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		YAxis:        chart.YAxis{Name: yLabel},
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         values,
	}
	return save(path, format, func(rp chart.RendererProvider, f *os.File) error {
		return bc.Render(rp, f)
	})
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}

// Lines draws one line per series against season on the x axis.
func Lines(path, format, title, yLabel string, series []Series) error {
	var ss []chart.Series
	for i, s := range series {
		if len(s.Years) == 0 {
			continue
		}
		xs := make([]float64, len(s.Years))
		for j, y := range s.Years {
			xs[j] = float64(y)
		}
		c := lineColors[i%len(lineColors)]
		ss = append(ss, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: s.Values,
			Style:   chart.Style{StrokeColor: c, StrokeWidth: 2, DotColor: c, DotWidth: 4},
		})
	}
	if len(ss) == 0 {
		return fmt.Errorf("chart %s: no data", title)
	}
	graph := chart.Chart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: "Season", ValueFormatter: yearFormatter},
		YAxis:      chart.YAxis{Name: yLabel},
		Series:     ss,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return save(path, format, func(rp chart.RendererProvider, f *os.File) error {
		return graph.Render(rp, f)
	})
}
