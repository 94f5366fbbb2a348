package chart

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Point is one labelled scatter point.
type Point struct {
	Label string
	X, Y  float64
}

// Scatter plots points with a dashed y=x reference line, so points above
// the line improved on the x measure.
func Scatter(path, title, xLabel, yLabel string, pts []Point) error {
	if len(pts) == 0 {
		return fmt.Errorf("chart %s: no points", title)
	}
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	xys := make(plotter.XYs, len(pts))
	labels := make([]string, len(pts))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, pt := range pts {
		xys[i].X, xys[i].Y = pt.X, pt.Y
		labels[i] = pt.Label
		lo = math.Min(lo, math.Min(pt.X, pt.Y))
		hi = math.Max(hi, math.Max(pt.X, pt.Y))
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 0.1
	}

	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = color.RGBA{R: 36, G: 23, B: 115, A: 255}
	sc.GlyphStyle.Radius = vg.Points(4)
	p.Add(sc)
	p.Add(plotter.NewGrid())

	diag := plotter.NewFunction(func(x float64) float64 { return x })
	diag.Color = color.RGBA{A: 255}
	diag.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	p.Add(diag)

	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return err
	}
	p.Add(lbl)

	p.X.Min, p.X.Max = lo-pad, hi+pad
	p.Y.Min, p.Y.Max = lo-pad, hi+pad

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	// format follows the file extension
	return p.Save(10*vg.Inch, 10*vg.Inch, path)
}
