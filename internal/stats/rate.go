// Package stats holds the reporting arithmetic shared by every analysis:
// zero-guarded rates, peer ranking, passer rating and Pythagorean wins.
package stats

import (
	"fmt"
	"math"
)

// Rate is a success count over an eligible count.
type Rate struct {
	Num int
	Den int
}

// Pct returns 100*Num/Den, or 0 when there is nothing eligible.
func (r Rate) Pct() float64 {
	if r.Den == 0 {
		return 0
	}
	return 100 * float64(r.Num) / float64(r.Den)
}

// Frac is Pct/100.
func (r Rate) Frac() float64 { return r.Pct() / 100 }

func (r Rate) Add(o Rate) Rate { return Rate{Num: r.Num + o.Num, Den: r.Den + o.Den} }

// Failed counts eligible attempts that did not succeed.
func (r Rate) Failed() int { return r.Den - r.Num }

func (r Rate) String() string {
	return fmt.Sprintf("%d/%d (%.1f%%)", r.Num, r.Den, r.Pct())
}

// Ratio divides with the same zero guard as Rate.
func Ratio(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) || math.IsNaN(num) {
		return 0
	}
	return num / den
}

func Percent(num, den float64) float64 { return 100 * Ratio(num, den) }

// PerGame divides a total by games played.
func PerGame(total float64, games int) float64 { return Ratio(total, float64(games)) }

// Sum adds xs, skipping NaN.
func Sum(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		if !math.IsNaN(x) {
			s += x
		}
	}
	return s
}

// Mean averages the non-NaN values of xs. It returns 0 when there are none.
func Mean(xs []float64) float64 {
	s, n := 0.0, 0
	for _, x := range xs {
		if !math.IsNaN(x) {
			s += x
			n++
		}
	}
	return Ratio(s, float64(n))
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
