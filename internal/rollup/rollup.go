// Package rollup is the grouped-statistic engine. A Definition names how to
// partition plays, which plays are eligible and what counts as success (or
// what value to average or sum); Compute turns plays into a Table of
// per-key accumulators. Tables merge by addition, so per-season tables roll
// up into an era table with the same result as computing over every play.
package rollup

import (
	"math"
	"sort"

	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
)

// KeyFunc assigns a play to a group. ok=false leaves the play out.
type KeyFunc func(p *pbp.Play) (key string, ok bool)

// ValueFunc extracts the measured value of a play. NaN is skipped.
type ValueFunc func(p *pbp.Play) float64

type Kind int

const (
	KindRate Kind = iota
	KindMean
	KindSum
)

func (k Kind) String() string {
	switch k {
	case KindMean:
		return "mean"
	case KindSum:
		return "sum"
	}
	return "rate"
}

// Unit is what one eligible observation is.
type Unit int

const (
	// UnitPlay counts each eligible play.
	UnitPlay Unit = iota
	// UnitDrive counts each distinct (game_id, drive). A drive succeeds if
	// any of its eligible plays does.
	UnitDrive
)

const LeagueKey = "NFL"

func ByOffense(p *pbp.Play) (string, bool) { return p.PosTeam, p.PosTeam != "" }
func ByDefense(p *pbp.Play) (string, bool) { return p.DefTeam, p.DefTeam != "" }
func ByPasser(p *pbp.Play) (string, bool)  { return p.PasserName, p.PasserName != "" }
func League(*pbp.Play) (string, bool)      { return LeagueKey, true }

func BySeason(p *pbp.Play) (string, bool) {
	if p.Season == 0 {
		return "", false
	}
	return itoa(p.Season), true
}

// Definition describes one statistic.
type Definition struct {
	Name     string
	Key      KeyFunc
	Eligible pbp.Predicate
	Success  pbp.Predicate // KindRate
	Value    ValueFunc     // KindMean, KindSum
	Kind     Kind
	Unit     Unit
	Better   stats.Direction
}

// WithKey returns a copy of d partitioned by k.
func (d Definition) WithKey(k KeyFunc) Definition {
	d.Key = k
	return d
}

// Where returns a copy of d with f added to its eligibility.
func (d Definition) Where(f pbp.Predicate) Definition {
	if d.Eligible == nil {
		d.Eligible = f
	} else {
		d.Eligible = pbp.And(d.Eligible, f)
	}
	return d
}

// Acc accumulates one group.
type Acc struct {
	N      int     // eligible observations
	Hits   int     // successes
	Sum    float64 // sum of non-NaN values
	Values int     // number of non-NaN values
}

func (a Acc) Add(b Acc) Acc {
	return Acc{N: a.N + b.N, Hits: a.Hits + b.Hits, Sum: a.Sum + b.Sum, Values: a.Values + b.Values}
}

func (a Acc) Sub(b Acc) Acc {
	return Acc{N: a.N - b.N, Hits: a.Hits - b.Hits, Sum: a.Sum - b.Sum, Values: a.Values - b.Values}
}

func (a Acc) Rate() stats.Rate { return stats.Rate{Num: a.Hits, Den: a.N} }

func (a Acc) Mean() float64 { return stats.Ratio(a.Sum, float64(a.Values)) }

// Value is the Kind-appropriate headline number: a percentage, a mean or a sum.
func (a Acc) Value(k Kind) float64 {
	switch k {
	case KindMean:
		return a.Mean()
	case KindSum:
		return a.Sum
	}
	return a.Rate().Pct()
}

// Table maps group keys to accumulators.
type Table struct {
	Def  Definition
	Accs map[string]Acc
}

func NewTable(def Definition) *Table {
	return &Table{Def: def, Accs: map[string]Acc{}}
}

type driveKey struct {
	group, game string
	drive       int
}

// Compute evaluates def over plays.
func Compute(def Definition, plays []pbp.Play) *Table {
	t := NewTable(def)
	key := def.Key
	if key == nil {
		key = League
	}
	drives := map[driveKey]bool{}
	var order []driveKey

	for i := range plays {
		p := &plays[i]
		if def.Eligible != nil && !def.Eligible(p) {
			continue
		}
		k, ok := key(p)
		if !ok {
			continue
		}
		hit := def.Success != nil && def.Success(p)
		if def.Unit == UnitDrive {
			dk := driveKey{group: k, game: p.GameID, drive: p.Drive}
			prev, seen := drives[dk]
			if !seen {
				order = append(order, dk)
			}
			drives[dk] = prev || hit
			if def.Value != nil {
				t.addValue(k, def.Value(p))
			}
			continue
		}
		a := t.Accs[k]
		a.N++
		if hit {
			a.Hits++
		}
		t.Accs[k] = a
		if def.Value != nil {
			t.addValue(k, def.Value(p))
		}
	}

	for _, dk := range order {
		a := t.Accs[dk.group]
		a.N++
		if drives[dk] {
			a.Hits++
		}
		t.Accs[dk.group] = a
	}
	return t
}

func (t *Table) addValue(k string, v float64) {
	a := t.Accs[k]
	if !math.IsNaN(v) {
		a.Sum += v
		a.Values++
	}
	t.Accs[k] = a
}

func (t *Table) Get(key string) Acc { return t.Accs[key] }

// Has reports whether key had any eligible observation.
func (t *Table) Has(key string) bool {
	a, ok := t.Accs[key]
	return ok && (a.N > 0 || a.Values > 0)
}

// Value returns the headline number for key.
func (t *Table) Value(key string) float64 { return t.Accs[key].Value(t.Def.Kind) }

// Keys lists group keys, sorted.
func (t *Table) Keys() []string {
	out := make([]string, 0, len(t.Accs))
	for k := range t.Accs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Merge adds other into t in place and returns t.
func (t *Table) Merge(other *Table) *Table {
	if other == nil {
		return t
	}
	for k, a := range other.Accs {
		t.Accs[k] = t.Accs[k].Add(a)
	}
	return t
}

// Total sums every group.
func (t *Table) Total() Acc {
	var tot Acc
	for _, a := range t.Accs {
		tot = tot.Add(a)
	}
	return tot
}

// TotalExcept sums every group other than key.
func (t *Table) TotalExcept(key string) Acc {
	return t.Total().Sub(t.Accs[key])
}

// Peers returns ranking input for groups with at least minN observations.
// For KindMean and KindSum the count is the number of values.
func (t *Table) Peers(minN int) []stats.Peer {
	var out []stats.Peer
	for _, k := range t.Keys() {
		a := t.Accs[k]
		n := a.N
		if t.Def.Kind != KindRate {
			n = a.Values
		}
		if n < minN || n == 0 {
			continue
		}
		out = append(out, stats.Peer{Key: k, Value: a.Value(t.Def.Kind)})
	}
	return out
}

// Rank ranks key among the qualifying groups in the definition's direction.
func (t *Table) Rank(key string, minN int) (rank, size int, ok bool) {
	return stats.Rank(t.Peers(minN), key, t.Def.Better)
}

// MergeAll folds tables into a new table for def.
func MergeAll(def Definition, tables ...*Table) *Table {
	out := NewTable(def)
	for _, t := range tables {
		out.Merge(t)
	}
	return out
}
