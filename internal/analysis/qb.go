package analysis

import (
	"fmt"
	"sort"

	"github.com/tyler180/nfl-pbp-reports/internal/report"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// MinQBAttempts is the default pass-attempt floor for a QB to be ranked.
const MinQBAttempts = 100

// QBMetric is one quarterback number set against the qualifying pool.
type QBMetric struct {
	Name   string
	Label  string
	Value  float64
	League float64
	Rank   int // 0 when the QB is not in the pool
	Pool   int
	Better stats.Direction
	Format string
}

func (m QBMetric) text(v float64) string {
	f := m.Format
	if f == "" {
		f = "%.2f"
	}
	return fmt.Sprintf(f, v)
}

// rankMetrics fills League, Rank and Pool on each metric from pool, a map
// of qualifying QB name to that QB's value for each metric name.
func rankMetrics(ms []QBMetric, qb string, pool map[string]map[string]float64) {
	for i := range ms {
		m := &ms[i]
		var peers []stats.Peer
		for name, vals := range pool {
			v, ok := vals[m.Name]
			if !ok || v != v {
				continue
			}
			peers = append(peers, stats.Peer{Key: name, Value: v})
		}
		m.League = stats.MeanOf(peers)
		m.Pool = len(peers)
		if r, _, ok := stats.Rank(peers, qb, m.Better); ok {
			m.Rank = r
		}
	}
}

func qbMetricRows(ms []QBMetric) [][]string {
	rows := make([][]string, 0, len(ms))
	for _, m := range ms {
		rows = append(rows, []string{m.Label, m.text(m.Value), m.text(m.League), report.RankOf(m.Rank, m.Pool)})
	}
	return rows
}

func qbMetricRecords(name, qb, scope string, ms []QBMetric) []summary.Record {
	out := make([]summary.Record, 0, len(ms))
	for _, m := range ms {
		out = append(out, summary.Value(name, qb, scope, m.Name, m.Value).WithRank(m.Rank, m.Pool))
	}
	return out
}

// modalTeam returns the most frequent value in counts, ties broken
// alphabetically.
func modalTeam(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best, n := "", 0
	for _, k := range keys {
		if counts[k] > n {
			best, n = k, counts[k]
		}
	}
	return best
}
