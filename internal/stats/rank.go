package stats

import "sort"

type Direction int

const (
	HigherIsBetter Direction = iota
	LowerIsBetter
)

func (d Direction) String() string {
	if d == LowerIsBetter {
		return "lower is better"
	}
	return "higher is better"
}

// better reports whether a beats b under d.
func (d Direction) better(a, b float64) bool {
	if d == LowerIsBetter {
		return a < b
	}
	return a > b
}

// Peer is one member of a ranking group.
type Peer struct {
	Key   string
	Value float64
}

// Rank places subject within peers using competition ranking: one plus the
// number of peers strictly better. Equal values share a rank, so the result
// never depends on the order of peers. ok is false when subject is absent.
func Rank(peers []Peer, subject string, dir Direction) (rank, size int, ok bool) {
	var v float64
	for _, p := range peers {
		if p.Key == subject {
			v, ok = p.Value, true
			break
		}
	}
	if !ok {
		return 0, len(peers), false
	}
	rank = 1
	for _, p := range peers {
		if dir.better(p.Value, v) {
			rank++
		}
	}
	return rank, len(peers), true
}

// Sorted returns a copy of peers, best first. Ties are ordered by key.
func Sorted(peers []Peer, dir Direction) []Peer {
	out := append([]Peer(nil), peers...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return dir.better(out[i].Value, out[j].Value)
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// MeanOf averages the peer values.
func MeanOf(peers []Peer) float64 {
	xs := make([]float64, len(peers))
	for i, p := range peers {
		xs[i] = p.Value
	}
	return Mean(xs)
}

// Without drops key from peers.
func Without(peers []Peer, key string) []Peer {
	out := make([]Peer, 0, len(peers))
	for _, p := range peers {
		if p.Key != key {
			out = append(out, p)
		}
	}
	return out
}
