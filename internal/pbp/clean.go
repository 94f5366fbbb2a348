package pbp

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CleanStats summarises one FilterCSV pass.
type CleanStats struct {
	OriginalRows int
	FilteredRows int
	Games        int
	HomeGames    int
	AwayGames    int
	Opponents    map[string]int // games per opponent
}

func (s CleanStats) RowsRemoved() int { return s.OriginalRows - s.FilteredRows }

// OpponentList returns opponents in alphabetical order.
func (s CleanStats) OpponentList() []string {
	out := make([]string, 0, len(s.Opponents))
	for o := range s.Opponents {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}

// FilterCSV copies the header and every row of a game involving team from r
// to w. Rows are written back untouched, so unknown columns survive.
func FilterCSV(r io.Reader, w io.Writer, team string) (CleanStats, error) {
	team = strings.ToUpper(team)
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cw := csv.NewWriter(w)

	hdr, err := cr.Read()
	if err != nil {
		return CleanStats{}, fmt.Errorf("read header: %w", err)
	}
	home, away, game := idxOf(hdr, "home_team"), idxOf(hdr, "away_team"), idxOf(hdr, "game_id")
	if home < 0 || away < 0 {
		return CleanStats{}, fmt.Errorf("%w: home_team/away_team", ErrMissingColumn)
	}
	if err := cw.Write(hdr); err != nil {
		return CleanStats{}, err
	}

	st := CleanStats{Opponents: map[string]int{}}
	seen := map[string]struct{}{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return st, fmt.Errorf("read row %d: %w", line, err)
		}
		st.OriginalRows++
		h, a := strings.ToUpper(get(rec, home)), strings.ToUpper(get(rec, away))
		if h != team && a != team {
			continue
		}
		st.FilteredRows++
		if err := cw.Write(rec); err != nil {
			return st, err
		}

		id := get(rec, game)
		if _, ok := seen[id]; ok || game < 0 {
			continue
		}
		seen[id] = struct{}{}
		st.Games++
		if h == team {
			st.HomeGames++
			st.Opponents[a]++
		} else {
			st.AwayGames++
			st.Opponents[h]++
		}
	}
	cw.Flush()
	return st, cw.Error()
}

// CleanFile runs FilterCSV from in to out. An empty out, or out equal to in,
// rewrites the input via a temp file in the same directory.
func CleanFile(in, out, team string) (CleanStats, error) {
	if out == "" {
		out = in
	}
	src, err := os.Open(in)
	if err != nil {
		return CleanStats{}, err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(out), ".clean-*.csv")
	if err != nil {
		return CleanStats{}, err
	}
	defer os.Remove(tmp.Name())

	st, err := FilterCSV(src, tmp, team)
	if err != nil {
		_ = tmp.Close()
		return st, fmt.Errorf("%s: %w", in, err)
	}
	if err := tmp.Close(); err != nil {
		return st, err
	}
	_ = src.Close()
	if err := os.Rename(tmp.Name(), out); err != nil {
		return st, err
	}
	return st, nil
}
