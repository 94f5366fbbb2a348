package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyler180/nfl-pbp-reports/internal/stats"
)

func TestFormatting(t *testing.T) {
	require.Equal(t, "+2.3", Signed(2.345, 1))
	require.Equal(t, "-0.05", Signed(-0.05, 2))
	require.Equal(t, "41.2%", Pct(41.24))
	require.Equal(t, "4/10 (40.0%)", RateLine(stats.Rate{Num: 4, Den: 10}))
	require.Equal(t, "0/0 (0.0%)", RateLine(stats.Rate{}))
	require.Equal(t, "10-7", Record(10, 7, 0))
	require.Equal(t, "8-8-1", Record(8, 8, 1))

	for n, want := range map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 32: "32nd"} {
		require.Equal(t, want, Ordinal(n))
	}
	require.Equal(t, "unranked", RankOf(0, 32))
	require.Equal(t, "3rd of 5", RankOf(3, 5))
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Banner("FOURTH DOWN")
	p.Table([]string{"Year", "Rate"}, [][]string{{"2023", "55.0%"}, {"2024", "61.5%"}})
	require.NoError(t, p.Err())

	out := buf.String()
	require.Contains(t, out, Rule+"\nFOURTH DOWN\n"+Rule)
	require.Contains(t, out, "Year  Rate")
	require.Contains(t, out, "2023  55.0%")
	require.Len(t, Rule, 80)
}

type failWriter struct{ n int }

func (f *failWriter) Write(b []byte) (int, error) {
	f.n++
	return 0, errors.New("closed")
}

func TestPrinter_StopsAfterError(t *testing.T) {
	fw := &failWriter{}
	p := NewPrinter(fw)
	p.Printf("a")
	p.Println("b")
	p.Section(strings.Repeat("x", 3))
	require.EqualError(t, p.Err(), "closed")
	require.Equal(t, 1, fw.n)
}
