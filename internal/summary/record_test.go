package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tyler180/nfl-pbp-reports/internal/stats"
)

func TestRecordHelpers(t *testing.T) {
	r := Rate("fourth_down", "BAL", "2023", "conversion_rate", stats.Rate{Num: 4, Den: 10}).WithRank(3, 32)
	require.InDelta(t, 40.0, r.Value, 1e-9)
	require.Equal(t, "fourth_down#BAL", r.Key())
	require.Equal(t, "2023#conversion_rate", r.SortKey())
	require.Equal(t, "fourth_down BAL 2023 conversion_rate=40.000 (4/10) rank 3/32", r.String())

	recs := []Record{r, Value("dominance", "BAL", Season(2019), "pythag_wins", 12.4)}
	now := time.Unix(1700000000, 0)
	Stamp(recs, "run-1", now)
	for _, rec := range recs {
		require.Equal(t, "run-1", rec.RunID)
		require.Equal(t, int64(1700000000), rec.CreatedAt)
	}
}
