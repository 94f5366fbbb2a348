package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

func TestRedisKeys(t *testing.T) {
	require.Equal(t, "pbp:third_down:BAL:records", RecordsKey("third_down", "BAL"))
	require.Equal(t, "pbp:passing:C.Williams:run", RunKey("passing", "C.Williams"))
}

func TestGroupRecords(t *testing.T) {
	recs := []summary.Record{
		summary.Value("dominance", "BAL", "2023", "luck", 1),
		summary.Value("penalties", "BAL", "2023", "penalties", 100),
		summary.Value("dominance", "BAL", "2024", "luck", 2),
		{Metric: "no subject"},
	}
	order, groups := groupRecords(recs)
	require.Equal(t, []string{"dominance#BAL", "penalties#BAL"}, order)
	require.Len(t, groups["dominance#BAL"], 2)
	require.Len(t, groups["penalties#BAL"], 1)
}

func TestNewRedisClient(t *testing.T) {
	c, err := NewRedisClient("redis://localhost:6379/2")
	require.NoError(t, err)
	require.Equal(t, 2, c.Options().DB)
	require.NoError(t, c.Close())

	_, err = NewRedisClient("http://nope")
	require.Error(t, err)

	w := NewRedisWriter(c, 0)
	require.Equal(t, DefaultRedisTTL, w.ttl)
}
