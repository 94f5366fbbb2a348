package nflverse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func releaseServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/releases/tags/pbp", func(w http.ResponseWriter, r *http.Request) {
		assets := []Asset{
			{Name: "play_by_play_2022.csv", URL: srv.URL + "/dl/play_by_play_2022.csv"},
			{Name: "play_by_play_2023.parquet", URL: srv.URL + "/dl/play_by_play_2023.parquet"},
			{Name: "play_by_play_2023.csv", URL: srv.URL + "/dl/play_by_play_2023.csv"},
			{Name: "play_by_play_2023.rds", URL: srv.URL + "/dl/play_by_play_2023.rds"},
		}
		_ = json.NewEncoder(w).Encode(releaseResp{TagName: "pbp", Assets: assets})
	})
	mux.HandleFunc("/dl/play_by_play_2023.csv", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "game_id,season\n2023_01_BAL_HOU,2023\n")
	})
	mux.HandleFunc("/dl/missing.csv", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestResolvePrefersSeasonAndFormat(t *testing.T) {
	srv := releaseServer(t)
	c := &Client{APIBase: srv.URL}

	a, err := c.Resolve(context.Background(), "pbp", 2023, []string{"csv", "parquet"})
	require.NoError(t, err)
	require.Equal(t, "play_by_play_2023.csv", a.Name)
	require.Equal(t, "csv", a.Format([]string{"csv", "parquet"}))

	a, err = c.Resolve(context.Background(), "pbp", 2023, []string{"parquet", "csv"})
	require.NoError(t, err)
	require.Equal(t, "play_by_play_2023.parquet", a.Name)

	_, err = c.Resolve(context.Background(), "pbp", 2019, []string{"csv"})
	require.Error(t, err)

	_, err = c.Resolve(context.Background(), "nope", 2023, nil)
	require.ErrorContains(t, err, "unknown dataset")
}

func TestFetchSeason(t *testing.T) {
	srv := releaseServer(t)
	c := &Client{APIBase: srv.URL}
	dir := filepath.Join(t.TempDir(), "data")

	path, err := c.FetchSeason(context.Background(), dir, 2023)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "play_by_play_2023.csv"), path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "2023_01_BAL_HOU")
}

func TestDownloadStatusError(t *testing.T) {
	srv := releaseServer(t)
	c := &Client{}
	var buf bytes.Buffer
	_, err := c.Download(context.Background(), srv.URL+"/dl/missing.csv", &buf)
	require.ErrorContains(t, err, "status 404")
}

func TestPickWithoutSeasonNames(t *testing.T) {
	assets := []Asset{{Name: "players.rds"}, {Name: "players.csv"}, {Name: "players.parquet"}}
	a, ok := pick(assets, "players", "players", 2024, []string{"parquet", "csv"})
	require.True(t, ok)
	require.Equal(t, "players.parquet", a.Name)
}
