// Package curator turns an nflverse play-by-play release into parquet
// partitions keyed by season and offense.
package curator

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tyler180/nfl-pbp-reports/internal/nflverse"
	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/store"
)

// NoTeam partitions plays without an offense (kickoffs, timeouts, end of quarter).
const NoTeam = "NONE"

type Service struct {
	NFL    *nflverse.Client
	S3     store.S3Publisher
	TmpDir string
	Now    func() time.Time
}

type Result struct {
	Season     int            `json:"season"`
	Asset      string         `json:"asset"`
	Plays      int            `json:"plays"`
	Partitions map[string]int `json:"partitions"`
	Keys       []string       `json:"keys"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Partition groups plays by offense. Blank offenses land under NoTeam.
func Partition(plays []pbp.Play) map[string][]pbp.Play {
	out := map[string][]pbp.Play{}
	for _, p := range plays {
		team := strings.ToUpper(strings.TrimSpace(p.PosTeam))
		if team == "" {
			team = NoTeam
		}
		out[team] = append(out[team], p)
	}
	return out
}

// PartitionKey is the object key of one season/offense partition.
func PartitionKey(season int, team, stamp string) string {
	return fmt.Sprintf("pbp/season=%d/posteam=%s/part-%s.parquet", season, team, stamp)
}

// Curate downloads season's play-by-play CSV, parses it and uploads one
// snappy parquet object per offense.
func (s *Service) Curate(ctx context.Context, season int) (Result, error) {
	res := Result{Season: season, Partitions: map[string]int{}}

	asset, err := s.NFL.Resolve(ctx, "pbp", season, preferredFormats())
	if err != nil {
		return res, fmt.Errorf("resolve pbp %d: %w", season, err)
	}
	res.Asset = asset.Name
	slog.Info("resolved asset", "dataset", "pbp", "season", season, "asset", asset.Name, "url", asset.URL)

	tmp := s.TmpDir
	if tmp == "" {
		tmp = os.TempDir()
	}
	local := filepath.Join(tmp, asset.Name)
	if _, err := s.NFL.DownloadFile(ctx, asset.URL, local); err != nil {
		return res, fmt.Errorf("download %s: %w", asset.Name, err)
	}
	defer os.Remove(local)

	plays, err := pbp.LoadFile(local)
	if err != nil {
		return res, err
	}
	res.Plays = len(plays)

	stamp := s.now().UTC().Format("20060102T150405Z")
	parts := Partition(plays)
	teams := make([]string, 0, len(parts))
	for t := range parts {
		teams = append(teams, t)
	}
	sort.Strings(teams)

	for _, team := range teams {
		var buf bytes.Buffer
		if err := pbp.WriteParquet(&buf, parts[team]); err != nil {
			return res, fmt.Errorf("parquet %s: %w", team, err)
		}
		key, err := s.S3.Put(ctx, PartitionKey(season, team, stamp), buf.Bytes())
		if err != nil {
			return res, err
		}
		res.Partitions[team] = len(parts[team])
		res.Keys = append(res.Keys, key)
		slog.Debug("partition written", "season", season, "team", team, "plays", len(parts[team]), "key", key)
	}
	slog.Info("season curated", "season", season, "plays", res.Plays, "partitions", len(res.Keys))
	return res, nil
}

// preferredFormats reads NFLVERSE_FORMAT; the curator parses CSV, so the
// default skips the upstream parquet and rds assets.
func preferredFormats() []string {
	v := strings.ToLower(strings.TrimSpace(getEnv("NFLVERSE_FORMAT", "csv,csv.gz")))
	var out []string
	for _, f := range strings.Split(v, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// SeasonFromEnv parses SEASON, returning 0 when unset or invalid.
func SeasonFromEnv() int {
	n, _ := strconv.Atoi(getEnv("SEASON", ""))
	return n
}
