package pbp

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Loader supplies one season of plays. Implementations return an error
// wrapping ErrSeasonMissing when the season has no file.
type Loader interface {
	Season(year int) ([]Play, error)
}

// DefaultPattern matches the file names nflverse publishes.
const DefaultPattern = "play_by_play_%d.csv"

// Source reads seasons from a directory of per-year files.
type Source struct {
	Dir     string
	Pattern string // fmt pattern with one %d for the season
}

func (s Source) Path(year int) string {
	pattern := s.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	return filepath.Join(s.Dir, fmt.Sprintf(pattern, year))
}

func (s Source) Season(year int) ([]Play, error) {
	path := s.Path(year)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if _, gzErr := os.Stat(path + ".gz"); gzErr == nil {
			path += ".gz"
		}
	}
	plays, err := LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSeasonMissing, path)
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded season", "season", year, "file", path, "plays", len(plays))
	return plays, nil
}

// CachedSource memoises seasons for the life of the process and, when Dir
// is set, keeps a parquet copy of each parsed season on disk.
type CachedSource struct {
	Loader Loader
	Dir    string

	mu      sync.Mutex
	seasons map[int][]Play
}

func NewCachedSource(l Loader, dir string) *CachedSource {
	return &CachedSource{Loader: l, Dir: dir, seasons: map[int][]Play{}}
}

func (c *CachedSource) cachePath(year int) string {
	return filepath.Join(c.Dir, fmt.Sprintf("pbp_%d.parquet", year))
}

func (c *CachedSource) Season(year int) ([]Play, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seasons == nil {
		c.seasons = map[int][]Play{}
	}
	if plays, ok := c.seasons[year]; ok {
		return plays, nil
	}

	if c.Dir != "" {
		if plays, err := ReadParquetFile(c.cachePath(year)); err == nil {
			c.seasons[year] = plays
			return plays, nil
		}
	}

	plays, err := c.Loader.Season(year)
	if err != nil {
		return nil, err
	}
	c.seasons[year] = plays

	if c.Dir != "" {
		if err := os.MkdirAll(c.Dir, 0o755); err == nil {
			err = WriteParquetFile(c.cachePath(year), plays)
			if err != nil {
				slog.Warn("season cache write failed", "season", year, "err", err)
			}
		}
	}
	return plays, nil
}
