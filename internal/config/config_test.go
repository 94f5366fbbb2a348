package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, "data", cfg.Data.Dir)
	require.Equal(t, "play_by_play_%d.csv", cfg.Data.Pattern)
	require.Equal(t, "BAL", cfg.Defaults.Team)
	require.Len(t, cfg.Eras, 4)
	require.Equal(t, "Lamar Era (2018-2024)", cfg.Eras[3].Label())
	require.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	require.Equal(t, slog.LevelInfo, cfg.LogLevel())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pbp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data:
  dir: /srv/pbp
output:
  charts: true
  export: [csv]
log:
  level: debug
eras:
  - name: Harbaugh
    years: [2008, 2009]
`), 0o644))

	t.Setenv("PBP_DATA_DIR", "/env/pbp")
	t.Setenv("PBP_PUBLISH", "sqlite, Redis")
	t.Setenv("REDIS_TTL", "90m")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/env/pbp", cfg.Data.Dir)
	require.True(t, cfg.Output.Charts)
	require.Equal(t, []string{"csv"}, cfg.Output.Export)
	require.Equal(t, []string{"sqlite", "redis"}, cfg.Publish.Sinks)
	require.True(t, cfg.Publish.Has("redis"))
	require.False(t, cfg.Publish.Has("s3"))
	require.Equal(t, 90*time.Minute, cfg.Redis.TTL)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel())
	require.Len(t, cfg.Eras, 1)
	require.Equal(t, "output", cfg.Output.Dir, "unset keys keep defaults")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
		ok   bool
	}{
		{"defaults", func(*Config) {}, true},
		{"bad export", func(c *Config) { c.Output.Export = []string{"pdf"} }, false},
		{"bad sink", func(c *Config) { c.Publish.Sinks = []string{"kafka"} }, false},
		{"s3 without bucket", func(c *Config) { c.Publish.Sinks = []string{"s3"} }, false},
		{"s3 with bucket", func(c *Config) { c.Publish.Sinks, c.AWS.Bucket = []string{"s3"}, "b" }, true},
		{"svg charts", func(c *Config) { c.Output.ChartFormat = "svg" }, true},
		{"jpeg charts", func(c *Config) { c.Output.ChartFormat = "jpeg" }, false},
		{"backwards range", func(c *Config) { c.Defaults.From = 2025 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mut(cfg)
			err := cfg.Validate()
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestBadEnv(t *testing.T) {
	t.Setenv("PBP_CHARTS", "maybe")
	_, err := Load("")
	require.Error(t, err)
}
