// Package config loads pbp-report settings from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tyler180/nfl-pbp-reports/internal/rollup"
)

type Config struct {
	Data     DataConfig     `yaml:"data"`
	Output   OutputConfig   `yaml:"output"`
	Publish  PublishConfig  `yaml:"publish"`
	AWS      AWSConfig      `yaml:"aws"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Eras     []rollup.Era   `yaml:"eras"`
}

type DataConfig struct {
	Dir      string `yaml:"dir"`
	Pattern  string `yaml:"pattern"`
	CacheDir string `yaml:"cache_dir"` // empty disables the parquet cache
}

type OutputConfig struct {
	Dir         string   `yaml:"dir"`
	Charts      bool     `yaml:"charts"`
	ChartFormat string   `yaml:"chart_format"` // png|svg
	Export      []string `yaml:"export"`       // csv, xlsx, parquet
}

type PublishConfig struct {
	Sinks      []string `yaml:"sinks"` // sqlite, dynamodb, s3, redis
	SQLitePath string   `yaml:"sqlite_path"`
}

type AWSConfig struct {
	Region      string `yaml:"region"`
	Bucket      string `yaml:"bucket"`
	Prefix      string `yaml:"prefix"`
	DynamoTable string `yaml:"dynamo_table"`
}

type RedisConfig struct {
	URL string        `yaml:"url"`
	TTL time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type DefaultsConfig struct {
	Team        string `yaml:"team"`
	QB          string `yaml:"qb"`
	QBTeam      string `yaml:"qb_team"`
	From        int    `yaml:"from"`
	To          int    `yaml:"to"`
	MinAttempts int    `yaml:"min_attempts"`
}

// DefaultEras are the Ravens eras the team reports were first written for.
func DefaultEras() []rollup.Era {
	return []rollup.Era{
		{Name: "Early Years", Years: rollup.Span(2008, 2011)},
		{Name: "Championship Window", Years: rollup.Span(2012, 2014)},
		{Name: "Rebuild Era", Years: rollup.Span(2015, 2017)},
		{Name: "Lamar Era", Years: rollup.Span(2018, 2024)},
	}
}

func Default() *Config {
	return &Config{
		Data:    DataConfig{Dir: "data", Pattern: "play_by_play_%d.csv"},
		Output:  OutputConfig{Dir: "output", ChartFormat: "png"},
		Publish: PublishConfig{SQLitePath: "output/pbp_reports.db"},
		AWS:     AWSConfig{Prefix: "pbp_reports", DynamoTable: "pbp_summary_records"},
		Redis:   RedisConfig{URL: "redis://localhost:6379", TTL: 24 * time.Hour},
		Log:     LogConfig{Level: "info"},
		Defaults: DefaultsConfig{
			Team: "BAL", QB: "C.Williams", QBTeam: "CHI",
			From: 2019, To: 2024, MinAttempts: 100,
		},
		Eras: DefaultEras(),
	}
}

// Load reads path over the defaults and then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("config file not found, using defaults", "file", path)
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func list(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"PBP_DATA_DIR":       &c.Data.Dir,
		"PBP_PATTERN":        &c.Data.Pattern,
		"PBP_CACHE_DIR":      &c.Data.CacheDir,
		"PBP_OUTPUT_DIR":     &c.Output.Dir,
		"PBP_CHART_FORMAT":   &c.Output.ChartFormat,
		"PBP_SQLITE_PATH":    &c.Publish.SQLitePath,
		"AWS_REGION":         &c.AWS.Region,
		"REPORTS_BUCKET":     &c.AWS.Bucket,
		"REPORTS_PREFIX":     &c.AWS.Prefix,
		"SUMMARY_TABLE_NAME": &c.AWS.DynamoTable,
		"REDIS_URL":          &c.Redis.URL,
		"LOG_LEVEL":          &c.Log.Level,
		"PBP_TEAM":           &c.Defaults.Team,
		"PBP_QB":             &c.Defaults.QB,
		"PBP_QB_TEAM":        &c.Defaults.QBTeam,
	}
	for k, p := range str {
		if v := os.Getenv(k); v != "" {
			*p = v
		}
	}
	if v := os.Getenv("PBP_CHARTS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid PBP_CHARTS value: %w", err)
		}
		c.Output.Charts = b
	}
	if v := os.Getenv("PBP_EXPORT"); v != "" {
		c.Output.Export = list(v)
	}
	if v := os.Getenv("PBP_PUBLISH"); v != "" {
		c.Publish.Sinks = list(v)
	}
	if v := os.Getenv("REDIS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_TTL value: %w", err)
		}
		c.Redis.TTL = d
	}
	return nil
}

var (
	exportFormats = map[string]bool{"csv": true, "xlsx": true, "parquet": true}
	sinkNames     = map[string]bool{"sqlite": true, "dynamodb": true, "s3": true, "redis": true}
)

// Validate rejects unknown export formats, sinks and chart formats, and
// sinks missing the settings they need.
func (c *Config) Validate() error {
	var errs []error
	for _, f := range c.Output.Export {
		if !exportFormats[f] {
			errs = append(errs, fmt.Errorf("unknown export format %q", f))
		}
	}
	for _, s := range c.Publish.Sinks {
		if !sinkNames[s] {
			errs = append(errs, fmt.Errorf("unknown publish sink %q", s))
		}
		if s == "s3" && c.AWS.Bucket == "" {
			errs = append(errs, errors.New("s3 sink needs aws.bucket (REPORTS_BUCKET)"))
		}
	}
	if f := c.Output.ChartFormat; f != "png" && f != "svg" {
		errs = append(errs, fmt.Errorf("unknown chart format %q", f))
	}
	if c.Defaults.From > c.Defaults.To {
		errs = append(errs, fmt.Errorf("defaults.from %d after defaults.to %d", c.Defaults.From, c.Defaults.To))
	}
	return errors.Join(errs...)
}

// Has reports whether name is among the configured sinks.
func (p PublishConfig) Has(name string) bool {
	for _, s := range p.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

// LogLevel parses Log.Level, falling back to info.
func (c *Config) LogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
