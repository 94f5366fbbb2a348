// Package materializer builds the Athena statements that turn curated
// play-by-play partitions into per-team situational rates.
package materializer

import (
	"fmt"
	"strings"
)

const (
	DefaultTable  = "team_situational_rates"
	DefaultSource = "pbp"
)

// Spec names the tables one materialisation reads and writes.
type Spec struct {
	Database string
	Source   string // curated play table, partitioned by season/posteam
	Table    string
	Location string // s3:// prefix for the CTAS output; optional
	Season   int
}

func (s Spec) source() string {
	if s.Source == "" {
		return DefaultSource
	}
	return s.Source
}

func (s Spec) table() string {
	if s.Table == "" {
		return DefaultTable
	}
	return s.Table
}

func (s Spec) Qualified() string { return s.Database + "." + s.table() }

func (s Spec) BuildDrop() string {
	return fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.Qualified())
}

// BuildCTAS aggregates one regular season per offense. Rates are left as
// numerator/denominator columns so consumers apply their own zero guard.
func (s Spec) BuildCTAS() string {
	with := []string{"format = 'PARQUET'", "parquet_compression = 'SNAPPY'"}
	if s.Location != "" {
		loc := strings.TrimRight(s.Location, "/") + fmt.Sprintf("/%s/season=%d/", s.table(), s.Season)
		with = append(with, fmt.Sprintf("external_location = '%s'", loc))
	}
	return fmt.Sprintf(`
CREATE TABLE %s
WITH (
  %s
) AS
SELECT
  posteam                                                                       AS team,
  COUNT_IF(play_type IN ('run','pass'))                                         AS plays,
  SUM(CASE WHEN play_type IN ('run','pass') THEN epa ELSE 0 END)                AS epa_total,
  COUNT_IF(play_type IN ('run','pass') AND success)                             AS successes,
  COUNT_IF(third_down_converted = 1 OR third_down_failed = 1)                   AS third_down_att,
  COUNT_IF(third_down_converted = 1)                                            AS third_down_conv,
  COUNT_IF(fourth_down_converted = 1 OR fourth_down_failed = 1)                 AS fourth_down_att,
  COUNT_IF(fourth_down_converted = 1)                                           AS fourth_down_conv,
  COUNT(DISTINCT CASE WHEN yardline_100 <= 20 THEN game_id || '-' || CAST(drive AS VARCHAR) END) AS red_zone_drives,
  COUNT(DISTINCT CASE WHEN yardline_100 <= 20 AND touchdown THEN game_id || '-' || CAST(drive AS VARCHAR) END) AS red_zone_td_drives,
  COUNT_IF(play_type IN ('run','pass') AND yards_gained >= 20)                  AS explosive_plays,
  COUNT(DISTINCT game_id)                                                       AS games,
  %d                                                                            AS season
FROM %s.%s
WHERE season = %d
  AND season_type = 'REG'
  AND posteam IS NOT NULL AND posteam <> ''
GROUP BY posteam
`, s.Qualified(), strings.Join(with, ",\n  "), s.Season, s.Database, s.source(), s.Season)
}

func (s Spec) BuildCount() string {
	return fmt.Sprintf(`SELECT COUNT(*) AS rows FROM %s WHERE season=%d`, s.Qualified(), s.Season)
}

// BuildSample lists teams by third-down rate for a quick look in the logs.
func (s Spec) BuildSample() string {
	return fmt.Sprintf(`
SELECT team, third_down_conv, third_down_att,
       ROUND(100.0 * third_down_conv / NULLIF(third_down_att, 0), 1) AS third_down_pct
FROM %s
WHERE season=%d
ORDER BY third_down_pct DESC
LIMIT 32`, s.Qualified(), s.Season)
}
