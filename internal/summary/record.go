// Package summary defines the flat record every report emits alongside its
// text, so results can be exported or published without knowing the report.
package summary

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tyler180/nfl-pbp-reports/internal/stats"
)

// Record is one computed number.
type Record struct {
	RunID       string  `json:"run_id" parquet:"run_id" dynamodbav:"run_id"`
	Report      string  `json:"report" parquet:"report" dynamodbav:"report"`
	Subject     string  `json:"subject" parquet:"subject" dynamodbav:"subject"`
	Scope       string  `json:"scope" parquet:"scope" dynamodbav:"scope"`
	Metric      string  `json:"metric" parquet:"metric" dynamodbav:"metric"`
	Numerator   int     `json:"numerator" parquet:"numerator" dynamodbav:"numerator"`
	Denominator int     `json:"denominator" parquet:"denominator" dynamodbav:"denominator"`
	Value       float64 `json:"value" parquet:"value" dynamodbav:"value"`
	Rank        int     `json:"rank,omitempty" parquet:"rank" dynamodbav:"rank,omitempty"`
	Peers       int     `json:"peers,omitempty" parquet:"peers" dynamodbav:"peers,omitempty"`
	CreatedAt   int64   `json:"created_at" parquet:"created_at" dynamodbav:"created_at"`
}

// Rate builds a record from a zero-guarded rate.
func Rate(report, subject, scope, metric string, r stats.Rate) Record {
	return Record{
		Report: report, Subject: subject, Scope: scope, Metric: metric,
		Numerator: r.Num, Denominator: r.Den, Value: r.Pct(),
	}
}

// Value builds a record for a plain number.
func Value(report, subject, scope, metric string, v float64) Record {
	return Record{Report: report, Subject: subject, Scope: scope, Metric: metric, Value: v}
}

func (r Record) WithRank(rank, peers int) Record {
	r.Rank, r.Peers = rank, peers
	return r
}

// Key is the partition key used by the key-value sinks.
func (r Record) Key() string { return r.Report + "#" + r.Subject }

// SortKey orders a subject's records by scope then metric.
func (r Record) SortKey() string { return r.Scope + "#" + r.Metric }

// Season formats a season as a record scope.
func Season(year int) string { return strconv.Itoa(year) }

// Stamp sets run id and creation time on every record in place.
func Stamp(recs []Record, runID string, now time.Time) {
	for i := range recs {
		recs[i].RunID = runID
		recs[i].CreatedAt = now.Unix()
	}
}

func (r Record) String() string {
	s := fmt.Sprintf("%s %s %s %s=%.3f", r.Report, r.Subject, r.Scope, r.Metric, r.Value)
	if r.Denominator > 0 {
		s += fmt.Sprintf(" (%d/%d)", r.Numerator, r.Denominator)
	}
	if r.Rank > 0 {
		s += fmt.Sprintf(" rank %d/%d", r.Rank, r.Peers)
	}
	return s
}
