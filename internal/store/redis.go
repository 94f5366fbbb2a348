package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// DefaultRedisTTL keeps published records for a day.
const DefaultRedisTTL = 24 * time.Hour

// RedisWriter publishes the latest records of each report/subject as a hash
// keyed by scope#metric.
type RedisWriter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisWriter(client *redis.Client, ttl time.Duration) *RedisWriter {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisWriter{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// RecordsKey is the hash holding one report/subject's records.
func RecordsKey(report, subject string) string {
	return fmt.Sprintf("pbp:%s:%s:records", report, subject)
}

// RunKey holds the id of the run that last wrote report/subject.
func RunKey(report, subject string) string {
	return fmt.Sprintf("pbp:%s:%s:run", report, subject)
}

// groupRecords splits recs by Record.Key, keeping first-seen order.
func groupRecords(recs []summary.Record) ([]string, map[string][]summary.Record) {
	var order []string
	groups := map[string][]summary.Record{}
	for _, r := range recs {
		if r.Report == "" || r.Subject == "" {
			continue
		}
		k := r.Key()
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}
	return order, groups
}

// Write replaces each report/subject hash with recs.
func (w *RedisWriter) Write(ctx context.Context, recs []summary.Record) error {
	order, groups := groupRecords(recs)
	if len(order) == 0 {
		return nil
	}
	pipe := w.client.Pipeline()
	for _, k := range order {
		g := groups[k]
		key := RecordsKey(g[0].Report, g[0].Subject)
		fields := make([]interface{}, 0, 2*len(g))
		for _, r := range g {
			data, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("marshaling record: %w", err)
			}
			fields = append(fields, r.SortKey(), data)
		}
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields...)
		pipe.Expire(ctx, key, w.ttl)
		pipe.Set(ctx, RunKey(g[0].Report, g[0].Subject), g[0].RunID, w.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Read returns the published records for report/subject.
func (w *RedisWriter) Read(ctx context.Context, report, subject string) ([]summary.Record, error) {
	vals, err := w.client.HGetAll(ctx, RecordsKey(report, subject)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]summary.Record, 0, len(vals))
	for _, v := range vals {
		var r summary.Record
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			return nil, fmt.Errorf("unmarshaling record: %w", err)
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortKey() < out[j].SortKey() })
	return out, nil
}
