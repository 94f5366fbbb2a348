package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"

	"github.com/tyler180/nfl-pbp-reports/internal/ath"
	"github.com/tyler180/nfl-pbp-reports/internal/materializer"
)

type Event struct {
	Season int `json:"season"` // optional; falls back to env
}

type Response struct {
	OK       bool     `json:"ok"`
	Season   int      `json:"season"`
	Table    string   `json:"table"`
	QueryIDs []string `json:"query_ids"`
	RowCount int64    `json:"row_count"`
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func seasonOf(e Event) int {
	if e.Season != 0 {
		return e.Season
	}
	if n, err := strconv.Atoi(getenv("SEASON", "")); err == nil {
		return n
	}
	return time.Now().Year()
}

func handler(ctx context.Context, raw json.RawMessage) (*Response, error) {
	var evt Event
	_ = json.Unmarshal(raw, &evt)

	out := getenv("ATHENA_OUTPUT", "")
	if out == "" {
		return nil, errors.New("ATHENA_OUTPUT is required")
	}
	spec := materializer.Spec{
		Database: getenv("ATHENA_DB", "nflverse_curated"),
		Source:   getenv("SOURCE_TABLE", materializer.DefaultSource),
		Table:    getenv("SERVE_TABLE", materializer.DefaultTable),
		Location: strings.TrimRight(out, "/") + "/serve",
		Season:   seasonOf(evt),
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	log := slog.Default().With("season", spec.Season, "table", spec.Qualified())
	r := &ath.Runner{
		Client:    athena.NewFromConfig(cfg),
		Workgroup: getenv("ATHENA_WORKGROUP", "primary"),
		Database:  spec.Database,
		OutputS3:  out,
		Logger:    log,
	}

	var qids []string
	log.Info("dropping table")
	if qe, err := r.ExecAndWait(ctx, spec.BuildDrop()); err != nil {
		log.Warn("drop table failed", "err", err)
	} else {
		qids = append(qids, aws.ToString(qe.QueryExecutionId))
	}

	log.Info("creating table via CTAS")
	qe, err := r.ExecAndWait(ctx, spec.BuildCTAS())
	if err != nil {
		return nil, fmt.Errorf("create CTAS: %w", err)
	}
	qids = append(qids, aws.ToString(qe.QueryExecutionId))

	count, err := r.CountRows(ctx, spec.BuildCount())
	if err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}
	if rows, err := r.QueryRows(ctx, spec.BuildSample()); err == nil {
		for _, row := range rows {
			log.Debug("sample", "row", strings.Join(row, ","))
		}
	}
	log.Info("materialized", "rows", count)

	return &Response{
		OK:       true,
		Season:   spec.Season,
		Table:    spec.Qualified(),
		QueryIDs: qids,
		RowCount: count,
	}, nil
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
	lambda.Start(handler)
}
