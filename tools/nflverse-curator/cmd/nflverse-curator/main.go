package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tyler180/nfl-pbp-reports/internal/nflverse"
	"github.com/tyler180/nfl-pbp-reports/internal/store"
	"github.com/tyler180/nfl-pbp-reports/tools/nflverse-curator/internal/app/curator"
)

type Event struct {
	Seasons []int `json:"seasons"`
	Season  int   `json:"season"`
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func seasons(e Event) []int {
	if len(e.Seasons) > 0 {
		return e.Seasons
	}
	if e.Season != 0 {
		return []int{e.Season}
	}
	if s := curator.SeasonFromEnv(); s != 0 {
		return []int{s}
	}
	return []int{2024}
}

func handler(ctx context.Context, e Event) (any, error) {
	bucket := getenv("CURATED_BUCKET", "")
	if bucket == "" {
		return nil, errors.New("CURATED_BUCKET is required")
	}
	prefix := strings.Trim(getenv("CURATED_PREFIX", "nflverse_curated"), "/")

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	svc := &curator.Service{
		NFL: nflverse.NewClient(),
		S3:  store.S3Publisher{Client: s3.NewFromConfig(awsCfg), Bucket: bucket, Prefix: prefix},
	}

	var results []curator.Result
	for _, season := range seasons(e) {
		res, err := svc.Curate(ctx, season)
		if err != nil {
			return nil, fmt.Errorf("season %d: %w", season, err)
		}
		results = append(results, res)
	}
	return map[string]any{
		"ok":      true,
		"results": results,
		"s3":      fmt.Sprintf("s3://%s/%s/pbp/", bucket, prefix),
	}, nil
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	lambda.Start(handler)
}
