package pbpreport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"

	"github.com/tyler180/nfl-pbp-reports/internal/config"
	"github.com/tyler180/nfl-pbp-reports/internal/store"
	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// sink receives a finished run's records and local artifact files.
type sink interface {
	Name() string
	Publish(ctx context.Context, runID string, recs []summary.Record, files []string) error
	Close() error
}

type sinkFactory func(ctx context.Context, cfg *config.Config) ([]sink, error)

type sqliteSink struct{ db *store.SQLite }

func (s sqliteSink) Name() string { return "sqlite" }
func (s sqliteSink) Close() error { return s.db.Close() }
func (s sqliteSink) Publish(ctx context.Context, _ string, recs []summary.Record, _ []string) error {
	return s.db.Save(ctx, recs)
}

type dynamoSink struct {
	client store.DynamoDBAPI
	table  string
}

func (s dynamoSink) Name() string { return "dynamodb" }
func (s dynamoSink) Close() error { return nil }
func (s dynamoSink) Publish(ctx context.Context, _ string, recs []summary.Record, _ []string) error {
	return store.PutRecords(ctx, s.client, s.table, recs)
}

type s3Sink struct{ pub store.S3Publisher }

func (s s3Sink) Name() string { return "s3" }
func (s s3Sink) Close() error { return nil }
func (s s3Sink) Publish(ctx context.Context, runID string, recs []summary.Record, files []string) error {
	if _, err := s.pub.PutRecords(ctx, runID, recs); err != nil {
		return err
	}
	_, err := s.pub.UploadFiles(ctx, runID, files)
	return err
}

type redisSink struct {
	client *redis.Client
	w      *store.RedisWriter
}

func (s redisSink) Name() string { return "redis" }
func (s redisSink) Close() error { return s.client.Close() }
func (s redisSink) Publish(ctx context.Context, _ string, recs []summary.Record, _ []string) error {
	return s.w.Write(ctx, recs)
}

func loadAWS(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWS.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWS.Region))
	}
	ac, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return ac, nil
}

// defaultSinks opens every configured sink. AWS config is loaded once and
// only when an AWS sink is requested.
func defaultSinks(ctx context.Context, cfg *config.Config) ([]sink, error) {
	var (
		out   []sink
		ac    aws.Config
		acSet bool
	)
	awsCfg := func() (aws.Config, error) {
		if acSet {
			return ac, nil
		}
		var err error
		ac, err = loadAWS(ctx, cfg)
		acSet = err == nil
		return ac, err
	}
	fail := func(err error) ([]sink, error) {
		closeAll(out)
		return nil, err
	}

	for _, name := range cfg.Publish.Sinks {
		switch name {
		case "sqlite":
			db, err := store.OpenSQLite(cfg.Publish.SQLitePath)
			if err != nil {
				return fail(err)
			}
			out = append(out, sqliteSink{db: db})
		case "dynamodb":
			ac, err := awsCfg()
			if err != nil {
				return fail(err)
			}
			out = append(out, dynamoSink{client: dynamodb.NewFromConfig(ac), table: cfg.AWS.DynamoTable})
		case "s3":
			ac, err := awsCfg()
			if err != nil {
				return fail(err)
			}
			out = append(out, s3Sink{pub: store.S3Publisher{Client: s3.NewFromConfig(ac), Bucket: cfg.AWS.Bucket, Prefix: cfg.AWS.Prefix}})
		case "redis":
			client, err := store.NewRedisClient(cfg.Redis.URL)
			if err != nil {
				return fail(err)
			}
			out = append(out, redisSink{client: client, w: store.NewRedisWriter(client, cfg.Redis.TTL)})
		default:
			return fail(fmt.Errorf("unknown publish sink %q", name))
		}
	}
	return out, nil
}

func closeAll(sinks []sink) {
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			slog.Warn("sink close failed", "sink", s.Name(), "err", err)
		}
	}
}

// publish sends recs to every configured sink. One failing sink does not
// stop the others.
func (r *runtime) publish(ctx context.Context, runID string, recs []summary.Record, files []string) error {
	if len(r.cfg.Publish.Sinks) == 0 || len(recs) == 0 {
		return nil
	}
	sinks, err := r.sinks(ctx, r.cfg)
	if err != nil {
		return err
	}
	defer closeAll(sinks)

	var errs []error
	for _, s := range sinks {
		if err := s.Publish(ctx, runID, recs, files); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", s.Name(), err))
			continue
		}
		slog.Info("published", "sink", s.Name(), "run_id", runID, "records", len(recs))
	}
	return errors.Join(errs...)
}
