package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads run artifacts under Prefix/runID/.
type S3Publisher struct {
	Client S3API
	Bucket string
	Prefix string
}

func (p S3Publisher) key(runID, name string) string {
	return path.Join(strings.Trim(p.Prefix, "/"), runID, name)
}

func contentType(name string) string {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".parquet":
		return "application/vnd.apache.parquet"
	case ".jsonl":
		return "application/x-ndjson"
	case "":
		return "application/octet-stream"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return "application/octet-stream"
}

func (p S3Publisher) put(ctx context.Context, key string, body []byte) error {
	_, err := p.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType(key)),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", p.Bucket, key, err)
	}
	return nil
}

// Put stores body at Prefix/rel and returns the full key.
func (p S3Publisher) Put(ctx context.Context, rel string, body []byte) (string, error) {
	k := path.Join(strings.Trim(p.Prefix, "/"), rel)
	return k, p.put(ctx, k, body)
}

// UploadFiles copies local files (charts, exports) to the run's prefix and
// returns their keys.
func (p S3Publisher) UploadFiles(ctx context.Context, runID string, files []string) ([]string, error) {
	keys := make([]string, 0, len(files))
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return keys, err
		}
		k := p.key(runID, filepath.Base(f))
		if err := p.put(ctx, k, b); err != nil {
			return keys, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// PutRecords writes recs as JSON lines to <prefix>/<runID>/records.jsonl.
func (p S3Publisher) PutRecords(ctx context.Context, runID string, recs []summary.Record) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return "", err
		}
	}
	k := p.key(runID, "records.jsonl")
	return k, p.put(ctx, k, buf.Bytes())
}
