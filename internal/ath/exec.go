package ath

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
)

// AthenaAPI is the subset of the Athena client the runner uses.
type AthenaAPI interface {
	StartQueryExecution(ctx context.Context, in *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, in *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, in *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

type Runner struct {
	Client    AthenaAPI
	Workgroup string
	Database  string
	OutputS3  string // s3://bucket/prefix/, optional when the workgroup sets one
	Poll      time.Duration
	Logger    *slog.Logger
}

func (r *Runner) log() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Runner) ExecAndWait(ctx context.Context, sql string) (*types.QueryExecution, error) {
	in := &athena.StartQueryExecutionInput{
		QueryString:           aws.String(sql),
		QueryExecutionContext: &types.QueryExecutionContext{Database: aws.String(r.Database)},
	}
	if r.Workgroup != "" {
		in.WorkGroup = aws.String(r.Workgroup)
	}
	if r.OutputS3 != "" {
		in.ResultConfiguration = &types.ResultConfiguration{OutputLocation: aws.String(r.OutputS3)}
	}
	startOut, err := r.Client.StartQueryExecution(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("start query: %w", err)
	}
	qid := aws.ToString(startOut.QueryExecutionId)
	r.log().Debug("athena query started", "qid", qid)

	poll := r.Poll
	if poll <= 0 {
		poll = time.Second
	}
	tick := time.NewTicker(poll)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-tick.C:
		}
		ge, err := r.Client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{QueryExecutionId: aws.String(qid)})
		if err != nil {
			return nil, fmt.Errorf("get query execution: %w", err)
		}
		qe := ge.QueryExecution
		switch qe.Status.State {
		case types.QueryExecutionStateSucceeded:
			var scannedMB, execSec float64
			if st := qe.Statistics; st != nil {
				scannedMB = float64(aws.ToInt64(st.DataScannedInBytes)) / 1024 / 1024
				execSec = float64(aws.ToInt64(st.EngineExecutionTimeInMillis)) / 1000
			}
			r.log().Info("athena query succeeded", "qid", qid, "scanned_mb", scannedMB, "exec_s", execSec)
			return qe, nil
		case types.QueryExecutionStateFailed:
			return nil, fmt.Errorf("athena failed: %s", aws.ToString(qe.Status.StateChangeReason))
		case types.QueryExecutionStateCancelled:
			return nil, errors.New("athena cancelled")
		}
	}
}

// QueryRows runs sql and returns the result rows after the header row.
func (r *Runner) QueryRows(ctx context.Context, sql string) ([][]string, error) {
	exec, err := r.ExecAndWait(ctx, sql)
	if err != nil {
		return nil, err
	}
	var out [][]string
	var token *string
	header := true
	for {
		gr, err := r.Client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
			QueryExecutionId: exec.QueryExecutionId,
			NextToken:        token,
		})
		if err != nil {
			return nil, fmt.Errorf("get results: %w", err)
		}
		for _, row := range gr.ResultSet.Rows {
			if header {
				header = false
				continue
			}
			vals := make([]string, len(row.Data))
			for i, d := range row.Data {
				vals[i] = aws.ToString(d.VarCharValue)
			}
			out = append(out, vals)
		}
		if gr.NextToken == nil {
			return out, nil
		}
		token = gr.NextToken
	}
}

func (r *Runner) CountRows(ctx context.Context, sql string) (int64, error) {
	rows, err := r.QueryRows(ctx, sql)
	if err != nil {
		return 0, err
	}
	if len(rows) < 1 || len(rows[0]) < 1 {
		return 0, errors.New("unexpected COUNT(*) result shape")
	}
	var n int64
	if _, err := fmt.Sscan(rows[0][0], &n); err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return n, nil
}
