package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// Summary table layout: PK=ReportSubject (S) "report#subject",
// SK=ScopeMetric (S) "scope#metric". One item per metric, overwritten by
// the latest run.
const (
	pkAttr = "ReportSubject"
	skAttr = "ScopeMetric"

	// latestSK holds the run pointer for a report/subject.
	latestSK = "#LATEST"
)

type DynamoDBAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

type DynamoDBReadAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

func recordItem(r summary.Record) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(r)
	if err != nil {
		return nil, err
	}
	item[pkAttr] = &types.AttributeValueMemberS{Value: r.Key()}
	item[skAttr] = &types.AttributeValueMemberS{Value: r.SortKey()}
	return item, nil
}

// PutRecords writes records 25 at a time and then moves the latest-run
// pointer of every report/subject it touched.
func PutRecords(ctx context.Context, ddb DynamoDBAPI, table string, recs []summary.Record) error {
	if len(recs) == 0 {
		return nil
	}
	const maxBatch = 25

	recs = lastPerItem(recs)
	for i := 0; i < len(recs); i += maxBatch {
		end := i + maxBatch
		if end > len(recs) {
			end = len(recs)
		}

		reqs := make([]types.WriteRequest, 0, end-i)
		for _, r := range recs[i:end] {
			if r.Report == "" || r.Subject == "" {
				continue
			}
			item, err := recordItem(r)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", r.Key(), err)
			}
			reqs = append(reqs, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}
		if len(reqs) == 0 {
			continue
		}
		if err := batchWriteWithRetry(ctx, ddb, table, reqs); err != nil {
			return fmt.Errorf("batch write summary records: %w", err)
		}
	}

	seen := map[string]bool{}
	for _, r := range recs {
		if r.Report == "" || r.Subject == "" || seen[r.Key()] {
			continue
		}
		seen[r.Key()] = true
		if err := MarkLatestRun(ctx, ddb, table, r.Report, r.Subject, r.RunID); err != nil {
			return fmt.Errorf("mark latest run %s: %w", r.Key(), err)
		}
	}
	return nil
}

// lastPerItem drops all but the last record for each table item. A batch
// may not carry the same key twice.
func lastPerItem(recs []summary.Record) []summary.Record {
	at := make(map[string]int, len(recs))
	out := make([]summary.Record, 0, len(recs))
	for _, r := range recs {
		k := r.Key() + "|" + r.SortKey()
		if i, ok := at[k]; ok {
			out[i] = r
			continue
		}
		at[k] = len(out)
		out = append(out, r)
	}
	return out
}

func batchWriteWithRetry(ctx context.Context, ddb DynamoDBAPI, table string, reqs []types.WriteRequest) error {
	input := &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{table: reqs},
	}
	const maxAttempts = 6
	backoff := 120 * time.Millisecond

	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err := ddb.BatchWriteItem(ctx, input)
		if err != nil {
			return err
		}
		if len(out.UnprocessedItems) == 0 {
			return nil
		}
		input.RequestItems = out.UnprocessedItems
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 2*time.Second {
			backoff += 120 * time.Millisecond
		}
	}
	return fmt.Errorf("unprocessed items remained after retries for table %s", table)
}

// MarkLatestRun records runID as the newest run for report/subject.
func MarkLatestRun(ctx context.Context, ddb DynamoDBAPI, table, report, subject, runID string) error {
	key := map[string]types.AttributeValue{
		pkAttr: &types.AttributeValueMemberS{Value: report + "#" + subject},
		skAttr: &types.AttributeValueMemberS{Value: latestSK},
	}
	now := strconv.FormatInt(time.Now().Unix(), 10)
	_, err := ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(table),
		Key:              key,
		UpdateExpression: aws.String("SET run_id=:r, updated_at=:now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":r":   &types.AttributeValueMemberS{Value: runID},
			":now": &types.AttributeValueMemberN{Value: now},
		},
	})
	return err
}

// QueryRecords reads every stored record for report/subject, following
// pagination. The run pointer item is skipped.
func QueryRecords(ctx context.Context, ddb DynamoDBReadAPI, table, report, subject string) ([]summary.Record, error) {
	var (
		out     []summary.Record
		lastKey map[string]types.AttributeValue
	)
	for {
		page, err := ddb.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(table),
			KeyConditionExpression:    aws.String("#PK = :pk"),
			ExpressionAttributeNames:  map[string]string{"#PK": pkAttr},
			ExpressionAttributeValues: map[string]types.AttributeValue{":pk": &types.AttributeValueMemberS{Value: report + "#" + subject}},
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, err
		}
		for _, it := range page.Items {
			if getStr(it, skAttr) == latestSK {
				continue
			}
			var r summary.Record
			if err := attributevalue.UnmarshalMap(it, &r); err != nil {
				return nil, fmt.Errorf("unmarshal %s: %w", getStr(it, skAttr), err)
			}
			out = append(out, r)
		}
		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		lastKey = page.LastEvaluatedKey
	}
	return out, nil
}

func getStr(it map[string]types.AttributeValue, k string) string {
	if v, ok := it[k].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}
