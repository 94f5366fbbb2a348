package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	ddb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

// fake client implementing DynamoDBAPI and DynamoDBReadAPI
type fakeDDB struct {
	calls   int
	updates []string
	// simulate first attempt returning unprocessed, second succeeds
	failFirst bool
	items     []map[string]types.AttributeValue
	pages     int
}

func (f *fakeDDB) BatchWriteItem(ctx context.Context, in *ddb.BatchWriteItemInput, _ ...func(*ddb.Options)) (*ddb.BatchWriteItemOutput, error) {
	f.calls++
	if f.failFirst {
		f.failFirst = false
		// Echo back all as unprocessed to force a retry
		return &ddb.BatchWriteItemOutput{
			UnprocessedItems: in.RequestItems,
		}, nil
	}
	for _, reqs := range in.RequestItems {
		for _, r := range reqs {
			f.items = append(f.items, r.PutRequest.Item)
		}
	}
	return &ddb.BatchWriteItemOutput{}, nil
}

func (f *fakeDDB) UpdateItem(ctx context.Context, in *ddb.UpdateItemInput, _ ...func(*ddb.Options)) (*ddb.UpdateItemOutput, error) {
	f.updates = append(f.updates, getStr(in.Key, pkAttr))
	return &ddb.UpdateItemOutput{}, nil
}

// Query serves stored items one per page.
func (f *fakeDDB) Query(ctx context.Context, in *ddb.QueryInput, _ ...func(*ddb.Options)) (*ddb.QueryOutput, error) {
	f.pages++
	start := 0
	if in.ExclusiveStartKey != nil {
		_, _ = fmt.Sscanf(getStr(in.ExclusiveStartKey, "i"), "%d", &start)
	}
	if start >= len(f.items) {
		return &ddb.QueryOutput{}, nil
	}
	out := &ddb.QueryOutput{Items: f.items[start : start+1]}
	if start+1 < len(f.items) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{"i": &types.AttributeValueMemberS{Value: fmt.Sprint(start + 1)}}
	}
	return out, nil
}

func TestPutRecords_BatchingAndRetry(t *testing.T) {
	// 30 records → 25 + 5 batches
	var recs []summary.Record
	for i := 0; i < 30; i++ {
		recs = append(recs, summary.Value("third_down", "BAL", summary.Season(1990+i), "rate", float64(i)))
	}
	recs = append(recs, summary.Record{Metric: "orphan"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	fc := &fakeDDB{failFirst: true}
	require.NoError(t, PutRecords(ctx, fc, "tbl", recs))

	// Each batch is attempted twice on the first, once on the second.
	require.Equal(t, 3, fc.calls)
	require.Len(t, fc.items, 30)
	require.Equal(t, []string{"third_down#BAL"}, fc.updates)

	item := fc.items[0]
	require.Equal(t, "third_down#BAL", getStr(item, pkAttr))
	require.Equal(t, "1990#rate", getStr(item, skAttr))
}

func TestPutRecords_DuplicateKeysKeepLast(t *testing.T) {
	recs := []summary.Record{
		summary.Value("fourth_down", "BAL", "2019-2021", "conversion_rate", 50),
		summary.Value("fourth_down", "BAL", "2022", "conversion_rate", 60),
		summary.Value("fourth_down", "BAL", "2019-2021", "conversion_rate", 55),
	}

	fc := &fakeDDB{}
	require.NoError(t, PutRecords(context.Background(), fc, "tbl", recs))

	require.Equal(t, 1, fc.calls)
	require.Len(t, fc.items, 2)
	seen := map[string]bool{}
	for _, item := range fc.items {
		k := getStr(item, pkAttr) + "|" + getStr(item, skAttr)
		require.False(t, seen[k], "duplicate item %s", k)
		seen[k] = true
	}
	require.Equal(t, "2019-2021#conversion_rate", getStr(fc.items[0], skAttr))
	v, ok := fc.items[0]["value"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	require.Equal(t, "55", v.Value)
}

func TestQueryRecords_Paginates(t *testing.T) {
	fc := &fakeDDB{}
	recs := []summary.Record{
		summary.Value("dominance", "BAL", "2023", "luck", 1.5),
		summary.Value("dominance", "BAL", "2024", "luck", -0.5).WithRank(3, 32),
	}
	require.NoError(t, PutRecords(context.Background(), fc, "tbl", recs))
	fc.items = append(fc.items, map[string]types.AttributeValue{
		pkAttr: &types.AttributeValueMemberS{Value: "dominance#BAL"},
		skAttr: &types.AttributeValueMemberS{Value: latestSK},
	})

	got, err := QueryRecords(context.Background(), fc, "tbl", "dominance", "BAL")
	require.NoError(t, err)
	require.Equal(t, recs, got)
	require.Equal(t, 3, fc.pages)
}
