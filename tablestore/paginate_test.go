// tablestore/paginate_test.go
package tablestore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/tablestore-toolkit/tablestore"
)

func makeRow(partitionKey, rowKey string) tablestore.Row {
	return tablestore.Row{PartitionKey: partitionKey, RowKey: rowKey}
}

// segmentScript serves the given segments in order, one per fetch.
func segmentScript(mk *tablestore.MockTable, segments []tablestore.Segment) {
	mk.FetchSegmentFn = func(ctx context.Context, q tablestore.Query, token tablestore.ContinuationToken, limit int32) (tablestore.Segment, error) {
		return segments[mk.FetchSegmentCalls-1], nil
	}
}

func TestDrain_WalksEverySegment(t *testing.T) {
	t.Parallel()

	mk := &tablestore.MockTable{}
	segmentScript(mk, []tablestore.Segment{
		{Rows: []tablestore.Row{makeRow("p", "r1"), makeRow("p", "r2")}, NextToken: "t1"},
		{Rows: []tablestore.Row{makeRow("p", "r3"), makeRow("p", "r4")}, NextToken: "t2"},
		{Rows: []tablestore.Row{makeRow("p", "r5")}},
	})

	rows, err := tablestore.Drain(context.Background(), mk, tablestore.Query{})

	require.NoError(t, err)
	require.Len(t, rows, 5)
	for i, row := range rows {
		assert.Equal(t, fmt.Sprintf("r%d", i+1), row.RowKey)
	}
	assert.Equal(t, 3, mk.FetchSegmentCalls)
}

func TestDrain_EmptySegmentWithLiveTokenContinues(t *testing.T) {
	t.Parallel()

	mk := &tablestore.MockTable{}
	segmentScript(mk, []tablestore.Segment{
		{Rows: []tablestore.Row{makeRow("p", "r1")}, NextToken: "t1"},
		{NextToken: "t2"},
		{Rows: []tablestore.Row{makeRow("p", "r2")}},
	})

	rows, err := tablestore.Drain(context.Background(), mk, tablestore.Query{})

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 3, mk.FetchSegmentCalls)
}

func TestDrain_TakeCountShrinksBudgetAndStopsEarly(t *testing.T) {
	t.Parallel()

	mk := &tablestore.MockTable{}
	var limits []int32
	segments := []tablestore.Segment{
		{Rows: []tablestore.Row{makeRow("p", "r1"), makeRow("p", "r2")}, NextToken: "t1"},
		{Rows: []tablestore.Row{makeRow("p", "r3")}, NextToken: "t2"},
		{Rows: []tablestore.Row{makeRow("p", "r4")}, NextToken: "t3"},
	}
	mk.FetchSegmentFn = func(ctx context.Context, q tablestore.Query, token tablestore.ContinuationToken, limit int32) (tablestore.Segment, error) {
		limits = append(limits, limit)
		return segments[mk.FetchSegmentCalls-1], nil
	}

	rows, err := tablestore.Drain(context.Background(), mk, tablestore.Query{TakeCount: aws.Int32(3)})

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "r3", rows[2].RowKey)
	// Two fetches reach the bound; a third would overshoot it.
	assert.Equal(t, 2, mk.FetchSegmentCalls)
	assert.Equal(t, []int32{3, 1}, limits)
}

func TestDrain_TruncatesOverdeliveringSegment(t *testing.T) {
	t.Parallel()

	mk := &tablestore.MockTable{}
	segmentScript(mk, []tablestore.Segment{
		{Rows: []tablestore.Row{makeRow("p", "r1"), makeRow("p", "r2"), makeRow("p", "r3")}, NextToken: "t1"},
	})

	rows, err := tablestore.Drain(context.Background(), mk, tablestore.Query{TakeCount: aws.Int32(2)})

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, mk.FetchSegmentCalls)
}

func TestDrain_ZeroTakeCountIssuesNoFetch(t *testing.T) {
	t.Parallel()

	mk := &tablestore.MockTable{}

	rows, err := tablestore.Drain(context.Background(), mk, tablestore.Query{TakeCount: aws.Int32(0)})

	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 0, mk.FetchSegmentCalls)
}

func TestDrain_CancellationBetweenSegmentsKeepsPartialRows(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mk := &tablestore.MockTable{}
	mk.FetchSegmentFn = func(ctx context.Context, q tablestore.Query, token tablestore.ContinuationToken, limit int32) (tablestore.Segment, error) {
		// The caller cancels while the first segment is being delivered; the
		// segment itself still lands.
		cancel()
		return tablestore.Segment{
			Rows:      []tablestore.Row{makeRow("p", "r1"), makeRow("p", "r2")},
			NextToken: "t1",
		}, nil
	}

	rows, err := tablestore.Drain(ctx, mk, tablestore.Query{})

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, mk.FetchSegmentCalls)
}

func TestDrain_CancelledBeforeFirstFetch(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mk := &tablestore.MockTable{}

	rows, err := tablestore.Drain(ctx, mk, tablestore.Query{})

	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 0, mk.FetchSegmentCalls)
}

func TestDrain_StoreFaultAbortsWithoutPartialResult(t *testing.T) {
	t.Parallel()

	mk := &tablestore.MockTable{}
	mk.FetchSegmentFn = func(ctx context.Context, q tablestore.Query, token tablestore.ContinuationToken, limit int32) (tablestore.Segment, error) {
		if mk.FetchSegmentCalls == 1 {
			return tablestore.Segment{Rows: []tablestore.Row{makeRow("p", "r1")}, NextToken: "t1"}, nil
		}
		return tablestore.Segment{}, errors.New("connection reset")
	}

	rows, err := tablestore.Drain(context.Background(), mk, tablestore.Query{})

	require.Error(t, err)
	assert.True(t, tablestore.IsStoreUnavailable(err))
	assert.Nil(t, rows)

	var fault *tablestore.StoreUnavailableError
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, "fetch", fault.Op)
}

func TestDrain_NilTableFailsBeforeAnyFetch(t *testing.T) {
	t.Parallel()

	rows, err := tablestore.Drain(context.Background(), nil, tablestore.Query{})

	require.Error(t, err)
	assert.True(t, tablestore.IsInvalidArgument(err))
	assert.Nil(t, rows)
}

func TestDrainFrom_ResumesFromGivenToken(t *testing.T) {
	t.Parallel()

	mk := &tablestore.MockTable{}
	var seen []tablestore.ContinuationToken
	mk.FetchSegmentFn = func(ctx context.Context, q tablestore.Query, token tablestore.ContinuationToken, limit int32) (tablestore.Segment, error) {
		seen = append(seen, token)
		if mk.FetchSegmentCalls == 1 {
			return tablestore.Segment{Rows: []tablestore.Row{makeRow("p", "r4")}, NextToken: "t4"}, nil
		}
		return tablestore.Segment{Rows: []tablestore.Row{makeRow("p", "r5")}}, nil
	}

	rows, next, err := tablestore.DrainFrom(context.Background(), mk, tablestore.Query{}, "t3")

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []tablestore.ContinuationToken{"t3", "t4"}, seen)
	assert.Empty(t, next, "an exhausted drain carries no resume token")
}

func TestDrainFrom_TakeCountStopReturnsLiveToken(t *testing.T) {
	t.Parallel()

	mk := &tablestore.MockTable{}
	segmentScript(mk, []tablestore.Segment{
		{Rows: []tablestore.Row{makeRow("p", "r1"), makeRow("p", "r2")}, NextToken: "t1"},
		{Rows: []tablestore.Row{makeRow("p", "r3")}},
	})

	q := tablestore.Query{TakeCount: aws.Int32(2)}
	rows, next, err := tablestore.DrainFrom(context.Background(), mk, q, "")

	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, tablestore.ContinuationToken("t1"), next)

	// Feeding the token back picks up exactly where the budget stopped.
	rest, next, err := tablestore.DrainFrom(context.Background(), mk, q, next)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "r3", rest[0].RowKey)
	assert.Empty(t, next)
}

func TestDrainFrom_CancellationReturnsResumeToken(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mk := &tablestore.MockTable{}
	mk.FetchSegmentFn = func(ctx context.Context, q tablestore.Query, token tablestore.ContinuationToken, limit int32) (tablestore.Segment, error) {
		cancel()
		return tablestore.Segment{
			Rows:      []tablestore.Row{makeRow("p", "r1")},
			NextToken: "t1",
		}, nil
	}

	rows, next, err := tablestore.DrainFrom(ctx, mk, tablestore.Query{}, "")

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, tablestore.ContinuationToken("t1"), next,
		"a cancelled drain stays resumable from the next segment")
	assert.Equal(t, 1, mk.FetchSegmentCalls)
}

func TestDrainDistinct_CollapsesRetriedRows(t *testing.T) {
	t.Parallel()

	mk := &tablestore.MockTable{}
	segmentScript(mk, []tablestore.Segment{
		{Rows: []tablestore.Row{makeRow("p", "r1"), makeRow("p", "r2")}, NextToken: "t1"},
		// A transport-level retry delivered r2 again in the next segment.
		{Rows: []tablestore.Row{makeRow("p", "r2"), makeRow("p", "r3")}},
	})

	set, err := tablestore.DrainDistinct(context.Background(), mk, tablestore.Query{})

	require.NoError(t, err)
	require.Equal(t, 3, set.Len())
	rows := set.Rows()
	assert.Equal(t, "r1", rows[0].RowKey)
	assert.Equal(t, "r2", rows[1].RowKey)
	assert.Equal(t, "r3", rows[2].RowKey)
}
