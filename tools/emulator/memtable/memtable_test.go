package memtable_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/tablestore-toolkit/tablestore"
	"github.com/raywall/tablestore-toolkit/tools/emulator/memtable"
)

func seedTable(t *testing.T, size, count int) *memtable.Table {
	t.Helper()
	table := memtable.New(size)
	for i := 0; i < count; i++ {
		row := tablestore.Row{
			PartitionKey: "tenant-1",
			RowKey:       fmt.Sprintf("row-%03d", i),
			Fields: map[string]types.AttributeValue{
				"seq": &types.AttributeValueMemberN{Value: fmt.Sprint(i)},
			},
		}
		out, err := table.PutRow(context.Background(), row, tablestore.ModeInsert)
		require.NoError(t, err)
		require.True(t, out.Ok())
	}
	return table
}

func TestFetchSegment_CutsByConfiguredSize(t *testing.T) {
	t.Parallel()

	table := seedTable(t, 4, 10)

	seg, err := table.FetchSegment(context.Background(), tablestore.Query{}, "", 0)
	require.NoError(t, err)
	assert.Len(t, seg.Rows, 4)
	assert.NotEmpty(t, seg.NextToken)
}

func TestFetchSegment_ChainsThroughDrain(t *testing.T) {
	t.Parallel()

	table := seedTable(t, 3, 10)

	rows, err := tablestore.Drain(context.Background(), table, tablestore.Query{})
	require.NoError(t, err)
	require.Len(t, rows, 10)
	for i, row := range rows {
		assert.Equal(t, fmt.Sprintf("row-%03d", i), row.RowKey)
	}
}

func TestFetchSegment_LastSegmentHasNoToken(t *testing.T) {
	t.Parallel()

	table := seedTable(t, 5, 5)

	seg, err := table.FetchSegment(context.Background(), tablestore.Query{}, "", 0)
	require.NoError(t, err)
	assert.Len(t, seg.Rows, 5)
	assert.Empty(t, seg.NextToken)
}

func TestFetchSegment_RejectsMalformedToken(t *testing.T) {
	t.Parallel()

	table := seedTable(t, 5, 5)

	_, err := table.FetchSegment(context.Background(), tablestore.Query{}, "not-base64!", 0)
	assert.True(t, tablestore.IsInvalidArgument(err))
}

func TestGetByKey(t *testing.T) {
	t.Parallel()

	table := seedTable(t, 5, 3)

	row, err := table.GetByKey(context.Background(), "tenant-1", "row-001")
	require.NoError(t, err)
	assert.Equal(t, "row-001", row.RowKey)
	assert.NotEmpty(t, row.Stamp)

	_, err = table.GetByKey(context.Background(), "tenant-1", "missing")
	assert.ErrorIs(t, err, tablestore.ErrNotFound)
}

func TestPutRow_InsertConflictsOnSecondWrite(t *testing.T) {
	t.Parallel()

	table := memtable.New(5)
	row := tablestore.Row{PartitionKey: "p", RowKey: "r"}

	first, err := table.PutRow(context.Background(), row, tablestore.ModeInsert)
	require.NoError(t, err)
	assert.Equal(t, tablestore.StatusCreated, first.StatusCode)

	second, err := table.PutRow(context.Background(), row, tablestore.ModeInsert)
	require.NoError(t, err)
	assert.Equal(t, tablestore.StatusConflict, second.StatusCode)
	assert.Equal(t, 1, table.Len())
}

func TestPutRow_MergeOverlaysAndRotatesStamp(t *testing.T) {
	t.Parallel()

	table := memtable.New(5)
	base := tablestore.Row{
		PartitionKey: "p",
		RowKey:       "r",
		Fields: map[string]types.AttributeValue{
			"name":   &types.AttributeValueMemberS{Value: "Ada"},
			"status": &types.AttributeValueMemberS{Value: "active"},
		},
	}
	created, err := table.PutRow(context.Background(), base, tablestore.ModeInsert)
	require.NoError(t, err)

	overlay := tablestore.Row{
		PartitionKey: "p",
		RowKey:       "r",
		Stamp:        created.Stamp,
		Fields: map[string]types.AttributeValue{
			"status": &types.AttributeValueMemberS{Value: "blocked"},
		},
	}
	merged, err := table.PutRow(context.Background(), overlay, tablestore.ModeMerge)
	require.NoError(t, err)
	require.True(t, merged.Ok())
	assert.NotEqual(t, created.Stamp, merged.Stamp)

	row, err := table.GetByKey(context.Background(), "p", "r")
	require.NoError(t, err)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "Ada"}, row.Fields["name"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "blocked"}, row.Fields["status"])
}

func TestPutRow_StampedModesEnforceThePrecondition(t *testing.T) {
	t.Parallel()

	table := memtable.New(5)
	row := tablestore.Row{PartitionKey: "p", RowKey: "r"}
	_, err := table.PutRow(context.Background(), row, tablestore.ModeInsert)
	require.NoError(t, err)

	row.Stamp = "stale"
	for _, mode := range []tablestore.WriteMode{tablestore.ModeMerge, tablestore.ModeReplace} {
		out, err := table.PutRow(context.Background(), row, mode)
		require.NoError(t, err)
		assert.Equal(t, tablestore.StatusPreconditionFailed, out.StatusCode, string(mode))
	}

	// Replace of an absent row fails the same way.
	ghost := tablestore.Row{PartitionKey: "p", RowKey: "ghost", Stamp: tablestore.UnconditionalStamp}
	out, err := table.PutRow(context.Background(), ghost, tablestore.ModeReplace)
	require.NoError(t, err)
	assert.Equal(t, tablestore.StatusPreconditionFailed, out.StatusCode)
}

func TestPutRow_InsertOrVariantsNeverFail(t *testing.T) {
	t.Parallel()

	table := memtable.New(5)
	row := tablestore.Row{PartitionKey: "p", RowKey: "r"}

	out, err := table.PutRow(context.Background(), row, tablestore.ModeInsertOrReplace)
	require.NoError(t, err)
	assert.True(t, out.Ok())

	out, err = table.PutRow(context.Background(), row, tablestore.ModeInsertOrMerge)
	require.NoError(t, err)
	assert.True(t, out.Ok())
	assert.Equal(t, 1, table.Len())
}

func TestDeleteRow(t *testing.T) {
	t.Parallel()

	table := memtable.New(5)
	row := tablestore.Row{PartitionKey: "p", RowKey: "r"}
	created, err := table.PutRow(context.Background(), row, tablestore.ModeInsert)
	require.NoError(t, err)

	out, err := table.DeleteRow(context.Background(), "p", "r", "wrong")
	require.NoError(t, err)
	assert.Equal(t, tablestore.StatusPreconditionFailed, out.StatusCode)
	assert.Equal(t, 1, table.Len())

	out, err = table.DeleteRow(context.Background(), "p", "r", created.Stamp)
	require.NoError(t, err)
	assert.True(t, out.Ok())
	assert.Equal(t, 0, table.Len())

	// Unconditional delete of an absent row still succeeds.
	out, err = table.DeleteRow(context.Background(), "p", "r", tablestore.UnconditionalStamp)
	require.NoError(t, err)
	assert.True(t, out.Ok())
}
