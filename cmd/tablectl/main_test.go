package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/tablestore-toolkit/tablestore"
	"github.com/raywall/tablestore-toolkit/tools/emulator/memtable"
)

func TestRunPutGetDelete_RoundTrip(t *testing.T) {
	ctx := context.Background()
	table := memtable.New(10)

	err := runPut(ctx, table, "tenant-1", "ada", `{"name": "Ada", "age": 36}`, tablestore.ModeInsert, tablestore.UnconditionalStamp)
	require.NoError(t, err)

	require.NoError(t, runGet(ctx, table, "tenant-1", "ada"))

	require.NoError(t, runDelete(ctx, table, "tenant-1", "ada", tablestore.UnconditionalStamp))
	assert.Error(t, runGet(ctx, table, "tenant-1", "ada"))
}

func TestRunPut_RejectsBadJSON(t *testing.T) {
	table := memtable.New(10)
	err := runPut(context.Background(), table, "p", "r", `not json`, tablestore.ModeInsert, tablestore.UnconditionalStamp)
	assert.Error(t, err)
}

func TestRunPut_SurfacesRefusedWrites(t *testing.T) {
	ctx := context.Background()
	table := memtable.New(10)

	require.NoError(t, runPut(ctx, table, "p", "r", `{}`, tablestore.ModeInsert, tablestore.UnconditionalStamp))
	err := runPut(ctx, table, "p", "r", `{}`, tablestore.ModeInsert, tablestore.UnconditionalStamp)
	assert.ErrorContains(t, err, "409")
}

func TestRunQuery_FilterAndTake(t *testing.T) {
	ctx := context.Background()
	table := memtable.New(2)

	require.NoError(t, runPut(ctx, table, "t", "a", `{"status": "active"}`, tablestore.ModeInsert, tablestore.UnconditionalStamp))
	require.NoError(t, runPut(ctx, table, "t", "b", `{"status": "blocked"}`, tablestore.ModeInsert, tablestore.UnconditionalStamp))
	require.NoError(t, runPut(ctx, table, "t", "c", `{"status": "active"}`, tablestore.ModeInsert, tablestore.UnconditionalStamp))

	require.NoError(t, runQuery(ctx, table, `row.fields.status == "active"`, 0, false))
	require.NoError(t, runQuery(ctx, table, "", 2, true))
}
