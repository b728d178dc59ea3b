// Package memtable implements the tablestore.Table contract in memory, for
// local development and tests. Rows live in insertion order; segments are
// cut from that order and chained by opaque offset tokens, so drains against
// a memtable behave like drains against the real store.
//
// Filter expressions are not evaluated; the emulator serves everything.
package memtable

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/raywall/tablestore-toolkit/tablestore"
)

const defaultSegmentSize = 100

// Table is an in-memory partitioned table.
type Table struct {
	mu          sync.RWMutex
	rows        []tablestore.Row
	index       map[string]int
	segmentSize int
}

var _ tablestore.Table = (*Table)(nil)

// New creates an empty table cutting segments of segmentSize rows.
// Sizes below one fall back to the default of 100.
func New(segmentSize int) *Table {
	if segmentSize < 1 {
		segmentSize = defaultSegmentSize
	}
	return &Table{
		index:       make(map[string]int),
		segmentSize: segmentSize,
	}
}

// Len reports how many rows the table holds.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// FetchSegment serves one segment of rows starting at the position encoded
// in token. The limit caps the segment when smaller than the configured
// segment size.
func (t *Table) FetchSegment(ctx context.Context, q tablestore.Query, token tablestore.ContinuationToken, limit int32) (tablestore.Segment, error) {
	offset, err := decodeOffset(token)
	if err != nil {
		return tablestore.Segment{}, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if offset >= len(t.rows) {
		return tablestore.Segment{Rows: []tablestore.Row{}}, nil
	}

	size := t.segmentSize
	if limit > 0 && int(limit) < size {
		size = int(limit)
	}

	end := offset + size
	if end > len(t.rows) {
		end = len(t.rows)
	}

	seg := tablestore.Segment{
		Rows: copyRows(t.rows[offset:end]),
	}
	if end < len(t.rows) {
		seg.NextToken = encodeOffset(end)
	}
	return seg, nil
}

// GetByKey retrieves one row by identity.
func (t *Table) GetByKey(ctx context.Context, partitionKey, rowKey string) (tablestore.Row, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	pos, ok := t.index[indexKey(partitionKey, rowKey)]
	if !ok {
		return tablestore.Row{}, tablestore.ErrNotFound
	}
	return copyRow(t.rows[pos]), nil
}

// PutRow writes row under the given mode, mirroring the store semantics:
// insert conflicts on an existing identity, merge and replace require the
// row and enforce the stamp, the insertOr variants never fail.
func (t *Table) PutRow(ctx context.Context, row tablestore.Row, mode tablestore.WriteMode) (tablestore.Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := indexKey(row.PartitionKey, row.RowKey)
	pos, exists := t.index[key]
	fresh := uuid.NewString()

	switch mode {
	case tablestore.ModeInsert:
		if exists {
			return tablestore.Outcome{StatusCode: tablestore.StatusConflict}, nil
		}
		t.append(row, fresh)
		return tablestore.Outcome{StatusCode: tablestore.StatusCreated, Stamp: fresh}, nil

	case tablestore.ModeMerge:
		if !exists || !stampMatches(t.rows[pos].Stamp, row.Stamp) {
			return tablestore.Outcome{StatusCode: tablestore.StatusPreconditionFailed}, nil
		}
		t.rows[pos] = mergeRow(t.rows[pos], row, fresh)
		return tablestore.Outcome{StatusCode: tablestore.StatusNoContent, Stamp: fresh}, nil

	case tablestore.ModeReplace:
		if !exists || !stampMatches(t.rows[pos].Stamp, row.Stamp) {
			return tablestore.Outcome{StatusCode: tablestore.StatusPreconditionFailed}, nil
		}
		t.rows[pos] = replaceRow(row, fresh)
		return tablestore.Outcome{StatusCode: tablestore.StatusNoContent, Stamp: fresh}, nil

	case tablestore.ModeInsertOrMerge:
		if exists {
			t.rows[pos] = mergeRow(t.rows[pos], row, fresh)
		} else {
			t.append(row, fresh)
		}
		return tablestore.Outcome{StatusCode: tablestore.StatusNoContent, Stamp: fresh}, nil

	case tablestore.ModeInsertOrReplace:
		if exists {
			t.rows[pos] = replaceRow(row, fresh)
		} else {
			t.append(row, fresh)
		}
		return tablestore.Outcome{StatusCode: tablestore.StatusNoContent, Stamp: fresh}, nil

	default:
		return tablestore.Outcome{}, &tablestore.InvalidArgumentError{Label: "mode", Reason: fmt.Sprintf("unknown write mode %q", mode)}
	}
}

// DeleteRow removes the row. A concrete stamp is enforced against the stored
// one; UnconditionalStamp skips the check. Deleting an absent row succeeds
// under UnconditionalStamp and fails the precondition otherwise, like the
// real store.
func (t *Table) DeleteRow(ctx context.Context, partitionKey, rowKey, stamp string) (tablestore.Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := indexKey(partitionKey, rowKey)
	pos, exists := t.index[key]

	if stamp != tablestore.UnconditionalStamp {
		if !exists || t.rows[pos].Stamp != stamp {
			return tablestore.Outcome{StatusCode: tablestore.StatusPreconditionFailed}, nil
		}
	}
	if exists {
		t.remove(key, pos)
	}
	return tablestore.Outcome{StatusCode: tablestore.StatusNoContent}, nil
}

// --- internals ---

func (t *Table) append(row tablestore.Row, stamp string) {
	stored := replaceRow(row, stamp)
	t.rows = append(t.rows, stored)
	t.index[indexKey(row.PartitionKey, row.RowKey)] = len(t.rows) - 1
}

func (t *Table) remove(key string, pos int) {
	t.rows = append(t.rows[:pos], t.rows[pos+1:]...)
	delete(t.index, key)
	for i := pos; i < len(t.rows); i++ {
		t.index[indexKey(t.rows[i].PartitionKey, t.rows[i].RowKey)] = i
	}
}

func stampMatches(stored, given string) bool {
	return given == tablestore.UnconditionalStamp || stored == given
}

func replaceRow(row tablestore.Row, stamp string) tablestore.Row {
	out := copyRow(row)
	out.Stamp = stamp
	return out
}

func mergeRow(stored, overlay tablestore.Row, stamp string) tablestore.Row {
	out := copyRow(stored)
	for name, value := range overlay.Fields {
		if out.Fields == nil {
			out.Fields = make(map[string]types.AttributeValue)
		}
		out.Fields[name] = value
	}
	out.Stamp = stamp
	return out
}

func indexKey(partitionKey, rowKey string) string {
	return partitionKey + "\x00" + rowKey
}

func copyRow(row tablestore.Row) tablestore.Row {
	out := row
	if row.Fields != nil {
		out.Fields = make(map[string]types.AttributeValue, len(row.Fields))
		for k, v := range row.Fields {
			out.Fields[k] = v
		}
	}
	return out
}

func copyRows(rows []tablestore.Row) []tablestore.Row {
	out := make([]tablestore.Row, len(rows))
	for i, row := range rows {
		out[i] = copyRow(row)
	}
	return out
}

type offsetToken struct {
	Offset int `json:"offset"`
}

func encodeOffset(offset int) tablestore.ContinuationToken {
	raw, _ := json.Marshal(offsetToken{Offset: offset})
	return tablestore.ContinuationToken(base64.StdEncoding.EncodeToString(raw))
}

func decodeOffset(token tablestore.ContinuationToken) (int, error) {
	if token == "" {
		return 0, nil
	}
	raw, err := base64.StdEncoding.DecodeString(string(token))
	if err != nil {
		return 0, &tablestore.InvalidArgumentError{Label: "token", Reason: err.Error()}
	}
	var decoded offsetToken
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return 0, &tablestore.InvalidArgumentError{Label: "token", Reason: err.Error()}
	}
	if decoded.Offset < 0 {
		return 0, &tablestore.InvalidArgumentError{Label: "token", Reason: "negative offset"}
	}
	return decoded.Offset, nil
}
