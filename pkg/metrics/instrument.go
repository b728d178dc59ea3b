package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/raywall/tablestore-toolkit/tablestore"
)

// InstrumentedTable decorates a tablestore.Table, timing segment fetches and
// counting operation outcomes. Emission is best effort: a failing provider
// never affects the decorated call.
type InstrumentedTable struct {
	next     tablestore.Table
	provider Provider
}

// InstrumentTable wraps next so every table operation reports to provider.
func InstrumentTable(next tablestore.Table, provider Provider) *InstrumentedTable {
	return &InstrumentedTable{next: next, provider: provider}
}

var _ tablestore.Table = (*InstrumentedTable)(nil)

func (t *InstrumentedTable) FetchSegment(ctx context.Context, q tablestore.Query, token tablestore.ContinuationToken, limit int32) (tablestore.Segment, error) {
	start := time.Now()
	seg, err := t.next.FetchSegment(ctx, q, token, limit)

	elapsed := float64(time.Since(start).Milliseconds())
	_ = t.provider.Histogram("tablestore.fetch.duration_ms", elapsed, nil)
	if err != nil {
		_ = t.provider.Count("tablestore.fetch.errors", 1, nil)
		return seg, err
	}
	_ = t.provider.Histogram("tablestore.segment.rows", float64(len(seg.Rows)), nil)
	return seg, nil
}

func (t *InstrumentedTable) GetByKey(ctx context.Context, partitionKey, rowKey string) (tablestore.Row, error) {
	row, err := t.next.GetByKey(ctx, partitionKey, rowKey)
	_ = t.provider.Count("tablestore.get", 1, []string{"status:" + readStatus(err)})
	return row, err
}

func (t *InstrumentedTable) PutRow(ctx context.Context, row tablestore.Row, mode tablestore.WriteMode) (tablestore.Outcome, error) {
	out, err := t.next.PutRow(ctx, row, mode)
	tags := []string{
		"mode:" + string(mode),
		"status:" + strconv.Itoa(out.StatusCode),
	}
	_ = t.provider.Count("tablestore.write", 1, tags)
	return out, err
}

func (t *InstrumentedTable) DeleteRow(ctx context.Context, partitionKey, rowKey, stamp string) (tablestore.Outcome, error) {
	out, err := t.next.DeleteRow(ctx, partitionKey, rowKey, stamp)
	_ = t.provider.Count("tablestore.delete", 1, []string{"status:" + strconv.Itoa(out.StatusCode)})
	return out, err
}

func readStatus(err error) string {
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, tablestore.ErrNotFound):
		return "missing"
	default:
		return "error"
	}
}
