// tablestore/mock.go
package tablestore

import "context"

// MockTable is a hand-rolled Table double. Set the Fn fields to script
// behavior; unset functions return benign defaults. The call counters let
// tests assert that guarded operations never reached the store.
type MockTable struct {
	FetchSegmentFn func(ctx context.Context, q Query, token ContinuationToken, limit int32) (Segment, error)
	GetByKeyFn     func(ctx context.Context, partitionKey, rowKey string) (Row, error)
	PutRowFn       func(ctx context.Context, row Row, mode WriteMode) (Outcome, error)
	DeleteRowFn    func(ctx context.Context, partitionKey, rowKey, stamp string) (Outcome, error)

	FetchSegmentCalls int
	GetByKeyCalls     int
	PutRowCalls       int
	DeleteRowCalls    int
}

var _ Table = (*MockTable)(nil)

func (m *MockTable) FetchSegment(ctx context.Context, q Query, token ContinuationToken, limit int32) (Segment, error) {
	m.FetchSegmentCalls++
	if m.FetchSegmentFn != nil {
		return m.FetchSegmentFn(ctx, q, token, limit)
	}
	return Segment{}, nil
}

func (m *MockTable) GetByKey(ctx context.Context, partitionKey, rowKey string) (Row, error) {
	m.GetByKeyCalls++
	if m.GetByKeyFn != nil {
		return m.GetByKeyFn(ctx, partitionKey, rowKey)
	}
	return Row{}, ErrNotFound
}

func (m *MockTable) PutRow(ctx context.Context, row Row, mode WriteMode) (Outcome, error) {
	m.PutRowCalls++
	if m.PutRowFn != nil {
		return m.PutRowFn(ctx, row, mode)
	}
	return Outcome{StatusCode: StatusNoContent}, nil
}

func (m *MockTable) DeleteRow(ctx context.Context, partitionKey, rowKey, stamp string) (Outcome, error) {
	m.DeleteRowCalls++
	if m.DeleteRowFn != nil {
		return m.DeleteRowFn(ctx, partitionKey, rowKey, stamp)
	}
	return Outcome{StatusCode: StatusNoContent}, nil
}
