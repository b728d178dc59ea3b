// tablestore/paginate.go
package tablestore

import "context"

// Drain walks every segment of q until the store reports exhaustion, the
// take count is reached or ctx is cancelled, and returns the concatenated
// rows in arrival order.
//
// Cancellation is graceful: it is polled between segments, never mid-fetch,
// so an issued fetch always completes and its rows are kept. A drain that
// stops on cancellation returns the rows gathered so far with a nil error.
// A store fault aborts the whole drain; no partial result accompanies the
// error.
func Drain(ctx context.Context, table Table, q Query) ([]Row, error) {
	rows, _, err := DrainFrom(ctx, table, q, "")
	return rows, err
}

// DrainFrom is Drain resuming from a previously returned continuation token.
// The take count, when present, applies to this call alone.
//
// The second return value is the live continuation token: feed it back into
// DrainFrom to pick up where a take-count-bounded or cancelled drain left
// off. An empty token means the store is exhausted.
func DrainFrom(ctx context.Context, table Table, q Query, start ContinuationToken) ([]Row, ContinuationToken, error) {
	if err := requireNonNil(table, "table"); err != nil {
		return nil, "", err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	bounded := q.TakeCount != nil
	var remaining int32
	if bounded {
		remaining = *q.TakeCount
		if remaining <= 0 {
			return []Row{}, start, nil
		}
	}

	rows := make([]Row, 0, remaining)
	token := start
	for {
		if ctx.Err() != nil {
			return rows, token, nil
		}

		var limit int32
		if bounded {
			limit = remaining
		}
		// The fetch itself runs outside the caller's cancellation scope so
		// that a segment already on the wire is never torn down halfway.
		seg, err := table.FetchSegment(context.WithoutCancel(ctx), q, token, limit)
		if err != nil {
			return nil, "", storeUnavailable("fetch", err)
		}

		got := seg.Rows
		if bounded && int32(len(got)) > remaining {
			got = got[:remaining]
		}
		rows = append(rows, got...)

		token = seg.NextToken
		if bounded {
			remaining -= int32(len(got))
			if remaining == 0 {
				return rows, token, nil
			}
		}
		if token == "" {
			return rows, "", nil
		}
	}
}

// DrainDistinct is Drain with duplicate suppression: rows that compare equal
// on identity and properties collapse into one, keeping first-arrival order.
// The take count still bounds fetched rows, so the distinct set may be
// smaller than the cap when duplicates occur.
func DrainDistinct(ctx context.Context, table Table, q Query) (*RowSet, error) {
	rows, err := Drain(ctx, table, q)
	if err != nil {
		return nil, err
	}
	set := NewRowSet()
	set.AddAll(rows)
	return set, nil
}
