// tablestore/client.go
package tablestore

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Client is the typed surface over a Table. T is materialized best effort on
// reads and marshalled through its dynamodbav tags on writes; embed Entity in
// T to carry the row identity.
//
// Point reads never surface transport faults: a store fault during Get or
// Exists degrades into "not found", logged as a warning. Drains and writes
// surface their classified errors instead, since silently shortening a result
// set would corrupt it.
type Client[T any] struct {
	table Table
	log   zerolog.Logger
}

// NewClient wraps a Table with the typed convenience operations.
func NewClient[T any](table Table) (*Client[T], error) {
	if err := requireNonNil(table, "table"); err != nil {
		return nil, err
	}
	return &Client[T]{
		table: table,
		log:   log.With().Str("component", "tablestore").Logger(),
	}, nil
}

// Query starts a fluent query against this client's table. The returned
// ClientQuery carries the builder conditions plus the execution options
// (start token, distinct, local predicates) and runs through Exec or Find.
func (c *Client[T]) Query() *ClientQuery[T] {
	return &ClientQuery[T]{client: c, builder: NewQueryBuilder()}
}

// Get retrieves one row and materializes it into T. Absent rows and store
// faults both come back as ErrNotFound; the fault case is logged.
func (c *Client[T]) Get(ctx context.Context, partitionKey, rowKey string) (T, error) {
	var zero T
	if err := requireNonEmpty(partitionKey, "partitionKey"); err != nil {
		return zero, err
	}
	if err := requireNonEmpty(rowKey, "rowKey"); err != nil {
		return zero, err
	}

	row, err := c.table.GetByKey(ctx, partitionKey, rowKey)
	switch {
	case err == nil:
		return Materialize[T](&row), nil
	case errors.Is(err, ErrNotFound):
		return zero, ErrNotFound
	case IsStoreUnavailable(err):
		c.log.Warn().Err(err).
			Str("partition_key", partitionKey).
			Str("row_key", rowKey).
			Msg("read fault degraded to not found")
		return zero, ErrNotFound
	default:
		return zero, err
	}
}

// Exists reports whether the row is present. Store faults degrade to false.
func (c *Client[T]) Exists(ctx context.Context, partitionKey, rowKey string) (bool, error) {
	if err := requireNonEmpty(partitionKey, "partitionKey"); err != nil {
		return false, err
	}
	if err := requireNonEmpty(rowKey, "rowKey"); err != nil {
		return false, err
	}

	_, err := c.table.GetByKey(ctx, partitionKey, rowKey)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	case IsStoreUnavailable(err):
		c.log.Warn().Err(err).
			Str("partition_key", partitionKey).
			Str("row_key", rowKey).
			Msg("read fault degraded to not found")
		return false, nil
	default:
		return false, err
	}
}

// Drain retrieves every row matching q and materializes each one.
func (c *Client[T]) Drain(ctx context.Context, q Query) ([]T, error) {
	rows, err := Drain(ctx, c.table, q)
	if err != nil {
		return nil, err
	}
	return MaterializeAll[T](rows), nil
}

// DrainDistinct is Drain with duplicate rows collapsed before
// materialization.
func (c *Client[T]) DrainDistinct(ctx context.Context, q Query) ([]T, error) {
	set, err := DrainDistinct(ctx, c.table, q)
	if err != nil {
		return nil, err
	}
	return MaterializeAll[T](set.Rows()), nil
}

// Find drains the built query completely and keeps only the items passing
// every predicate. Use Exec instead when the continuation token matters.
func (c *Client[T]) Find(ctx context.Context, query *ClientQuery[T], preds ...Predicate[T]) ([]T, error) {
	if err := requireNonNil(query, "query"); err != nil {
		return nil, err
	}
	items, _, err := query.Match(preds...).Exec(ctx)
	return items, err
}

// Insert creates the row and fails with StatusConflict when it exists.
func (c *Client[T]) Insert(ctx context.Context, item *T) (Outcome, error) {
	return c.Put(ctx, item, ModeInsert)
}

// Merge overlays item's properties onto the stored row, enforcing the stamp
// carried by item.
func (c *Client[T]) Merge(ctx context.Context, item *T) (Outcome, error) {
	return c.Put(ctx, item, ModeMerge)
}

// Replace substitutes the stored row wholesale, enforcing the stamp carried
// by item.
func (c *Client[T]) Replace(ctx context.Context, item *T) (Outcome, error) {
	return c.Put(ctx, item, ModeReplace)
}

// Put writes item under an explicit mode. On success the fresh stamp is
// written back into item's Entity.
func (c *Client[T]) Put(ctx context.Context, item *T, mode WriteMode) (Outcome, error) {
	row, ent, err := c.rowOf(item)
	if err != nil {
		return Outcome{}, err
	}
	out, err := c.table.PutRow(ctx, row, mode)
	if err == nil && out.Ok() && out.Stamp != "" {
		ent.Stamp = out.Stamp
	}
	return out, err
}

// Delete removes a row by identity. UnconditionalStamp skips the stamp
// precondition.
func (c *Client[T]) Delete(ctx context.Context, partitionKey, rowKey, stamp string) (Outcome, error) {
	if err := requireNonEmpty(partitionKey, "partitionKey"); err != nil {
		return Outcome{}, err
	}
	if err := requireNonEmpty(rowKey, "rowKey"); err != nil {
		return Outcome{}, err
	}
	if err := requireNonEmpty(stamp, "stamp"); err != nil {
		return Outcome{}, err
	}
	return c.table.DeleteRow(ctx, partitionKey, rowKey, stamp)
}

// rowOf turns a typed item into a Row, pulling the identity out of the
// embedded Entity and the property bag out of the dynamodbav tags.
func (c *Client[T]) rowOf(item *T) (Row, *Entity, error) {
	if err := requireNonNil(item, "item"); err != nil {
		return Row{}, nil, err
	}
	k, ok := any(item).(keyed)
	if !ok {
		return Row{}, nil, &InvalidArgumentError{Label: "item", Reason: "type must embed tablestore.Entity"}
	}
	ent := k.entityRef()
	if err := requireNonEmpty(ent.PartitionKey, "item.PartitionKey"); err != nil {
		return Row{}, nil, err
	}
	if err := requireNonEmpty(ent.RowKey, "item.RowKey"); err != nil {
		return Row{}, nil, err
	}

	bag, err := attributevalue.MarshalMap(item)
	if err != nil {
		return Row{}, nil, &InvalidArgumentError{Label: "item", Reason: err.Error()}
	}
	return Row{
		PartitionKey: ent.PartitionKey,
		RowKey:       ent.RowKey,
		Stamp:        ent.Stamp,
		Fields:       bag,
	}, ent, nil
}

// ClientQuery is a query under construction against one typed client. The
// condition methods mirror the QueryBuilder; StartToken, Distinct and Match
// shape the execution itself.
type ClientQuery[T any] struct {
	client   *Client[T]
	builder  *QueryBuilder
	start    ContinuationToken
	distinct bool
	preds    []Predicate[T]
}

// Where merges an arbitrary condition into the filter.
func (cq *ClientQuery[T]) Where(cond expression.ConditionBuilder) *ClientQuery[T] {
	cq.builder.Where(cond)
	return cq
}

// Equal adds a name = value condition.
func (cq *ClientQuery[T]) Equal(name string, value any) *ClientQuery[T] {
	cq.builder.Equal(name, value)
	return cq
}

// NotEqual adds a name <> value condition.
func (cq *ClientQuery[T]) NotEqual(name string, value any) *ClientQuery[T] {
	cq.builder.NotEqual(name, value)
	return cq
}

// GreaterThan adds a name > value condition.
func (cq *ClientQuery[T]) GreaterThan(name string, value any) *ClientQuery[T] {
	cq.builder.GreaterThan(name, value)
	return cq
}

// LessThan adds a name < value condition.
func (cq *ClientQuery[T]) LessThan(name string, value any) *ClientQuery[T] {
	cq.builder.LessThan(name, value)
	return cq
}

// BeginsWith adds a begins_with(name, prefix) condition.
func (cq *ClientQuery[T]) BeginsWith(name, prefix string) *ClientQuery[T] {
	cq.builder.BeginsWith(name, prefix)
	return cq
}

// Contains adds a contains(name, substr) condition.
func (cq *ClientQuery[T]) Contains(name, substr string) *ClientQuery[T] {
	cq.builder.Contains(name, substr)
	return cq
}

// Exists adds an attribute_exists(name) condition.
func (cq *ClientQuery[T]) Exists(name string) *ClientQuery[T] {
	cq.builder.Exists(name)
	return cq
}

// Select projects only the named columns.
func (cq *ClientQuery[T]) Select(names ...string) *ClientQuery[T] {
	cq.builder.Select(names...)
	return cq
}

// Take caps the total number of rows retrieved across all segments.
func (cq *ClientQuery[T]) Take(n int32) *ClientQuery[T] {
	cq.builder.Take(n)
	return cq
}

// Consistent requests strongly consistent reads.
func (cq *ClientQuery[T]) Consistent() *ClientQuery[T] {
	cq.builder.Consistent()
	return cq
}

// StartToken resumes the drain from a token returned by a previous Exec.
func (cq *ClientQuery[T]) StartToken(token ContinuationToken) *ClientQuery[T] {
	cq.start = token
	return cq
}

// Distinct collapses rows that compare equal on identity and properties
// before materialization.
func (cq *ClientQuery[T]) Distinct() *ClientQuery[T] {
	cq.distinct = true
	return cq
}

// Match adds local predicates applied after materialization.
func (cq *ClientQuery[T]) Match(preds ...Predicate[T]) *ClientQuery[T] {
	cq.preds = append(cq.preds, preds...)
	return cq
}

// Build compiles the accumulated conditions into a Query descriptor.
func (cq *ClientQuery[T]) Build() (Query, error) {
	return cq.builder.Build()
}

// Exec compiles the query once, drains from the start token, then applies
// the distinct pass and the predicates. The returned token resumes a drain
// stopped early by the take count; it is empty when the store is exhausted.
func (cq *ClientQuery[T]) Exec(ctx context.Context) ([]T, ContinuationToken, error) {
	q, err := cq.builder.Build()
	if err != nil {
		return nil, "", err
	}
	rows, next, err := DrainFrom(ctx, cq.client.table, q, cq.start)
	if err != nil {
		return nil, "", err
	}
	if cq.distinct {
		set := NewRowSet()
		set.AddAll(rows)
		rows = set.Rows()
	}
	items := MaterializeAll[T](rows)
	if len(cq.preds) > 0 {
		items, err = FilterAll(items, cq.preds)
		if err != nil {
			return nil, "", err
		}
	}
	return items, next, nil
}
