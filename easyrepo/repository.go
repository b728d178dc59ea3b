package easyrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/raywall/tablestore-toolkit/tablestore"
)

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrItemAlreadyExists = errors.New("item already exists")
	ErrStaleItem         = errors.New("item was modified by someone else")
)

// Repository manages direct communication with the tablestore client.
// Its methods are internal to the package, encouraging use through Service.
type Repository[T any] struct {
	store *tablestore.Client[T]
}

// NewRepository initializes storage for generic type T.
func NewRepository[T any](table tablestore.Table) (*Repository[T], error) {
	store, err := tablestore.NewClient[T](table)
	if err != nil {
		return nil, err
	}
	return &Repository[T]{store: store}, nil
}

// list drains every row of the table.
func (r *Repository[T]) list(ctx context.Context) ([]T, error) {
	return r.store.Drain(ctx, tablestore.Query{})
}

// query starts a fluent query against the underlying client.
func (r *Repository[T]) query() *tablestore.ClientQuery[T] {
	return r.store.Query()
}

// find drains the rows matching the built query, keeping only the items
// every predicate accepts.
func (r *Repository[T]) find(ctx context.Context, query *tablestore.ClientQuery[T], preds ...tablestore.Predicate[T]) ([]T, error) {
	return r.store.Find(ctx, query, preds...)
}

// create persists a new item, refusing to overwrite an existing row.
func (r *Repository[T]) create(ctx context.Context, item *T) error {
	out, err := r.store.Insert(ctx, item)
	if err != nil {
		return err
	}
	if out.StatusCode == tablestore.StatusConflict {
		return ErrItemAlreadyExists
	}
	if !out.Ok() {
		return fmt.Errorf("create returned status %d", out.StatusCode)
	}
	return nil
}

// get fetches a single item by its identity.
func (r *Repository[T]) get(ctx context.Context, partitionKey, rowKey string) (*T, error) {
	item, err := r.store.Get(ctx, partitionKey, rowKey)
	if err != nil {
		if errors.Is(err, tablestore.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// replace substitutes the stored row with item, enforcing the stamp item
// carries.
func (r *Repository[T]) replace(ctx context.Context, item *T) error {
	out, err := r.store.Replace(ctx, item)
	if err != nil {
		return err
	}
	if out.StatusCode == tablestore.StatusPreconditionFailed {
		return ErrStaleItem
	}
	if !out.Ok() {
		return fmt.Errorf("replace returned status %d", out.StatusCode)
	}
	return nil
}

// delete removes the item, enforcing stamp unless it is the unconditional
// marker.
func (r *Repository[T]) delete(ctx context.Context, partitionKey, rowKey, stamp string) error {
	out, err := r.store.Delete(ctx, partitionKey, rowKey, stamp)
	if err != nil {
		return err
	}
	if out.StatusCode == tablestore.StatusPreconditionFailed {
		return ErrStaleItem
	}
	if !out.Ok() {
		return fmt.Errorf("delete returned status %d", out.StatusCode)
	}
	return nil
}
