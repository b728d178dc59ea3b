package easyrepo

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/raywall/tablestore-toolkit/tablestore"
)

type HookType int

const (
	BeforeCreate HookType = iota
	BeforeUpdate
)

var (
	ErrEmptyCustomMethodName = errors.New("empty custom service method name")
	ErrMethodNameNotFound    = errors.New("method name not found")
)

// Service centralizes business logic and data validation.
// It encapsulates the repository and uses the validator to ensure data integrity.
type Service[T any] struct {
	valid                *validator.Validate
	repo                 *Repository[T]
	customServiceMethods map[string]CustomServiceMethod[T]
	hooks                *Hooks[T]
}

// Hooks stores the data validations and business logic registered for
// execution before creates and updates.
type Hooks[T any] struct {
	BeforeCreate []BeforeSaveHook[T]
	BeforeUpdate []BeforeSaveHook[T]
}

// BeforeSaveHook allows you to create custom validation and/or transformation
// functions which are applied before performing the update or create,
// allowing customized code injection in the easyrepo library. On creates the
// existing item is nil.
type BeforeSaveHook[T any] func(ctx context.Context, item *T, existing *T) error

// CustomServiceMethod allows you to inject a custom method.
type CustomServiceMethod[T any] func(ctx context.Context, args ...any) (*T, error)

// NewService creates a new Service instance with a default validator and
// configured repository. T must embed tablestore.Entity so the service can
// read and write the row identity.
func NewService[T any](table tablestore.Table) (*Service[T], error) {
	repo, err := NewRepository[T](table)
	if err != nil {
		return nil, err
	}
	return &Service[T]{
		valid:                validator.New(),
		repo:                 repo,
		customServiceMethods: make(map[string]CustomServiceMethod[T]),
		hooks: &Hooks[T]{
			BeforeCreate: make([]BeforeSaveHook[T], 0),
			BeforeUpdate: make([]BeforeSaveHook[T], 0),
		},
	}, nil
}

// RegisterHook allows the injection of custom logic for validating and
// handling the item before it is written.
func (s *Service[T]) RegisterHook(hookType HookType, fn BeforeSaveHook[T]) {
	switch hookType {
	case BeforeCreate:
		s.hooks.BeforeCreate = append(s.hooks.BeforeCreate, fn)
	case BeforeUpdate:
		s.hooks.BeforeUpdate = append(s.hooks.BeforeUpdate, fn)
	default:
		return
	}
}

// RegisterCustomServiceMethod allows you to inject a custom method.
func (s *Service[T]) RegisterCustomServiceMethod(name string, fn CustomServiceMethod[T]) {
	s.customServiceMethods[name] = fn
}

// RegisterValidation allows adding custom validation rules to validator.
func (s *Service[T]) RegisterValidation(name string, fn validator.Func) error {
	if s.valid == nil {
		s.valid = validator.New()
	}
	return s.valid.RegisterValidation(name, fn)
}

// Get retrieves an item through its partition key and row key.
// Returns ErrInvalidInput when either key is empty.
func (s *Service[T]) Get(ctx context.Context, partitionKey, rowKey string) (*T, error) {
	if partitionKey == "" || rowKey == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.get(ctx, partitionKey, rowKey)
}

// List returns every item in the table.
func (s *Service[T]) List(ctx context.Context) ([]T, error) {
	return s.repo.list(ctx)
}

// Query starts a fluent query for use with Find.
func (s *Service[T]) Query() *tablestore.ClientQuery[T] {
	return s.repo.query()
}

// Find retrieves the items matching the query, then keeps only those every
// predicate accepts.
func (s *Service[T]) Find(ctx context.Context, query *tablestore.ClientQuery[T], preds ...tablestore.Predicate[T]) ([]T, error) {
	return s.repo.find(ctx, query, preds...)
}

// Create validates the struct according to the `validate` tags, runs the
// BeforeCreate hooks and persists the item. Fails with ErrItemAlreadyExists
// when the row identity is taken.
func (s *Service[T]) Create(ctx context.Context, item *T) error {
	if item == nil {
		return ErrInvalidInput
	}
	if err := s.valid.StructCtx(ctx, *item); err != nil {
		return err
	}
	for _, hook := range s.hooks.BeforeCreate {
		if err := hook(ctx, item, nil); err != nil {
			return err
		}
	}
	return s.repo.create(ctx, item)
}

// Update validates the item, loads the stored version for the BeforeUpdate
// hooks and replaces it. The replace carries the stored stamp, so a write
// that raced another writer fails with ErrStaleItem.
func (s *Service[T]) Update(ctx context.Context, item *T) error {
	if item == nil {
		return ErrInvalidInput
	}
	ent := tablestore.EntityOf(item)
	if ent == nil || ent.PartitionKey == "" || ent.RowKey == "" {
		return ErrInvalidInput
	}
	if err := s.valid.StructCtx(ctx, *item); err != nil {
		return err
	}

	existing, err := s.repo.get(ctx, ent.PartitionKey, ent.RowKey)
	if err != nil {
		return err
	}
	for _, hook := range s.hooks.BeforeUpdate {
		if err := hook(ctx, item, existing); err != nil {
			return err
		}
	}
	if prev := tablestore.EntityOf(existing); prev != nil {
		ent.Stamp = prev.Stamp
	}
	return s.repo.replace(ctx, item)
}

// Delete removes an item based on its identity. Pass the item's stamp to
// enforce optimistic concurrency, or tablestore.UnconditionalStamp to remove
// regardless of concurrent writes.
func (s *Service[T]) Delete(ctx context.Context, partitionKey, rowKey, stamp string) error {
	if partitionKey == "" || rowKey == "" || stamp == "" {
		return ErrInvalidInput
	}
	return s.repo.delete(ctx, partitionKey, rowKey, stamp)
}

// RunCustomServiceMethod allows you to execute a custom service method.
func (s *Service[T]) RunCustomServiceMethod(ctx context.Context, name string, args ...any) (*T, error) {
	if name == "" {
		return nil, ErrEmptyCustomMethodName
	}
	fn, ok := s.customServiceMethods[name]
	if !ok {
		return nil, ErrMethodNameNotFound
	}
	return fn(ctx, args...)
}
