package tablestore

import "reflect"

// The guard helpers validate arguments eagerly, before any remote call is
// issued. A failed guard returns an InvalidArgumentError and the operation
// must not touch the Table collaborator at all.

// requireNonNil rejects nil values, including typed nil pointers, maps,
// slices and funcs hidden behind an interface.
func requireNonNil(value any, label string) error {
	if value == nil {
		return &InvalidArgumentError{Label: label, Reason: "must not be nil"}
	}
	switch rv := reflect.ValueOf(value); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return &InvalidArgumentError{Label: label, Reason: "must not be nil"}
		}
	}
	return nil
}

// requireNonEmpty rejects empty strings.
func requireNonEmpty(value, label string) error {
	if value == "" {
		return &InvalidArgumentError{Label: label, Reason: "must not be empty"}
	}
	return nil
}

// requireNonEmptySlice rejects collections with zero elements.
func requireNonEmptySlice[T any](items []T, label string) error {
	if len(items) == 0 {
		return &InvalidArgumentError{Label: label, Reason: "must not be empty"}
	}
	return nil
}
