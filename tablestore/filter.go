// tablestore/filter.go
package tablestore

// Predicate decides whether an item stays in a filtered result. Predicates
// run locally after retrieval completes; they are never pushed into the
// remote query.
type Predicate[T any] func(T) bool

// Filter returns the items for which pred is true, preserving order. A panic
// inside pred aborts the whole call with a FilterEvaluationError: predicate
// correctness is the caller's business logic, so failures propagate instead
// of being skipped per element.
func Filter[T any](items []T, pred Predicate[T]) ([]T, error) {
	if err := requireNonNil(pred, "predicate"); err != nil {
		return nil, err
	}
	kept := make([]T, 0, len(items))
	for _, item := range items {
		keep, err := evaluate(pred, item)
		if err != nil {
			return nil, err
		}
		if keep {
			kept = append(kept, item)
		}
	}
	return kept, nil
}

// FilterAll keeps the items for which every predicate is true. Predicates
// are evaluated in order and stop at the first false one for each item. An
// empty predicate list keeps everything; a nil predicate inside the list
// fails the guard before anything is evaluated.
func FilterAll[T any](items []T, preds []Predicate[T]) ([]T, error) {
	for _, pred := range preds {
		if err := requireNonNil(pred, "predicate"); err != nil {
			return nil, err
		}
	}
	kept := make([]T, 0, len(items))
	for _, item := range items {
		keep := true
		for _, pred := range preds {
			ok, err := evaluate(pred, item)
			if err != nil {
				return nil, err
			}
			if !ok {
				keep = false
				break
			}
		}
		if keep {
			kept = append(kept, item)
		}
	}
	return kept, nil
}

func evaluate[T any](pred Predicate[T], item T) (keep bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &FilterEvaluationError{Recovered: r}
		}
	}()
	return pred(item), nil
}
