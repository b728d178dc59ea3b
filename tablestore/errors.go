// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package tablestore

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by the typed read wrappers when a row is absent.
// Store faults on point reads collapse into the same result (see Client.Get).
var ErrNotFound = errors.New("tablestore: row not found")

// InvalidArgumentError is raised by the guard layer before any remote call
// when a precondition on an argument fails. It is always local and never
// worth retrying.
type InvalidArgumentError struct {
	// Label identifies the offending argument (ex: "partitionKey").
	Label string
	// Reason describes the failed precondition (ex: "must not be empty").
	Reason string
}

// Error returns a message in the form
// "tablestore: invalid argument partitionKey: must not be empty".
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("tablestore: invalid argument %s: %s", e.Label, e.Reason)
}

// IsInvalidArgument reports whether err is an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}

// StoreUnavailableError classifies a transport-level fault raised by the
// remote table during a fetch or mutation. The toolkit never retries at this
// layer; retry policy belongs to the underlying client.
type StoreUnavailableError struct {
	// Op is the remote operation that faulted (ex: "scan", "put").
	Op string
	// Err is the underlying transport error.
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("tablestore: store unavailable during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// IsStoreUnavailable reports whether err is a StoreUnavailableError.
func IsStoreUnavailable(err error) bool {
	var target *StoreUnavailableError
	return errors.As(err, &target)
}

// storeUnavailable wraps err unless it is already classified.
func storeUnavailable(op string, err error) error {
	var target *StoreUnavailableError
	if errors.As(err, &target) {
		return err
	}
	return &StoreUnavailableError{Op: op, Err: err}
}

// FilterEvaluationError classifies a panic raised by a caller-supplied
// predicate. Predicate correctness is caller-owned business logic, so the
// failure propagates instead of being swallowed per element.
type FilterEvaluationError struct {
	// Recovered is the value recovered from the predicate's panic.
	Recovered any
}

func (e *FilterEvaluationError) Error() string {
	return fmt.Sprintf("tablestore: predicate evaluation failed: %v", e.Recovered)
}

// IsFilterEvaluation reports whether err is a FilterEvaluationError.
func IsFilterEvaluation(err error) bool {
	var target *FilterEvaluationError
	return errors.As(err, &target)
}
