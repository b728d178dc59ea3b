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
package envloader

import (
	"fmt"
	"reflect"
)

// InvalidConfigError is returned when Load receives a config argument that
// is not a pointer to a struct.
type InvalidConfigError struct {
	// Value is the reflected type that was supplied.
	Value reflect.Type
}

// Error returns a message naming the invalid argument kind.
//
// Example: "envloader: config must be a pointer to struct, got string".
func (e *InvalidConfigError) Error() string {
	if e.Value.Kind() != reflect.Ptr {
		return fmt.Sprintf("envloader: config must be a pointer to struct, got %s", e.Value.Kind())
	}
	return fmt.Sprintf("envloader: config must be a pointer to struct, got pointer to %s", e.Value.Elem().Kind())
}

// FieldError is returned when a struct field could not be set from its
// environment variable.
//
// It typically wraps a strconv conversion error or an UnsupportedTypeError.
type FieldError struct {
	// FieldName is the struct field name (ex: "Port").
	FieldName string
	// EnvVar is the environment variable name (ex: "APP_PORT").
	EnvVar string
	// Value is the raw environment value that failed (ex: "abc").
	Value string
	// Err is the wrapped original error (ex: *strconv.NumError).
	Err error
}

// Error returns a detailed field error message.
func (e *FieldError) Error() string {
	return fmt.Sprintf("envloader: error setting field %s from env %s=%s: %v",
		e.FieldName, e.EnvVar, e.Value, e.Err)
}

// Unwrap returns the original error behind the FieldError.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// UnsupportedTypeError is returned when a struct field's type (ex: map,
// interface) cannot be converted from an environment string.
type UnsupportedTypeError struct {
	// Type is the reflected type of the unsupported field.
	Type reflect.Type
}

// Error returns a message naming the unsupported type.
func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("envloader: unsupported type %s", e.Type)
}
