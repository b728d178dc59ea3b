// Package celpredicate compiles CEL expressions into tablestore predicates,
// so filter rules can live in configuration instead of code.
//
// A compiled predicate evaluates against the item converted to a dynamic
// map (field names follow the json tags when present). Expressions must
// produce a bool; an evaluation failure panics inside the predicate, which
// tablestore.Filter and tablestore.FilterAll convert into a
// FilterEvaluationError.
//
// Usage:
//
//	compiler, err := celpredicate.NewCompiler()
//	adults, err := celpredicate.Compile[Contact](compiler, "item.Age >= 18")
//	kept, err := tablestore.Filter(contacts, adults)
package celpredicate

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"

	"github.com/raywall/tablestore-toolkit/tablestore"
)

// Compiler owns the CEL environment shared by every compiled predicate.
type Compiler struct {
	env *cel.Env
}

// NewCompiler initializes the CEL environment with the variables predicates
// can reference.
func NewCompiler() (*Compiler, error) {
	env, err := cel.NewEnv(
		cel.StdLib(),
		cel.Declarations(
			decls.NewVar("item", decls.Dyn), // the materialized item
			decls.NewVar("row", decls.Dyn),  // the raw row, for Row predicates
		),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing cel environment: %w", err)
	}

	return &Compiler{env: env}, nil
}

// Compile turns a CEL expression into a predicate over T. An empty
// expression compiles to an always-true predicate.
func Compile[T any](c *Compiler, expression string) (tablestore.Predicate[T], error) {
	if expression == "" {
		return func(T) bool { return true }, nil
	}

	prg, err := c.program(expression)
	if err != nil {
		return nil, err
	}

	return func(item T) bool {
		return evalBool(prg, expression, map[string]interface{}{"item": toDynamic(item)})
	}, nil
}

// Row compiles a CEL expression into a predicate over raw rows. The
// expression sees row.partitionKey, row.rowKey, row.stamp and row.fields.
func (c *Compiler) Row(expression string) (tablestore.Predicate[tablestore.Row], error) {
	if expression == "" {
		return func(tablestore.Row) bool { return true }, nil
	}

	prg, err := c.program(expression)
	if err != nil {
		return nil, err
	}

	return func(row tablestore.Row) bool {
		var fields map[string]interface{}
		if len(row.Fields) > 0 {
			if err := attributevalue.UnmarshalMap(row.Fields, &fields); err != nil {
				panic(fmt.Errorf("decoding row fields for cel evaluation: %w", err))
			}
		}
		return evalBool(prg, expression, map[string]interface{}{
			"row": map[string]interface{}{
				"partitionKey": row.PartitionKey,
				"rowKey":       row.RowKey,
				"stamp":        row.Stamp,
				"fields":       fields,
			},
		})
	}, nil
}

func (c *Compiler) program(expression string) (cel.Program, error) {
	ast, issues := c.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compiling cel expression %q: %w", expression, issues.Err())
	}

	prg, err := c.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("building cel program: %w", err)
	}
	return prg, nil
}

// evalBool runs the program and panics on failure; the filter layer owns the
// recovery and classification of predicate failures.
func evalBool(prg cel.Program, expression string, input map[string]interface{}) bool {
	out, _, err := prg.Eval(input)
	if err != nil {
		panic(fmt.Errorf("evaluating cel expression %q: %w", expression, err))
	}
	val, ok := out.Value().(bool)
	if !ok {
		panic(fmt.Errorf("cel expression %q did not produce a bool", expression))
	}
	return val
}

// toDynamic converts a typed item into the map form CEL evaluates against.
func toDynamic(item interface{}) map[string]interface{} {
	raw, err := json.Marshal(item)
	if err != nil {
		panic(fmt.Errorf("encoding item for cel evaluation: %w", err))
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		panic(fmt.Errorf("decoding item for cel evaluation: %w", err))
	}
	return m
}
