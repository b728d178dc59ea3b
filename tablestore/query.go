// tablestore/query.go
package tablestore

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
)

// === Fluent query construction ===

// NewQueryBuilder starts an empty builder. Every condition added through the
// fluent methods is AND-ed into the filter expression.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// Where merges an arbitrary condition into the filter.
func (qb *QueryBuilder) Where(cond expression.ConditionBuilder) *QueryBuilder {
	if qb.filter == nil {
		qb.filter = &cond
	} else {
		tmp := qb.filter.And(cond)
		qb.filter = &tmp
	}
	return qb
}

// Equal adds a name = value condition.
func (qb *QueryBuilder) Equal(name string, value any) *QueryBuilder {
	if !qb.checkName(name) {
		return qb
	}
	return qb.Where(expression.Equal(expression.Name(name), expression.Value(value)))
}

// NotEqual adds a name <> value condition.
func (qb *QueryBuilder) NotEqual(name string, value any) *QueryBuilder {
	if !qb.checkName(name) {
		return qb
	}
	return qb.Where(expression.NotEqual(expression.Name(name), expression.Value(value)))
}

// GreaterThan adds a name > value condition.
func (qb *QueryBuilder) GreaterThan(name string, value any) *QueryBuilder {
	if !qb.checkName(name) {
		return qb
	}
	return qb.Where(expression.GreaterThan(expression.Name(name), expression.Value(value)))
}

// LessThan adds a name < value condition.
func (qb *QueryBuilder) LessThan(name string, value any) *QueryBuilder {
	if !qb.checkName(name) {
		return qb
	}
	return qb.Where(expression.LessThan(expression.Name(name), expression.Value(value)))
}

// BeginsWith adds a begins_with(name, prefix) condition.
func (qb *QueryBuilder) BeginsWith(name, prefix string) *QueryBuilder {
	if !qb.checkName(name) {
		return qb
	}
	return qb.Where(expression.Name(name).BeginsWith(prefix))
}

// Contains adds a contains(name, substr) condition.
func (qb *QueryBuilder) Contains(name, substr string) *QueryBuilder {
	if !qb.checkName(name) {
		return qb
	}
	return qb.Where(expression.Name(name).Contains(substr))
}

// Exists adds an attribute_exists(name) condition.
func (qb *QueryBuilder) Exists(name string) *QueryBuilder {
	if !qb.checkName(name) {
		return qb
	}
	return qb.Where(expression.AttributeExists(expression.Name(name)))
}

// Select projects only the named columns. At least one name is required.
func (qb *QueryBuilder) Select(names ...string) *QueryBuilder {
	if err := requireNonEmptySlice(names, "names"); err != nil {
		if qb.err == nil {
			qb.err = err
		}
		return qb
	}
	for _, name := range names {
		if !qb.checkName(name) {
			return qb
		}
		if qb.projection == nil {
			proj := expression.NamesList(expression.Name(name))
			qb.projection = &proj
		} else {
			tmp := qb.projection.AddNames(expression.Name(name))
			qb.projection = &tmp
		}
	}
	return qb
}

// Take caps the total number of rows retrieved across all segments.
func (qb *QueryBuilder) Take(n int32) *QueryBuilder {
	qb.takeCount = aws.Int32(n)
	return qb
}

// Consistent requests strongly consistent reads.
func (qb *QueryBuilder) Consistent() *QueryBuilder {
	qb.consistent = true
	return qb
}

// Build compiles the accumulated conditions into a Query descriptor. The
// first invalid input reported by any fluent method surfaces here.
func (qb *QueryBuilder) Build() (Query, error) {
	if qb.err != nil {
		return Query{}, qb.err
	}
	q := Query{TakeCount: qb.takeCount, ConsistentRead: qb.consistent}
	if qb.filter == nil && qb.projection == nil {
		return q, nil
	}

	builder := expression.NewBuilder()
	if qb.filter != nil {
		builder = builder.WithFilter(*qb.filter)
	}
	if qb.projection != nil {
		builder = builder.WithProjection(*qb.projection)
	}
	expr, err := builder.Build()
	if err != nil {
		return Query{}, &InvalidArgumentError{Label: "query", Reason: err.Error()}
	}

	if expr.Filter() != nil {
		q.Filter = *expr.Filter()
	}
	if expr.Projection() != nil {
		q.Projection = *expr.Projection()
	}
	q.Names = expr.Names()
	q.Values = expr.Values()
	return q, nil
}

func (qb *QueryBuilder) checkName(name string) bool {
	if name == "" {
		if qb.err == nil {
			qb.err = &InvalidArgumentError{Label: "name", Reason: "must not be empty"}
		}
		return false
	}
	return true
}
