// tablestore/materialize.go
package tablestore

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	metaNone = iota
	metaPartitionKey
	metaRowKey
	metaStamp
)

// fieldSpec is one assignable field of a target shape. The index chain
// reaches through embedded structs, so fields promoted from Entity resolve
// like any other.
type fieldSpec struct {
	index   []int
	lowered string
	meta    int
}

// shapeTable is the materialization plan for one target type: every
// assignable field with its lowercased lookup name, in declaration order.
// Built once per type and cached; reflection over struct tags only happens
// on the first materialization of a shape.
type shapeTable struct {
	fields []fieldSpec
}

var (
	shapeMu    sync.RWMutex
	shapeCache = make(map[reflect.Type]*shapeTable)
)

// Materialize converts a row into a fresh instance of T, best effort. A nil
// row yields the zero value. Matching is case-insensitive on the field's
// dynamodbav tag name, or on the Go field name when the tag is absent or
// "-". Two passes run in order: the row identity fills any PartitionKey,
// RowKey and Stamp string fields first, then each bag property is decoded
// into its matching field, overwriting the identity pass on name collision.
//
// Materialize never fails. Null values, properties without a matching field
// and values that cannot be decoded into the field's type are skipped
// silently; the field keeps whatever value it already had.
func Materialize[T any](row *Row) T {
	var out T
	target := reflect.ValueOf(&out).Elem()
	if target.Kind() != reflect.Struct || row == nil {
		return out
	}

	shape := shapeFor(target.Type())
	for _, f := range shape.fields {
		var v string
		switch f.meta {
		case metaPartitionKey:
			v = row.PartitionKey
		case metaRowKey:
			v = row.RowKey
		case metaStamp:
			v = row.Stamp
		default:
			continue
		}
		if field := target.FieldByIndex(f.index); field.CanSet() {
			field.SetString(v)
		}
	}

	bag := loweredBag(row.Fields)
	for _, f := range shape.fields {
		av, ok := bag[f.lowered]
		if !ok || av == nil {
			continue
		}
		if _, null := av.(*types.AttributeValueMemberNULL); null {
			continue
		}
		field := target.FieldByIndex(f.index)
		if !field.CanSet() {
			continue
		}
		// A decode failure leaves the field untouched on purpose: schema
		// drift in one property must not poison the rest of the row.
		_ = attributevalue.Unmarshal(av, field.Addr().Interface())
	}
	return out
}

// MaterializeAll materializes every row in order.
func MaterializeAll[T any](rows []Row) []T {
	out := make([]T, len(rows))
	for i := range rows {
		out[i] = Materialize[T](&rows[i])
	}
	return out
}

func shapeFor(t reflect.Type) *shapeTable {
	shapeMu.RLock()
	shape, ok := shapeCache[t]
	shapeMu.RUnlock()
	if ok {
		return shape
	}

	shape = &shapeTable{}
	collectFields(t, nil, shape)

	shapeMu.Lock()
	shapeCache[t] = shape
	shapeMu.Unlock()
	return shape
}

func collectFields(t reflect.Type, parent []int, shape *shapeTable) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		index := append(append([]int(nil), parent...), i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectFields(f.Type, index, shape)
			continue
		}
		if f.PkgPath != "" {
			continue
		}

		name := f.Name
		if tag, ok := f.Tag.Lookup("dynamodbav"); ok {
			base, _, _ := strings.Cut(tag, ",")
			if base != "" && base != "-" {
				name = base
			}
		}

		spec := fieldSpec{index: index, lowered: strings.ToLower(name)}
		if f.Type.Kind() == reflect.String {
			switch spec.lowered {
			case "partitionkey":
				spec.meta = metaPartitionKey
			case "rowkey":
				spec.meta = metaRowKey
			case "stamp":
				spec.meta = metaStamp
			}
		}
		shape.fields = append(shape.fields, spec)
	}
}

// loweredBag indexes the property bag by lowercased name. When two property
// names collide after lowering, the lexicographically smallest original name
// wins, keeping lookups deterministic.
func loweredBag(fields map[string]types.AttributeValue) map[string]types.AttributeValue {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	bag := make(map[string]types.AttributeValue, len(fields))
	for _, name := range names {
		key := strings.ToLower(name)
		if _, exists := bag[key]; !exists {
			bag[key] = fields[name]
		}
	}
	return bag
}
