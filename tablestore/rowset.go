// tablestore/rowset.go
package tablestore

import (
	"reflect"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/mitchellh/hashstructure/v2"
)

// RowSet is an insertion-ordered collection of rows with duplicate
// suppression. Two rows are duplicates when their identity and properties
// compare equal; the concurrency stamp is bookkeeping, not content, and is
// ignored by the comparison. RowSet is not safe for concurrent use.
type RowSet struct {
	rows    []Row
	keys    []rowKey
	buckets map[uint64][]int
}

// rowKey is the canonical comparison form of a row. Property values are
// decoded to native Go values first so that equal payloads always compare
// equal regardless of how the attribute maps were assembled.
type rowKey struct {
	PartitionKey string
	RowKey       string
	Fields       any
}

// NewRowSet returns an empty set.
func NewRowSet() *RowSet {
	return &RowSet{buckets: make(map[uint64][]int)}
}

// Add inserts row unless an equal row is already present, and reports
// whether the insertion happened.
func (s *RowSet) Add(row Row) bool {
	key := canonicalRow(row)
	h := hashRowKey(key)
	for _, idx := range s.buckets[h] {
		if reflect.DeepEqual(s.keys[idx], key) {
			return false
		}
	}
	s.buckets[h] = append(s.buckets[h], len(s.rows))
	s.rows = append(s.rows, row)
	s.keys = append(s.keys, key)
	return true
}

// AddAll inserts every row in arrival order and returns how many were new,
// plus whether all of them were. Every element is attempted; a duplicate
// midway never stops the later ones from being inserted.
func (s *RowSet) AddAll(rows []Row) (inserted int, allUnique bool) {
	for _, row := range rows {
		if s.Add(row) {
			inserted++
		}
	}
	return inserted, inserted == len(rows)
}

// Contains reports whether an equal row is already present.
func (s *RowSet) Contains(row Row) bool {
	key := canonicalRow(row)
	for _, idx := range s.buckets[hashRowKey(key)] {
		if reflect.DeepEqual(s.keys[idx], key) {
			return true
		}
	}
	return false
}

// Len returns the number of distinct rows.
func (s *RowSet) Len() int {
	return len(s.rows)
}

// Rows returns the distinct rows in insertion order. The slice is a copy;
// mutating it does not affect the set.
func (s *RowSet) Rows() []Row {
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out
}

func canonicalRow(row Row) rowKey {
	return rowKey{
		PartitionKey: row.PartitionKey,
		RowKey:       row.RowKey,
		Fields:       canonicalFields(row.Fields),
	}
}

func canonicalFields(fields map[string]types.AttributeValue) any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	var decoded map[string]any
	if err := attributevalue.UnmarshalMap(fields, &decoded); err != nil {
		// Undecodable values still compare correctly through the raw map.
		return fields
	}
	return decoded
}

// hashRowKey buckets candidates cheaply; equality is always confirmed by
// reflect.DeepEqual, so a hash failure only degrades into a shared bucket.
func hashRowKey(key rowKey) uint64 {
	h, err := hashstructure.Hash(key, hashstructure.FormatV2, nil)
	if err != nil {
		return 0
	}
	return h
}
