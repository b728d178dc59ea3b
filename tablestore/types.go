// tablestore/types.go
package tablestore

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// === Vocabulary ===

// ContinuationToken is the opaque cursor a Table hands back after each
// segment. The empty token means the result set is exhausted; any non-empty
// token must be fed to the next fetch unchanged, even when the segment it
// came with carried zero rows.
type ContinuationToken string

// Row is a single record of a partitioned table: a two-part identity, an
// opaque concurrency stamp and an open bag of named properties.
type Row struct {
	PartitionKey string
	RowKey       string
	Stamp        string
	Fields       map[string]types.AttributeValue
}

// Key returns the row identity as "partitionKey/rowKey".
func (r Row) Key() string {
	return r.PartitionKey + "/" + r.RowKey
}

// Segment is one bounded batch of rows produced by a single fetch, together
// with the token for the next fetch.
type Segment struct {
	Rows      []Row
	NextToken ContinuationToken
}

// Query describes one logical retrieval in the store's native expression
// syntax. Use Client.Query for a fluent way to build one; the descriptor is
// never mutated during a drain.
type Query struct {
	// Filter is a filter expression with placeholder names and values
	// resolved through Names and Values.
	Filter string
	// Projection selects the columns to retrieve; empty retrieves whole rows.
	Projection string
	Names      map[string]string
	Values     map[string]types.AttributeValue

	// TakeCount caps the total number of rows across all segments. Nil means
	// unbounded; zero short-circuits the drain before the first fetch.
	TakeCount *int32

	ConsistentRead bool
}

// Take returns a copy of the descriptor bounded to n rows.
func (q Query) Take(n int32) Query {
	q.TakeCount = aws.Int32(n)
	return q
}

// === Write modes ===

// WriteMode selects the concurrency discipline of a PutRow call.
type WriteMode string

const (
	// ModeInsert creates the row and fails with StatusConflict when the
	// identity already exists.
	ModeInsert WriteMode = "insert"
	// ModeMerge overlays the given properties onto an existing row; absent
	// properties keep their stored values. The row must exist and the stamp
	// must match.
	ModeMerge WriteMode = "merge"
	// ModeReplace substitutes the row wholesale. The row must exist and the
	// stamp must match.
	ModeReplace WriteMode = "replace"
	// ModeInsertOrMerge merges when the row exists and creates it otherwise,
	// ignoring stamps.
	ModeInsertOrMerge WriteMode = "insertOrMerge"
	// ModeInsertOrReplace replaces when the row exists and creates it
	// otherwise, ignoring stamps.
	ModeInsertOrReplace WriteMode = "insertOrReplace"
)

func (m WriteMode) valid() bool {
	switch m {
	case ModeInsert, ModeMerge, ModeReplace, ModeInsertOrMerge, ModeInsertOrReplace:
		return true
	}
	return false
}

// UnconditionalStamp disables the stamp precondition on DeleteRow and on the
// stamped write modes.
const UnconditionalStamp = "*"

// Outcome is the status a Table reports for a mutation, mirroring HTTP
// semantics: any code in [200, 299] is success.
type Outcome struct {
	StatusCode int
	// Stamp is the concurrency stamp assigned by the write, when any.
	Stamp string
}

// Ok reports whether the outcome is a success.
func (o Outcome) Ok() bool {
	return o.StatusCode >= 200 && o.StatusCode <= 299
}

// Write outcome status codes.
const (
	StatusCreated            = 201
	StatusNoContent          = 204
	StatusConflict           = 409
	StatusPreconditionFailed = 412
	StatusUnavailable        = 503
)

// === Collaborator contract ===

// Table is the storage collaborator every higher-level operation runs
// against. DynamoTable is the production implementation; MockTable and the
// emulator-backed table cover tests and local development.
type Table interface {
	// FetchSegment retrieves one segment of at most limit rows (limit <= 0
	// means the store's own page size), resuming from token. The returned
	// segment may be empty while still carrying a non-empty next token.
	FetchSegment(ctx context.Context, q Query, token ContinuationToken, limit int32) (Segment, error)

	// GetByKey retrieves a single row by identity, or ErrNotFound.
	GetByKey(ctx context.Context, partitionKey, rowKey string) (Row, error)

	// PutRow writes row under the given mode and reports the outcome.
	PutRow(ctx context.Context, row Row, mode WriteMode) (Outcome, error)

	// DeleteRow removes the row when stamp matches, or unconditionally for
	// UnconditionalStamp.
	DeleteRow(ctx context.Context, partitionKey, rowKey, stamp string) (Outcome, error)
}

// DynamoDBClient captures the slice of the DynamoDB API that DynamoTable
// consumes, so tests can substitute a double without touching the AWS SDK.
type DynamoDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// TableConfig describes the physical table behind a DynamoTable. Fields left
// empty are loaded from the environment and then defaulted.
type TableConfig struct {
	TableName          string `env:"TABLESTORE_TABLE_NAME"`
	PartitionAttribute string `env:"TABLESTORE_PARTITION_ATTRIBUTE"`
	RowAttribute       string `env:"TABLESTORE_ROW_ATTRIBUTE"`
	StampAttribute     string `env:"TABLESTORE_STAMP_ATTRIBUTE"`
	// TTLAttribute names an optional time-to-live column; when set, writes
	// that carry a nil value under this name receive a default expiration.
	TTLAttribute string `env:"TABLESTORE_TTL_ATTRIBUTE"`
}

func (c *TableConfig) applyDefaults() {
	if c.PartitionAttribute == "" {
		c.PartitionAttribute = "pk"
	}
	if c.RowAttribute == "" {
		c.RowAttribute = "rk"
	}
	if c.StampAttribute == "" {
		c.StampAttribute = "stamp"
	}
}

// === Typed entities ===

// Entity carries the row identity inside a typed shape. Embed it in any
// struct used with Client; the dynamodbav:"-" tags keep the identity out of
// the property bag, and the materializer fills the fields from the row
// metadata.
type Entity struct {
	PartitionKey string `dynamodbav:"-"`
	RowKey       string `dynamodbav:"-"`
	Stamp        string `dynamodbav:"-"`
}

func (e *Entity) entityRef() *Entity { return e }

// keyed is satisfied by every struct that embeds Entity.
type keyed interface {
	entityRef() *Entity
}

// EntityOf exposes the Entity embedded in item, or nil when item does not
// embed one. Pass a pointer so mutations reach the caller's value.
func EntityOf(item any) *Entity {
	k, ok := item.(keyed)
	if !ok {
		return nil
	}
	return k.entityRef()
}

// === Fluent query builder ===

// QueryBuilder assembles a Query descriptor from typed conditions. Obtain
// one from Client.Query or NewQueryBuilder; call Build to compile it.
type QueryBuilder struct {
	filter     *expression.ConditionBuilder
	projection *expression.ProjectionBuilder
	takeCount  *int32
	consistent bool
	err        error
}
