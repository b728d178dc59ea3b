// Package tablestore is a typed access layer over a partitioned, schemaless
// key-value table, backed by AWS DynamoDB (SDK v2).
//
// Overview:
// A row is identified by a partition key plus a row key and carries an open
// property bag and an optimistic concurrency stamp. The package hides the
// three recurring chores of working with such a store: draining paginated
// result sets delivered through opaque continuation tokens, materializing
// schemaless rows into typed Go structs with best-effort field matching, and
// filtering or deduplicating the accumulated results.
//
// Main features:
//   - Segmented drain: Drain, DrainFrom and DrainDistinct walk the
//     continuation-token loop with take-count enforcement and graceful
//     cancellation between segments.
//   - Tolerant materializer: Materialize converts a row into any struct,
//     matching names case-insensitively and skipping what it cannot decode.
//   - Typed client: Client[T] wraps Get, Exists, Insert, Merge, Replace,
//     Delete and the fluent, resumable ClientQuery around a shared Table.
//   - Local predicates: Filter and FilterAll evaluate caller closures after
//     retrieval; they are never pushed to the store.
//   - Built-in mock: MockTable scripts any Table behavior and counts calls.
//
// Usage:
//
//	type Contact struct {
//		tablestore.Entity
//		Name  string `dynamodbav:"name"`
//		Email string `dynamodbav:"email"`
//	}
//
//	table, err := tablestore.NewDynamoTable(sdkClient, tablestore.TableConfig{
//		TableName: "contacts",
//	})
//	contacts, err := tablestore.NewClient[Contact](table)
//
//	// Point operations
//	c, err := contacts.Get(ctx, "tenant-1", "ada")
//	if errors.Is(err, tablestore.ErrNotFound) { /* ... */ }
//
//	// Fluent drain with post-hoc filtering
//	active, err := contacts.Find(ctx,
//		contacts.Query().Equal("status", "active").Take(100),
//		func(c Contact) bool { return c.Email != "" },
//	)
//
// Configuration:
// The physical table is described by TableConfig, either directly or via the
// TABLESTORE_* environment variables loaded through the envloader package.
package tablestore
