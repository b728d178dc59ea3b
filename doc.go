// Package tablestore_toolkit is a client-side access layer over a
// partitioned, schemaless key-value table store (DynamoDB via the AWS SDK
// v2), plus the ambient utilities a service built on it needs.
//
// Overview:
// The toolkit hides the three recurring chores of talking to such a store:
// 1. Pagination (tablestore): draining continuation-token result sets with
// take-count enforcement, cancellation and duplicate suppression.
// 2. Materialization (tablestore): converting schemaless rows into typed
// structs with case-insensitive, best-effort field matching.
// 3. Filtering (tablestore, celpredicate): local predicate evaluation over
// the accumulated results, as plain closures or compiled CEL expressions.
//
// The design leans on interfaces and generics so every layer can be mocked:
// the storage collaborator is a four-method Table interface with a DynamoDB
// implementation, an in-memory emulator and a scriptable mock.
//
// Main sub-packages:
//
// 1. tablestore:
//   - Drain, DrainDistinct and the RowSet accumulator.
//   - Materialize and the typed Client[T] with the fluent, resumable query.
//   - Filter / FilterAll and the classified error taxonomy.
//
// 2. easyrepo:
//   - Validated service layer over Client[T] with before-save hooks.
//
// 3. celpredicate:
//   - CEL expressions compiled into tablestore predicates.
//
// 4. blobstore:
//   - Thin S3 pass-throughs: token-driven listing, get, put, delete.
//
// 5. envloader, pkg/config, pkg/connection, pkg/logger, pkg/metrics,
// pkg/observability:
//   - Environment and YAML configuration, tuned AWS connectivity, zerolog
//     setup and metrics providers.
//
// Quick start:
//
//	package main
//
//	import (
//		"context"
//		"errors"
//		"log"
//
//		"github.com/aws/aws-sdk-go-v2/service/dynamodb"
//		"github.com/raywall/tablestore-toolkit/pkg/connection"
//		"github.com/raywall/tablestore-toolkit/tablestore"
//	)
//
//	type Contact struct {
//		tablestore.Entity
//		Name   string `dynamodbav:"name"`
//		Status string `dynamodbav:"status"`
//	}
//
//	func main() {
//		ctx := context.Background()
//
//		cfg, err := connection.LoadAWSConfig(ctx, connection.Settings{})
//		if err != nil {
//			log.Fatalf("aws config: %v", err)
//		}
//
//		table, err := tablestore.NewDynamoTable(dynamodb.NewFromConfig(cfg), tablestore.TableConfig{
//			TableName: "contacts",
//		})
//		if err != nil {
//			log.Fatalf("table: %v", err)
//		}
//
//		contacts, err := tablestore.NewClient[Contact](table)
//		if err != nil {
//			log.Fatalf("client: %v", err)
//		}
//
//		c, err := contacts.Get(ctx, "tenant-1", "ada")
//		if err != nil && !errors.Is(err, tablestore.ErrNotFound) {
//			log.Fatalf("get: %v", err)
//		}
//		log.Printf("contact: %+v", c)
//	}
package tablestore_toolkit
