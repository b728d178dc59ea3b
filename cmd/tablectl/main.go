package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	zlog "github.com/rs/zerolog/log"

	"github.com/raywall/tablestore-toolkit/celpredicate"
	"github.com/raywall/tablestore-toolkit/pkg/config"
	"github.com/raywall/tablestore-toolkit/pkg/connection"
	"github.com/raywall/tablestore-toolkit/pkg/logger"
	"github.com/raywall/tablestore-toolkit/pkg/metrics"
	"github.com/raywall/tablestore-toolkit/pkg/observability"
	"github.com/raywall/tablestore-toolkit/tablestore"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("expected commands: get | put | delete | query")
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "get":
		cmd := flag.NewFlagSet("get", flag.ExitOnError)
		table := cmd.String("table", "", "table name (or TABLESTORE_TABLE_NAME)")
		pk := cmd.String("pk", "", "partition key")
		rk := cmd.String("rk", "", "row key")
		region := cmd.String("region", "", "AWS region")
		endpoint := cmd.String("endpoint", "", "endpoint override, for local stores")
		cmd.Parse(os.Args[2:])
		fail(runGet(ctx, connect(ctx, *table, *region, *endpoint), *pk, *rk))

	case "put":
		cmd := flag.NewFlagSet("put", flag.ExitOnError)
		table := cmd.String("table", "", "table name (or TABLESTORE_TABLE_NAME)")
		pk := cmd.String("pk", "", "partition key")
		rk := cmd.String("rk", "", "row key")
		fields := cmd.String("fields", "{}", "row properties as a JSON object")
		mode := cmd.String("mode", string(tablestore.ModeInsertOrReplace), "write mode")
		stamp := cmd.String("stamp", tablestore.UnconditionalStamp, "concurrency stamp")
		region := cmd.String("region", "", "AWS region")
		endpoint := cmd.String("endpoint", "", "endpoint override, for local stores")
		cmd.Parse(os.Args[2:])
		fail(runPut(ctx, connect(ctx, *table, *region, *endpoint), *pk, *rk, *fields, tablestore.WriteMode(*mode), *stamp))

	case "delete":
		cmd := flag.NewFlagSet("delete", flag.ExitOnError)
		table := cmd.String("table", "", "table name (or TABLESTORE_TABLE_NAME)")
		pk := cmd.String("pk", "", "partition key")
		rk := cmd.String("rk", "", "row key")
		stamp := cmd.String("stamp", tablestore.UnconditionalStamp, "concurrency stamp")
		region := cmd.String("region", "", "AWS region")
		endpoint := cmd.String("endpoint", "", "endpoint override, for local stores")
		cmd.Parse(os.Args[2:])
		fail(runDelete(ctx, connect(ctx, *table, *region, *endpoint), *pk, *rk, *stamp))

	case "query":
		cmd := flag.NewFlagSet("query", flag.ExitOnError)
		table := cmd.String("table", "", "table name (or TABLESTORE_TABLE_NAME)")
		filter := cmd.String("filter", "", "CEL predicate over rows (ex: row.fields.status == \"active\"), evaluated locally")
		take := cmd.Int("take", 0, "maximum rows across all segments (0 = unbounded)")
		distinct := cmd.Bool("distinct", false, "collapse duplicate rows")
		region := cmd.String("region", "", "AWS region")
		endpoint := cmd.String("endpoint", "", "endpoint override, for local stores")
		cmd.Parse(os.Args[2:])
		fail(runQuery(ctx, connect(ctx, *table, *region, *endpoint), *filter, int32(*take), *distinct))

	default:
		fmt.Printf("unknown command %q\n", os.Args[1])
		os.Exit(1)
	}
}

// connect builds the production table; any failure here is fatal. When
// TABLECTL_CONFIG names a toolkit YAML file, it supplies the logging setup,
// the connection settings, the table description and the metrics provider;
// explicit flags still win over the file.
func connect(ctx context.Context, tableName, region, endpoint string) tablestore.Table {
	settings := connection.Settings{Region: region, Endpoint: endpoint}
	storeCfg := tablestore.TableConfig{TableName: tableName}
	var provider metrics.Provider

	if path := os.Getenv("TABLECTL_CONFIG"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			fail(err)
		}
		zlog.Logger = logger.Configure(cfg.Logging)

		settings = cfg.Connection.Settings()
		if region != "" {
			settings.Region = region
		}
		if endpoint != "" {
			settings.Endpoint = endpoint
		}
		if tableName == "" {
			storeCfg = tablestore.TableConfig{
				TableName:          cfg.Store.TableName,
				PartitionAttribute: cfg.Store.PartitionAttribute,
				RowAttribute:       cfg.Store.RowAttribute,
				StampAttribute:     cfg.Store.StampAttribute,
				TTLAttribute:       cfg.Store.TTLAttribute,
			}
		}
		provider, err = observability.SetupMetrics(cfg.Metrics)
		if err != nil {
			fail(err)
		}
	}

	awsCfg, err := connection.LoadAWSConfig(ctx, settings)
	if err != nil {
		fail(err)
	}
	table, err := tablestore.NewDynamoTable(dynamodb.NewFromConfig(awsCfg), storeCfg)
	if err != nil {
		fail(err)
	}
	if provider != nil {
		return metrics.InstrumentTable(table, provider)
	}
	return table
}

func runGet(ctx context.Context, table tablestore.Table, pk, rk string) error {
	row, err := table.GetByKey(ctx, pk, rk)
	if err != nil {
		return err
	}
	return printRow(row)
}

func runPut(ctx context.Context, table tablestore.Table, pk, rk, fieldsJSON string, mode tablestore.WriteMode, stamp string) error {
	var fields map[string]any
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return fmt.Errorf("-fields must be a JSON object: %w", err)
	}
	bag, err := attributevalue.MarshalMap(fields)
	if err != nil {
		return err
	}

	out, err := table.PutRow(ctx, tablestore.Row{
		PartitionKey: pk,
		RowKey:       rk,
		Stamp:        stamp,
		Fields:       bag,
	}, mode)
	if err != nil {
		return err
	}
	if !out.Ok() {
		return fmt.Errorf("write refused with status %d", out.StatusCode)
	}
	fmt.Printf("✅ written (status %d, stamp %s)\n", out.StatusCode, out.Stamp)
	return nil
}

func runDelete(ctx context.Context, table tablestore.Table, pk, rk, stamp string) error {
	out, err := table.DeleteRow(ctx, pk, rk, stamp)
	if err != nil {
		return err
	}
	if !out.Ok() {
		return fmt.Errorf("delete refused with status %d", out.StatusCode)
	}
	fmt.Printf("✅ deleted (status %d)\n", out.StatusCode)
	return nil
}

func runQuery(ctx context.Context, table tablestore.Table, filter string, take int32, distinct bool) error {
	q := tablestore.Query{}
	if take > 0 {
		q = q.Take(take)
	}

	var rows []tablestore.Row
	var err error
	if distinct {
		var set *tablestore.RowSet
		set, err = tablestore.DrainDistinct(ctx, table, q)
		if set != nil {
			rows = set.Rows()
		}
	} else {
		rows, err = tablestore.Drain(ctx, table, q)
	}
	if err != nil {
		return err
	}

	if filter != "" {
		compiler, err := celpredicate.NewCompiler()
		if err != nil {
			return err
		}
		pred, err := compiler.Row(filter)
		if err != nil {
			return err
		}
		rows, err = tablestore.Filter(rows, pred)
		if err != nil {
			return err
		}
	}

	for _, row := range rows {
		if err := printRow(row); err != nil {
			return err
		}
	}
	fmt.Printf("🔍 %d row(s)\n", len(rows))
	return nil
}

func printRow(row tablestore.Row) error {
	var fields map[string]any
	if err := attributevalue.UnmarshalMap(row.Fields, &fields); err != nil {
		return err
	}
	line, err := json.Marshal(map[string]any{
		"partition_key": row.PartitionKey,
		"row_key":       row.RowKey,
		"stamp":         row.Stamp,
		"fields":        fields,
	})
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}

func fail(err error) {
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
}
