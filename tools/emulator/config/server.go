package config

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/raywall/tablestore-toolkit/tablestore"
	"github.com/raywall/tablestore-toolkit/tools/emulator/memtable"
	"github.com/raywall/tablestore-toolkit/tools/emulator/types"
)

// ServerConfig binds one port to a set of emulated tables.
type ServerConfig struct {
	Port   int         `json:"port"`
	Tables []TableSpec `json:"tables"`
}

// TableSpec declares one emulated table: its name, the segment size its
// fetches are cut into, and the rows it starts with.
type TableSpec struct {
	Name        string          `json:"name"`
	SegmentSize int             `json:"segment_size,omitempty"`
	Seed        []types.SeedRow `json:"seed,omitempty"`
}

// Router materializes the declared tables in memory, seeds them and mounts
// the row, segment and health routes.
func (s *ServerConfig) Router() (*mux.Router, error) {
	tables := make(map[string]*memtable.Table, len(s.Tables))
	for _, spec := range s.Tables {
		if spec.Name == "" {
			return nil, fmt.Errorf("table without a name on port %d", s.Port)
		}
		table := memtable.New(spec.SegmentSize)
		if err := seedRows(table, spec.Seed); err != nil {
			return nil, fmt.Errorf("seeding table %q: %w", spec.Name, err)
		}
		tables[spec.Name] = table
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	for name, table := range tables {
		base := "/tables/" + name
		router.HandleFunc(base+"/rows/{pk}/{rk}", getRowHandler(table)).Methods(http.MethodGet)
		router.HandleFunc(base+"/rows/{pk}/{rk}", putRowHandler(table)).Methods(http.MethodPut)
		router.HandleFunc(base+"/rows/{pk}/{rk}", deleteRowHandler(table)).Methods(http.MethodDelete)
		router.HandleFunc(base+"/segments", segmentHandler(table)).Methods(http.MethodPost)
	}
	return router, nil
}

// Start builds the router and serves it until the listener fails.
func (s *ServerConfig) Start() error {
	router, err := s.Router()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", s.Port)
	log.Info().Int("port", s.Port).Int("tables", len(s.Tables)).Msg("emulator listening")
	return http.ListenAndServe(addr, Observability(router))
}

func seedRows(table *memtable.Table, seed []types.SeedRow) error {
	ctx := context.Background()
	for _, row := range seed {
		fields, err := attributevalue.MarshalMap(row.Fields)
		if err != nil {
			return err
		}
		out, err := table.PutRow(ctx, tablestore.Row{
			PartitionKey: row.PartitionKey,
			RowKey:       row.RowKey,
			Fields:       fields,
		}, tablestore.ModeInsert)
		if err != nil {
			return err
		}
		if !out.Ok() {
			return fmt.Errorf("duplicate seed row %s/%s", row.PartitionKey, row.RowKey)
		}
	}
	return nil
}
