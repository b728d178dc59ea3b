package config

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/raywall/tablestore-toolkit/tablestore"
	"github.com/raywall/tablestore-toolkit/tools/emulator/memtable"
	"github.com/raywall/tablestore-toolkit/tools/emulator/types"
)

// HeaderStamp carries the concurrency stamp of a write or delete. Absent
// means unconditional, matching tablestore.UnconditionalStamp.
const HeaderStamp = "x-stamp"

func healthHandler(w http.ResponseWriter, r *http.Request) {
	sendResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func getRowHandler(table *memtable.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		row, err := table.GetByKey(r.Context(), vars["pk"], vars["rk"])
		if errors.Is(err, tablestore.ErrNotFound) {
			sendError(w, http.StatusNotFound, "row not found")
			return
		}
		if err != nil {
			sendError(w, http.StatusInternalServerError, err.Error())
			return
		}
		sendResponse(w, http.StatusOK, toWire(row))
	}
}

// putRowHandler writes the body's fields under the identity in the path.
// The write mode comes from the mode query parameter (default
// insertOrReplace) and the stamp from the x-stamp header.
func putRowHandler(table *memtable.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		var body struct {
			Fields map[string]any `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			sendError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		fields, err := attributevalue.MarshalMap(body.Fields)
		if err != nil {
			sendError(w, http.StatusBadRequest, err.Error())
			return
		}

		mode := tablestore.WriteMode(r.URL.Query().Get("mode"))
		if mode == "" {
			mode = tablestore.ModeInsertOrReplace
		}

		row := tablestore.Row{
			PartitionKey: vars["pk"],
			RowKey:       vars["rk"],
			Stamp:        stampOf(r),
			Fields:       fields,
		}
		out, err := table.PutRow(r.Context(), row, mode)
		if err != nil {
			status := http.StatusInternalServerError
			if tablestore.IsInvalidArgument(err) {
				status = http.StatusBadRequest
			}
			sendError(w, status, err.Error())
			return
		}
		sendResponse(w, out.StatusCode, types.OutcomeResponse{StatusCode: out.StatusCode, Stamp: out.Stamp})
	}
}

func deleteRowHandler(table *memtable.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		out, err := table.DeleteRow(r.Context(), vars["pk"], vars["rk"], stampOf(r))
		if err != nil {
			sendError(w, http.StatusInternalServerError, err.Error())
			return
		}
		sendResponse(w, out.StatusCode, types.OutcomeResponse{StatusCode: out.StatusCode})
	}
}

// segmentHandler serves one segment per call; clients drain by feeding the
// returned token back until it comes back empty.
func segmentHandler(table *memtable.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SegmentRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				sendError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
		}

		seg, err := table.FetchSegment(r.Context(), tablestore.Query{}, tablestore.ContinuationToken(req.Token), req.Limit)
		if err != nil {
			status := http.StatusInternalServerError
			if tablestore.IsInvalidArgument(err) {
				status = http.StatusBadRequest
			}
			sendError(w, status, err.Error())
			return
		}

		resp := types.SegmentResponse{
			Rows:      make([]types.WireRow, 0, len(seg.Rows)),
			NextToken: string(seg.NextToken),
		}
		for _, row := range seg.Rows {
			resp.Rows = append(resp.Rows, toWire(row))
		}
		sendResponse(w, http.StatusOK, resp)
	}
}

func stampOf(r *http.Request) string {
	if stamp := r.Header.Get(HeaderStamp); stamp != "" {
		return stamp
	}
	return tablestore.UnconditionalStamp
}

func toWire(row tablestore.Row) types.WireRow {
	wire := types.WireRow{
		PartitionKey: row.PartitionKey,
		RowKey:       row.RowKey,
		Stamp:        row.Stamp,
	}
	// Undecodable bags come back as an empty field map; the identity and
	// stamp still round-trip.
	_ = attributevalue.UnmarshalMap(row.Fields, &wire.Fields)
	return wire
}

func sendResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.Error().Err(err).Msg("encoding emulator response")
		}
	}
}

func sendError(w http.ResponseWriter, status int, message string) {
	sendResponse(w, status, types.ErrorResponse{Error: message})
}
