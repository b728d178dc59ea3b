package types

// SeedRow is one pre-loaded row declared in the emulator's JSON config.
type SeedRow struct {
	PartitionKey string         `json:"partition_key"`
	RowKey       string         `json:"row_key"`
	Fields       map[string]any `json:"fields,omitempty"`
}

// WireRow is the JSON shape of a row in responses and write bodies.
type WireRow struct {
	PartitionKey string         `json:"partition_key"`
	RowKey       string         `json:"row_key"`
	Stamp        string         `json:"stamp,omitempty"`
	Fields       map[string]any `json:"fields,omitempty"`
}

// SegmentRequest asks for one segment of a table's rows.
type SegmentRequest struct {
	Token string `json:"token,omitempty"`
	Limit int32  `json:"limit,omitempty"`
}

// SegmentResponse carries one segment plus the continuation token for the
// next fetch; an empty token means the table is exhausted.
type SegmentResponse struct {
	Rows      []WireRow `json:"rows"`
	NextToken string    `json:"next_token,omitempty"`
}

// OutcomeResponse mirrors the outcome of a write.
type OutcomeResponse struct {
	StatusCode int    `json:"status_code"`
	Stamp      string `json:"stamp,omitempty"`
}

// ErrorResponse is the body of every non-2xx emulator reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
