package ingest

import "errors"

// Sentinel kinds for ingestion errors.
var (
	ErrMissingKey = errors.New("missing required key")
)
