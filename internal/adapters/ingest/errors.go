package ingest

import "errors"

// Sentinel kinds for ingestion errors.
var (
	ErrUnreadableInput = errors.New("unreadable input")
	ErrMissingColumn   = errors.New("missing required column")
)
