// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/pinsight/internal/adapters/repository"
	"github.com/okian/pinsight/internal/domain/model"
)

// RecordsHandler handles record ingestion and the aggregated pin listing.
type RecordsHandler struct {
	deps           Dependencies
	maxUploadBytes int64
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps Dependencies, maxUploadBytes int64) *RecordsHandler {
	return &RecordsHandler{deps: deps, maxUploadBytes: maxUploadBytes}
}

// HandleRecords handles POST /records. The body is CSV by default; a JSON
// array of records is accepted with Content-Type application/json.
func (h *RecordsHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_records"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	body := http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	defer body.Close()

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var records []model.RawRecord
		if err := json.NewDecoder(body).Decode(&records); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		report := h.deps.IngestRecords(r.Context(), records)
		writeJSON(w, http.StatusOK, report)
		return
	}

	report, err := h.deps.IngestCSV(r.Context(), body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleGetPins handles GET /pins.
func (h *RecordsHandler) HandleGetPins(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_pins"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	pins, err := h.deps.Pins(r.Context())
	if err != nil {
		writeSnapshotError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, pins)
}

// writeSnapshotError translates a missing snapshot into 404 and everything
// else into 500.
func writeSnapshotError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, repository.ErrNoSnapshot) {
		writeError(w, http.StatusNotFound, "no_data", WrapKind(op, ErrNoData, err))
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
}
