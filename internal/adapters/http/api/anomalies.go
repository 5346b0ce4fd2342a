// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/pinsight/internal/domain/anomaly"
)

// AnomalyHandler handles anomaly detection requests.
type AnomalyHandler struct {
	deps Dependencies
}

// NewAnomalyHandler creates a new anomaly handler.
func NewAnomalyHandler(deps Dependencies) *AnomalyHandler {
	return &AnomalyHandler{deps: deps}
}

// HandleGetAnomalies handles GET /anomalies?method=zscore&sensitivity=medium.
// A missing method defaults to zscore and a missing sensitivity to medium,
// mirroring the analyst-facing defaults.
func (h *AnomalyHandler) HandleGetAnomalies(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_anomalies"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	method := anomaly.Method(r.URL.Query().Get("method"))
	if method == "" {
		method = anomaly.MethodZScore
	}
	sensitivity := anomaly.Sensitivity(r.URL.Query().Get("sensitivity"))
	if sensitivity == "" {
		sensitivity = anomaly.SensitivityMedium
	}

	records, err := h.deps.Anomalies(r.Context(), method, sensitivity)
	if err != nil {
		writeSnapshotError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
