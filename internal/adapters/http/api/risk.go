// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// RiskHandler handles risk matrix requests.
type RiskHandler struct {
	deps Dependencies
}

// NewRiskHandler creates a new risk handler.
func NewRiskHandler(deps Dependencies) *RiskHandler {
	return &RiskHandler{deps: deps}
}

// HandleGetRiskMatrix handles GET /risk-matrix requests.
func (h *RiskHandler) HandleGetRiskMatrix(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_risk_matrix"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	matrix, err := h.deps.RiskMatrix(r.Context())
	if err != nil {
		writeSnapshotError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, matrix)
}
