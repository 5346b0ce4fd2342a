// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// InsightsHandler handles the supplemental analysis endpoints: policy
// correlation, age analysis and data quality.
type InsightsHandler struct {
	deps Dependencies
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(deps Dependencies) *InsightsHandler {
	return &InsightsHandler{deps: deps}
}

// HandleGetPolicyCorrelation handles GET /policy-correlation requests.
func (h *InsightsHandler) HandleGetPolicyCorrelation(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_policy_correlation"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	impacts, err := h.deps.PolicyImpact(r.Context())
	if err != nil {
		writeSnapshotError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, impacts)
}

// HandleGetAges handles GET /ages requests.
func (h *InsightsHandler) HandleGetAges(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_ages"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	result, err := h.deps.Ages(r.Context())
	if err != nil {
		writeSnapshotError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleGetQuality handles GET /quality requests.
func (h *InsightsHandler) HandleGetQuality(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_quality"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	result, err := h.deps.Quality(r.Context())
	if err != nil {
		writeSnapshotError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
