// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// PatternHandler handles pattern recognition requests.
type PatternHandler struct {
	deps Dependencies
}

// NewPatternHandler creates a new pattern handler.
func NewPatternHandler(deps Dependencies) *PatternHandler {
	return &PatternHandler{deps: deps}
}

// HandleGetPatterns handles GET /patterns requests.
func (h *PatternHandler) HandleGetPatterns(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_patterns"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	result, err := h.deps.Patterns(r.Context())
	if err != nil {
		writeSnapshotError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
