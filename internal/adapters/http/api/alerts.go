// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/pinsight/internal/domain/alert"
)

// AlertsHandler handles alert evaluation and threshold configuration.
type AlertsHandler struct {
	deps Dependencies
}

// NewAlertsHandler creates a new alerts handler.
func NewAlertsHandler(deps Dependencies) *AlertsHandler {
	return &AlertsHandler{deps: deps}
}

// HandleGetAlerts handles GET /alerts. Every call runs a fresh evaluation
// pass; alerts are not deduplicated across passes.
func (h *AlertsHandler) HandleGetAlerts(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_alerts"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	evaluation, err := h.deps.EvaluateAlerts(r.Context())
	if err != nil {
		writeSnapshotError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluation)
}

// HandleAlertConfig handles GET and PUT /alerts/config. Invalid thresholds
// are rejected and the prior configuration is retained.
func (h *AlertsHandler) HandleAlertConfig(w http.ResponseWriter, r *http.Request) {
	const op = "api.alert_config"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.AlertConfig(r.Context()))
	case http.MethodPut:
		var cfg alert.Config
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := h.deps.ConfigureAlerts(r.Context(), cfg); err != nil {
			if errors.Is(err, alert.ErrInvalidThreshold) {
				writeError(w, http.StatusBadRequest, "invalid_threshold", WrapKind(op, ErrBadRequest, err))
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, h.deps.AlertConfig(r.Context()))
	default:
		http.NotFound(w, r)
	}
}
