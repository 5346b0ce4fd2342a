// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// ForecastHandler handles forecast requests.
type ForecastHandler struct {
	deps Dependencies
}

// NewForecastHandler creates a new forecast handler.
func NewForecastHandler(deps Dependencies) *ForecastHandler {
	return &ForecastHandler{deps: deps}
}

// HandleGetForecast handles GET /forecast requests.
func (h *ForecastHandler) HandleGetForecast(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_forecast"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	result, err := h.deps.Forecast(r.Context())
	if err != nil {
		writeSnapshotError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
