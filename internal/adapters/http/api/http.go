// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/pinsight/internal/adapters/ingest"
	"github.com/okian/pinsight/internal/domain/ages"
	"github.com/okian/pinsight/internal/domain/alert"
	"github.com/okian/pinsight/internal/domain/anomaly"
	"github.com/okian/pinsight/internal/domain/forecast"
	"github.com/okian/pinsight/internal/domain/model"
	"github.com/okian/pinsight/internal/domain/pattern"
	"github.com/okian/pinsight/internal/domain/policy"
	"github.com/okian/pinsight/internal/domain/quality"
	"github.com/okian/pinsight/internal/domain/risk"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	IngestCSV(ctx context.Context, r io.Reader) (ingest.Report, error)
	IngestRecords(ctx context.Context, records []model.RawRecord) ingest.Report

	Pins(ctx context.Context) ([]model.PinRecord, error)
	Anomalies(ctx context.Context, method anomaly.Method, sensitivity anomaly.Sensitivity) ([]anomaly.Record, error)
	RiskMatrix(ctx context.Context) ([]risk.MatrixEntry, error)
	Patterns(ctx context.Context) (pattern.Result, error)
	Forecast(ctx context.Context) (forecast.Result, error)

	ConfigureAlerts(ctx context.Context, cfg alert.Config) error
	AlertConfig(ctx context.Context) alert.Config
	EvaluateAlerts(ctx context.Context) (alert.Evaluation, error)

	PolicyImpact(ctx context.Context) ([]policy.EventImpact, error)
	Ages(ctx context.Context) (ages.Result, error)
	Quality(ctx context.Context) (quality.Result, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	recordsHandler  *RecordsHandler
	anomalyHandler  *AnomalyHandler
	riskHandler     *RiskHandler
	patternHandler  *PatternHandler
	forecastHandler *ForecastHandler
	alertsHandler   *AlertsHandler
	insightsHandler *InsightsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxUploadBytes int64) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		recordsHandler:  NewRecordsHandler(deps, maxUploadBytes),
		anomalyHandler:  NewAnomalyHandler(deps),
		riskHandler:     NewRiskHandler(deps),
		patternHandler:  NewPatternHandler(deps),
		forecastHandler: NewForecastHandler(deps),
		alertsHandler:   NewAlertsHandler(deps),
		insightsHandler: NewInsightsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/records", MetricsMiddleware(s.recordsHandler.HandleRecords, "records"))
	mux.HandleFunc("/pins", MetricsMiddleware(s.recordsHandler.HandleGetPins, "pins"))
	mux.HandleFunc("/anomalies", MetricsMiddleware(s.anomalyHandler.HandleGetAnomalies, "anomalies"))
	mux.HandleFunc("/risk-matrix", MetricsMiddleware(s.riskHandler.HandleGetRiskMatrix, "risk_matrix"))
	mux.HandleFunc("/patterns", MetricsMiddleware(s.patternHandler.HandleGetPatterns, "patterns"))
	mux.HandleFunc("/forecast", MetricsMiddleware(s.forecastHandler.HandleGetForecast, "forecast"))
	mux.HandleFunc("/alerts", MetricsMiddleware(s.alertsHandler.HandleGetAlerts, "alerts"))
	mux.HandleFunc("/alerts/config", MetricsMiddleware(s.alertsHandler.HandleAlertConfig, "alerts_config"))
	mux.HandleFunc("/policy-correlation", MetricsMiddleware(s.insightsHandler.HandleGetPolicyCorrelation, "policy_correlation"))
	mux.HandleFunc("/ages", MetricsMiddleware(s.insightsHandler.HandleGetAges, "ages"))
	mux.HandleFunc("/quality", MetricsMiddleware(s.insightsHandler.HandleGetQuality, "quality"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
