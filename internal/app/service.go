// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/okian/pinsight/internal/adapters/ingest"
	"github.com/okian/pinsight/internal/adapters/repository"
	"github.com/okian/pinsight/internal/domain/aggregate"
	"github.com/okian/pinsight/internal/domain/ages"
	"github.com/okian/pinsight/internal/domain/alert"
	"github.com/okian/pinsight/internal/domain/anomaly"
	"github.com/okian/pinsight/internal/domain/dedupe"
	"github.com/okian/pinsight/internal/domain/forecast"
	"github.com/okian/pinsight/internal/domain/model"
	"github.com/okian/pinsight/internal/domain/pattern"
	"github.com/okian/pinsight/internal/domain/policy"
	"github.com/okian/pinsight/internal/domain/quality"
	"github.com/okian/pinsight/internal/domain/risk"
	"github.com/okian/pinsight/pkg/logger"
	"github.com/okian/pinsight/pkg/metrics"
)

// Service implements the API dependencies for the enrollment analytics
// system. All analysis runs over an immutable snapshot read from the store
// at the start of each call; only the alert engine carries state.
type Service struct {
	mu sync.RWMutex

	// Core components
	store        repository.Store
	detector     *anomaly.Detector
	scorer       *risk.Scorer
	patterns     *pattern.Engine
	forecaster   *forecast.Forecaster
	alerts       *alert.Engine
	tracker      dedupe.Tracker

	// Configuration
	events      []model.PolicyEvent
	alertConfig alert.Config
	dedupeSize  int
	now         func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPolicyEvents sets the static policy timeline.
func WithPolicyEvents(events []model.PolicyEvent) Option {
	return func(s *Service) {
		if len(events) > 0 {
			s.events = events
		}
	}
}

// WithAlertConfig sets the initial alert thresholds.
func WithAlertConfig(cfg alert.Config) Option {
	return func(s *Service) {
		if cfg.Validate() == nil {
			s.alertConfig = cfg
		}
	}
}

// WithDedupeSize bounds the duplicate-record tracker.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithNow fixes the clock for all engines, for deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		events:      policy.DefaultTimeline(),
		alertConfig: alert.DefaultConfig(),
		dedupeSize:  100_000,
		now:         time.Now,
		logger:      nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting analytics service...")

	s.store = repository.NewMemStore()
	s.tracker = dedupe.NewInMemoryTracker(dedupe.WithMaxSize(s.dedupeSize))
	s.detector = anomaly.NewDetector(anomaly.WithNow(s.now))
	s.scorer = risk.NewScorer(risk.WithNow(s.now))
	s.patterns = pattern.NewEngine()
	s.forecaster = forecast.NewForecaster(forecast.WithNow(s.now))
	s.alerts = alert.NewEngine(
		alert.WithConfig(s.alertConfig),
		alert.WithNow(s.now),
	)

	s.started = true
	s.logger.Info(ctx, "analytics service started",
		logger.Int("policyEvents", len(s.events)),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop shuts the service down. All state is in-memory, so there is nothing
// to flush.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "analytics service stopped")
}

// IngestCSV parses a CSV stream, rebuilds the aggregated snapshot and
// swaps it into the store.
func (s *Service) IngestCSV(ctx context.Context, r io.Reader) (ingest.Report, error) {
	records, report, err := ingest.ParseCSV(r)
	if err != nil {
		return report, err
	}
	s.ingest(ctx, records, &report)
	return report, nil
}

// IngestRecords rebuilds the snapshot from pre-validated records, for
// callers that deliver JSON instead of CSV.
func (s *Service) IngestRecords(ctx context.Context, records []model.RawRecord) ingest.Report {
	var report ingest.Report
	report.Accepted = len(records)
	s.ingest(ctx, records, &report)
	return report
}

func (s *Service) ingest(ctx context.Context, records []model.RawRecord, report *ingest.Report) {
	start := time.Now()

	snap, stats := aggregate.Build(records,
		aggregate.WithEvents(s.events),
		aggregate.WithNow(s.now()),
	)
	// The aggregator re-checks required fields; fold its rejects into the
	// boundary report.
	report.Accepted = stats.Accepted
	report.Rejected += stats.Rejected

	// Count duplicate date+location submissions as a quality signal.
	s.tracker.Reset()
	for _, rec := range records {
		if s.tracker.SeenAndRecord(dedupe.Key(rec.Date, rec.Pincode)) {
			metrics.RecordDuplicate()
		}
	}

	s.store.Replace(ctx, snap)

	elapsed := time.Since(start)
	metrics.RecordIngested(report.Accepted)
	metrics.RecordRejected(report.Rejected)
	metrics.RecordSnapshotRebuild(float64(elapsed.Milliseconds()))
	metrics.UpdateSnapshotTimestamp(snap.BuiltAt.Unix())
	metrics.UpdateTrackedLocations(len(snap.Pins))

	s.logger.Info(ctx, "snapshot rebuilt",
		logger.Int("locations", len(snap.Pins)),
		logger.Int("accepted", report.Accepted),
		logger.Int("rejected", report.Rejected),
		logger.Duration("elapsed", elapsed),
	)
}

// Pins returns the aggregated locations from the current snapshot.
func (s *Service) Pins(ctx context.Context) ([]model.PinRecord, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Pins, nil
}

// Anomalies runs the selected detection method over the current snapshot.
func (s *Service) Anomalies(ctx context.Context, method anomaly.Method, sensitivity anomaly.Sensitivity) ([]anomaly.Record, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	records := s.detector.Detect(snap, method, sensitivity)
	metrics.RecordAnalysisRun("anomaly")
	metrics.RecordAnomaliesFound(string(method), len(records))
	return records, nil
}

// RiskMatrix computes the weighted risk matrix for the current snapshot.
func (s *Service) RiskMatrix(ctx context.Context) ([]risk.MatrixEntry, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	metrics.RecordAnalysisRun("risk")
	return s.scorer.Score(snap), nil
}

// Patterns runs pattern recognition over the current snapshot.
func (s *Service) Patterns(ctx context.Context) (pattern.Result, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return pattern.Result{}, err
	}
	metrics.RecordAnalysisRun("pattern")
	return s.patterns.Recognize(snap), nil
}

// Forecast produces horizon projections and early warnings for the current
// snapshot.
func (s *Service) Forecast(ctx context.Context) (forecast.Result, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return forecast.Result{}, err
	}
	result := s.forecaster.Forecast(snap)
	metrics.RecordAnalysisRun("forecast")
	metrics.UpdateEarlyWarnings(len(result.EarlyWarnings))
	return result, nil
}

// ConfigureAlerts replaces the alert thresholds. Invalid config keeps the
// prior values.
func (s *Service) ConfigureAlerts(ctx context.Context, cfg alert.Config) error {
	if err := s.alerts.Configure(cfg); err != nil {
		return err
	}
	s.logger.Info(ctx, "alert thresholds updated",
		logger.Int("growth", cfg.GrowthThreshold),
		logger.Int("enrollment", cfg.EnrollmentThreshold),
		logger.Int("daysToDeadline", cfg.DaysToDeadline),
	)
	return nil
}

// AlertConfig returns the current alert thresholds.
func (s *Service) AlertConfig(_ context.Context) alert.Config {
	return s.alerts.Config()
}

// EvaluateAlerts runs an alert pass over the current snapshot.
func (s *Service) EvaluateAlerts(ctx context.Context) (alert.Evaluation, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return alert.Evaluation{}, err
	}
	evaluation := s.alerts.Evaluate(snap)
	metrics.RecordAnalysisRun("alert")
	for _, a := range evaluation.Active {
		metrics.RecordAlertEmitted(a.Severity)
	}
	return evaluation, nil
}

// PolicyImpact compares enrollment activity around each policy event.
func (s *Service) PolicyImpact(ctx context.Context) ([]policy.EventImpact, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	metrics.RecordAnalysisRun("policy")
	return policy.AnalyzeImpact(snap), nil
}

// Ages runs the age-bucket analyses over the current snapshot.
func (s *Service) Ages(ctx context.Context) (ages.Result, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return ages.Result{}, err
	}
	metrics.RecordAnalysisRun("ages")
	return ages.Analyze(snap), nil
}

// Quality assesses completeness, outliers and consistency of the current
// snapshot.
func (s *Service) Quality(ctx context.Context) (quality.Result, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return quality.Result{}, err
	}
	metrics.RecordAnalysisRun("quality")
	return quality.Assess(snap, s.tracker), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"policyEvents": len(s.events),
	}

	if s.started {
		stats["locations"] = s.store.Count(ctx)
		if snap, err := s.store.Current(ctx); err == nil {
			stats["records"] = len(snap.Records)
			stats["dates"] = len(snap.Dates)
			stats["builtAt"] = snap.BuiltAt
		}
	}

	return stats
}
