// Package alert evaluates analyst-configured threshold rules and keeps a
// bounded rolling alert history.
package alert

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/pinsight/internal/domain/model"
	"github.com/okian/pinsight/internal/domain/policy"
)

// Severity labels.
const (
	SeverityHigh     = "High"
	SeverityCritical = "Critical"
)

// Alert rule constants.
const (
	historyCap = 50

	// A value this many times over its threshold escalates to Critical.
	criticalFactor = 1.5

	// Deadline alerts require growth above this floor and escalate when
	// the deadline is under criticalDeadlineDays away.
	deadlineGrowthFloor  = 100
	criticalDeadlineDays = 30
)

// Alert types.
const (
	TypeGrowth     = "Growth Rate"
	TypeEnrollment = "High Enrollment"
	TypeDeadline   = "Policy Deadline"
)

// Config holds the analyst-configured thresholds.
type Config struct {
	GrowthThreshold     int `json:"growth_threshold" koanf:"growth_threshold"`
	EnrollmentThreshold int `json:"enrollment_threshold" koanf:"enrollment_threshold"`
	DaysToDeadline      int `json:"days_to_deadline" koanf:"days_to_deadline"`
}

// Validate rejects non-positive thresholds at the configuration boundary.
func (c Config) Validate() error {
	if c.GrowthThreshold <= 0 {
		return fmt.Errorf("%w: growth_threshold must be positive", ErrInvalidThreshold)
	}
	if c.EnrollmentThreshold <= 0 {
		return fmt.Errorf("%w: enrollment_threshold must be positive", ErrInvalidThreshold)
	}
	if c.DaysToDeadline <= 0 {
		return fmt.Errorf("%w: days_to_deadline must be positive", ErrInvalidThreshold)
	}
	return nil
}

// DefaultConfig returns the shipped alert thresholds.
func DefaultConfig() Config {
	return Config{
		GrowthThreshold:     150,
		EnrollmentThreshold: 3000,
		DaysToDeadline:      60,
	}
}

// Alert is one rule match from an evaluation pass. Identity is not
// deduplicated across passes; re-evaluating unchanged data re-emits
// equivalent alerts with fresh IDs.
type Alert struct {
	ID        string    `json:"id"`
	Pincode   string    `json:"pincode"`
	District  string    `json:"district"`
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Value     int       `json:"value"`
}

// Evaluation is the outcome of one pass: the freshly emitted alerts plus
// the rolling history, most recent first.
type Evaluation struct {
	Active  []Alert `json:"active"`
	History []Alert `json:"history"`
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithConfig sets the initial thresholds. Invalid values keep defaults.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		if cfg.Validate() == nil {
			e.cfg = cfg
		}
	}
}

// WithNow fixes the clock, for deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine is the only stateful analysis component: it owns the thresholds
// and the bounded history, guarded by a single mutex so one evaluation
// pass completes atomically before the next reads history.
type Engine struct {
	mu      sync.Mutex
	cfg     Config
	history []Alert
	now     func() time.Time
}

// NewEngine creates an alert engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cfg: DefaultConfig(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Configure replaces the thresholds. Invalid config is rejected and the
// prior values are retained.
func (e *Engine) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	return nil
}

// Config returns the current thresholds.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Evaluate runs every rule against every location, prepends matches to the
// history and trims it to the most recent historyCap entries.
func (e *Engine) Evaluate(snap model.Snapshot) Evaluation {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	proximity := policy.DaysToNearestDeadline(snap.Events, now)

	active := make([]Alert, 0)
	for _, pin := range snap.Pins {
		if pin.GrowthRate > e.cfg.GrowthThreshold {
			active = append(active, Alert{
				ID:        uuid.New().String(),
				Pincode:   pin.Pincode,
				District:  pin.District,
				Type:      TypeGrowth,
				Severity:  escalate(float64(pin.GrowthRate), float64(e.cfg.GrowthThreshold)),
				Message:   fmt.Sprintf("Growth rate of %d%% exceeds threshold of %d%%", pin.GrowthRate, e.cfg.GrowthThreshold),
				Timestamp: now,
				Value:     pin.GrowthRate,
			})
		}

		if pin.TotalEnrollment > e.cfg.EnrollmentThreshold {
			active = append(active, Alert{
				ID:        uuid.New().String(),
				Pincode:   pin.Pincode,
				District:  pin.District,
				Type:      TypeEnrollment,
				Severity:  escalate(float64(pin.TotalEnrollment), float64(e.cfg.EnrollmentThreshold)),
				Message:   fmt.Sprintf("Enrollment of %d exceeds threshold of %d", pin.TotalEnrollment, e.cfg.EnrollmentThreshold),
				Timestamp: now,
				Value:     pin.TotalEnrollment,
			})
		}

		if proximity.Known && proximity.Days < e.cfg.DaysToDeadline && pin.GrowthRate > deadlineGrowthFloor {
			severity := SeverityHigh
			if proximity.Days < criticalDeadlineDays {
				severity = SeverityCritical
			}
			active = append(active, Alert{
				ID:        uuid.New().String(),
				Pincode:   pin.Pincode,
				District:  pin.District,
				Type:      TypeDeadline,
				Severity:  severity,
				Message:   fmt.Sprintf("High growth (%d%%) detected %d days before policy deadline", pin.GrowthRate, proximity.Days),
				Timestamp: now,
				Value:     proximity.Days,
			})
		}
	}

	if len(active) > 0 {
		e.history = append(append([]Alert{}, active...), e.history...)
		if len(e.history) > historyCap {
			e.history = e.history[:historyCap]
		}
	}

	history := make([]Alert, len(e.history))
	copy(history, e.history)

	return Evaluation{Active: active, History: history}
}

// escalate maps a value against its threshold onto a severity.
func escalate(value, threshold float64) string {
	if value > threshold*criticalFactor {
		return SeverityCritical
	}
	return SeverityHigh
}
