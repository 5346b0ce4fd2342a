// Package forecast extrapolates near-term enrollment totals and derives
// per-location anomaly probabilities with ranked early warnings.
package forecast

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/okian/pinsight/internal/domain/model"
	"github.com/okian/pinsight/internal/domain/policy"
)

// Trend window and probability tiers. These growth cutoffs are tuned for
// probability scoring and deliberately differ from the anomaly detector's
// growth thresholds.
const (
	trendWindow      = 6
	minHistoryPoints = 3
	daysPerPeriod    = 30

	// avgGrowth above this cutoff is labeled Medium confidence, below it
	// High. Preserved exactly as shipped even though one might expect the
	// volatile case to read as the less confident label.
	volatileGrowthCutoff = 0.10

	growthTierExtreme = 200
	growthTierHigh    = 150
	growthTierRaised  = 100
	growthPtsExtreme  = 40
	growthPtsHigh     = 30
	growthPtsRaised   = 20

	volumeTierExtreme = 4000
	volumeTierHigh    = 2500
	volumeTierRaised  = 1500
	volumePtsExtreme  = 30
	volumePtsHigh     = 20
	volumePtsRaised   = 10

	pushbackTierHigh   = 70
	pushbackTierRaised = 40
	pushbackPtsHigh    = 20
	pushbackPtsRaised  = 10

	deadlineWindowDays = 60
	deadlinePts        = 10

	maxProbability      = 100
	warningProbability  = 60
	criticalProbability = 80
	highRiskLimit       = 10
)

// Projection is one horizon's extrapolated total.
type Projection struct {
	Value      int     `json:"value"`
	Confidence string  `json:"confidence"`
	Trend      string  `json:"trend"`
	GrowthRate float64 `json:"growth_rate"`
}

// HighRiskPin is a location ranked by anomaly probability.
type HighRiskPin struct {
	Pincode     string         `json:"pincode"`
	District    string         `json:"district"`
	Probability int            `json:"probability"`
	CurrentRisk model.RiskTier `json:"current_risk"`
}

// Warning is an early warning for a location whose probability crossed the
// warning cutoff.
type Warning struct {
	Pincode     string `json:"pincode"`
	District    string `json:"district"`
	Severity    string `json:"severity"`
	Probability int    `json:"probability"`
	Message     string `json:"message"`
}

// Result bundles the horizon projections and location rankings. Horizon
// fields are nil when fewer than three historical points exist; forecasting
// is unavailable then, not zero.
type Result struct {
	Horizon30     *Projection   `json:"horizon_30"`
	Horizon60     *Projection   `json:"horizon_60"`
	Horizon90     *Projection   `json:"horizon_90"`
	HighRiskPins  []HighRiskPin `json:"high_risk_pins"`
	EarlyWarnings []Warning     `json:"early_warnings"`
}

// Option applies a configuration option to the Forecaster.
type Option func(*Forecaster)

// WithNow fixes the reference time for deadline proximity, for
// deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(f *Forecaster) {
		if now != nil {
			f.now = now
		}
	}
}

// Forecaster extrapolates the global series and ranks locations.
type Forecaster struct {
	now func() time.Time
}

// NewForecaster creates a forecaster with configuration options.
func NewForecaster(opts ...Option) *Forecaster {
	f := &Forecaster{now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Forecast produces the 30/60/90-day projections, the high-risk ranking
// and the early warnings for a snapshot.
func (f *Forecaster) Forecast(snap model.Snapshot) Result {
	proximity := policy.DaysToNearestDeadline(snap.Events, f.now())
	return Result{
		Horizon30:     f.project(snap.Dates, 30),
		Horizon60:     f.project(snap.Dates, 60),
		Horizon90:     f.project(snap.Dates, 90),
		HighRiskPins:  f.highRiskPins(snap, proximity),
		EarlyWarnings: f.earlyWarnings(snap, proximity),
	}
}

// project compounds the average period-over-period growth of the last
// trendWindow entries forward by ceil(days/30) periods.
func (f *Forecaster) project(dates model.DateSeries, days int) *Projection {
	if len(dates) < minHistoryPoints {
		return nil
	}

	start := len(dates) - trendWindow
	if start < 0 {
		start = 0
	}
	recent := dates[start:]

	var growthSum float64
	for i := 1; i < len(recent); i++ {
		prev := float64(recent[i-1].Total)
		if prev == 0 {
			continue // degenerate pair contributes nothing
		}
		growthSum += (float64(recent[i].Total) - prev) / prev
	}
	avgGrowth := growthSum / float64(len(recent)-1)

	last := float64(dates[len(dates)-1].Total)
	periods := math.Ceil(float64(days) / daysPerPeriod)
	predicted := last * math.Pow(1+avgGrowth, periods)

	confidence := "High"
	if avgGrowth > volatileGrowthCutoff {
		confidence = "Medium"
	}
	trend := "Decreasing"
	if avgGrowth > 0 {
		trend = "Increasing"
	}

	return &Projection{
		Value:      int(math.Round(predicted)),
		Confidence: confidence,
		Trend:      trend,
		GrowthRate: math.Round(avgGrowth*1000) / 10,
	}
}

// Probability is the capped additive anomaly probability for one location.
func Probability(pin model.PinRecord, proximity policy.Proximity) int {
	probability := 0

	switch {
	case pin.GrowthRate > growthTierExtreme:
		probability += growthPtsExtreme
	case pin.GrowthRate > growthTierHigh:
		probability += growthPtsHigh
	case pin.GrowthRate > growthTierRaised:
		probability += growthPtsRaised
	}

	switch {
	case pin.TotalEnrollment > volumeTierExtreme:
		probability += volumePtsExtreme
	case pin.TotalEnrollment > volumeTierHigh:
		probability += volumePtsHigh
	case pin.TotalEnrollment > volumeTierRaised:
		probability += volumePtsRaised
	}

	switch {
	case pin.BorderPushbackEstimate > pushbackTierHigh:
		probability += pushbackPtsHigh
	case pin.BorderPushbackEstimate > pushbackTierRaised:
		probability += pushbackPtsRaised
	}

	if proximity.Known && proximity.Days < deadlineWindowDays {
		probability += deadlinePts
	}

	if probability > maxProbability {
		probability = maxProbability
	}
	return probability
}

// highRiskPins ranks high-tier or fast-growing locations by probability,
// capped at the top ten.
func (f *Forecaster) highRiskPins(snap model.Snapshot, proximity policy.Proximity) []HighRiskPin {
	ranked := make([]HighRiskPin, 0)
	for _, pin := range snap.Pins {
		if pin.RiskTier != model.RiskHigh && pin.GrowthRate <= growthTierHigh {
			continue
		}
		ranked = append(ranked, HighRiskPin{
			Pincode:     pin.Pincode,
			District:    pin.District,
			Probability: Probability(pin, proximity),
			CurrentRisk: pin.RiskTier,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Probability > ranked[j].Probability
	})
	if len(ranked) > highRiskLimit {
		ranked = ranked[:highRiskLimit]
	}
	return ranked
}

// earlyWarnings emits a warning for every location above the warning
// probability, sorted descending.
func (f *Forecaster) earlyWarnings(snap model.Snapshot, proximity policy.Proximity) []Warning {
	warnings := make([]Warning, 0)
	for _, pin := range snap.Pins {
		probability := Probability(pin, proximity)
		if probability <= warningProbability {
			continue
		}
		severity := "High"
		if probability > criticalProbability {
			severity = "Critical"
		}
		warnings = append(warnings, Warning{
			Pincode:     pin.Pincode,
			District:    pin.District,
			Severity:    severity,
			Probability: probability,
			Message:     warningMessage(pin, proximity),
		})
	}
	sort.SliceStable(warnings, func(i, j int) bool {
		return warnings[i].Probability > warnings[j].Probability
	})
	return warnings
}

// warningMessage lists only the reasons that individually crossed their
// top tier thresholds.
func warningMessage(pin model.PinRecord, proximity policy.Proximity) string {
	var reasons []string

	if pin.GrowthRate > growthTierExtreme {
		reasons = append(reasons, fmt.Sprintf("Extreme growth rate of %d%%", pin.GrowthRate))
	}
	if pin.TotalEnrollment > volumeTierExtreme {
		reasons = append(reasons, fmt.Sprintf("High enrollment volume (%d)", pin.TotalEnrollment))
	}
	if proximity.Known && proximity.Days < deadlineWindowDays {
		reasons = append(reasons, fmt.Sprintf("%d days to policy deadline", proximity.Days))
	}

	return strings.Join(reasons, ". ") + "."
}
