// Package anomaly flags statistically unusual locations using one of three
// interchangeable detection methods.
package anomaly

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/pinsight/internal/domain/model"
	"github.com/okian/pinsight/internal/domain/policy"
)

// Method selects the detection algorithm.
type Method string

// Supported detection methods.
const (
	MethodZScore Method = "zscore"
	MethodIQR    Method = "iqr"
	MethodGrowth Method = "growth"
)

// Sensitivity tunes how aggressively each method flags locations.
type Sensitivity string

// Sensitivity levels. Higher sensitivity means lower thresholds and more
// flagged locations.
const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// Confidence labels attached to flagged locations.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// Per-method cutoff tables. The growth cutoffs here deliberately differ
// from the forecaster's probability tiers; each engine tunes its own.
const (
	zThresholdLow    = 3.0
	zThresholdMedium = 2.5
	zThresholdHigh   = 2.0
	zConfidenceHigh  = 3.0
	zConfidenceMed   = 2.5

	iqrMultiplierLow    = 2.5
	iqrMultiplierMedium = 2.0
	iqrMultiplierHigh   = 1.5
	iqrDeviationHigh    = 100.0
	iqrDeviationMed     = 50.0

	growthThresholdLow    = 200
	growthThresholdMedium = 150
	growthThresholdHigh   = 100
	growthConfidenceHigh  = 250
	growthConfidenceMed   = 150
)

// Record describes one flagged location. Transient, recomputed per
// invocation and never persisted.
type Record struct {
	Pincode        string           `json:"pincode"`
	District       string           `json:"district"`
	Enrollment     int              `json:"enrollment"`
	Score          float64          `json:"score"`
	Confidence     string           `json:"confidence"`
	Reason         string           `json:"reason"`
	DaysToDeadline policy.Proximity `json:"days_to_deadline"`
}

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithNow fixes the reference time for deadline proximity, for
// deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}

// Detector runs anomaly detection over an aggregated snapshot.
type Detector struct {
	now func() time.Time
}

// NewDetector creates a detector with configuration options.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect dispatches to the selected method. Unknown methods fall back to
// z-score, mirroring the analyst-facing default.
func (d *Detector) Detect(snap model.Snapshot, method Method, sensitivity Sensitivity) []Record {
	switch method {
	case MethodIQR:
		return d.detectIQR(snap, sensitivity)
	case MethodGrowth:
		return d.detectGrowth(snap, sensitivity)
	default:
		return d.detectZScore(snap, sensitivity)
	}
}

// detectZScore flags locations whose total enrollment deviates from the
// population mean by more than the sensitivity threshold in population
// standard deviations. Zero variance flags nothing.
func (d *Detector) detectZScore(snap model.Snapshot, sensitivity Sensitivity) []Record {
	threshold := zThresholdLow
	switch sensitivity {
	case SensitivityMedium:
		threshold = zThresholdMedium
	case SensitivityHigh:
		threshold = zThresholdHigh
	}

	if len(snap.Pins) == 0 {
		return []Record{}
	}

	var sum float64
	for _, pin := range snap.Pins {
		sum += float64(pin.TotalEnrollment)
	}
	mean := sum / float64(len(snap.Pins))

	var sqSum float64
	for _, pin := range snap.Pins {
		diff := float64(pin.TotalEnrollment) - mean
		sqSum += diff * diff
	}
	stdDev := math.Sqrt(sqSum / float64(len(snap.Pins)))
	if stdDev == 0 {
		return []Record{}
	}

	proximity := policy.DaysToNearestDeadline(snap.Events, d.now())

	records := make([]Record, 0)
	for _, pin := range snap.Pins {
		z := math.Abs(float64(pin.TotalEnrollment)-mean) / stdDev
		if z <= threshold {
			continue
		}
		confidence := ConfidenceLow
		if z > zConfidenceHigh {
			confidence = ConfidenceHigh
		} else if z > zConfidenceMed {
			confidence = ConfidenceMedium
		}
		records = append(records, Record{
			Pincode:        pin.Pincode,
			District:       pin.District,
			Enrollment:     pin.TotalEnrollment,
			Score:          math.Round(z*100) / 100,
			Confidence:     confidence,
			Reason:         fmt.Sprintf("Z-Score of %.2f exceeds threshold of %g", z, threshold),
			DaysToDeadline: proximity,
		})
	}

	sortByScore(records)
	return records
}

// detectIQR flags locations outside the interquartile fences. Confidence is
// driven by the percentage deviation from the violated bound.
func (d *Detector) detectIQR(snap model.Snapshot, sensitivity Sensitivity) []Record {
	if len(snap.Pins) == 0 {
		return []Record{}
	}

	multiplier := iqrMultiplierLow
	switch sensitivity {
	case SensitivityMedium:
		multiplier = iqrMultiplierMedium
	case SensitivityHigh:
		multiplier = iqrMultiplierHigh
	}

	enrollments := make([]int, len(snap.Pins))
	for i, pin := range snap.Pins {
		enrollments[i] = pin.TotalEnrollment
	}
	sort.Ints(enrollments)

	q1 := float64(enrollments[int(math.Floor(float64(len(enrollments))*0.25))])
	q3 := float64(enrollments[int(math.Floor(float64(len(enrollments))*0.75))])
	iqr := q3 - q1
	lower := q1 - multiplier*iqr
	upper := q3 + multiplier*iqr

	proximity := policy.DaysToNearestDeadline(snap.Events, d.now())

	records := make([]Record, 0)
	for _, pin := range snap.Pins {
		enrollment := float64(pin.TotalEnrollment)
		if enrollment >= lower && enrollment <= upper {
			continue
		}
		var deviation float64
		if enrollment > upper {
			if upper != 0 {
				deviation = (enrollment - upper) / upper * 100
			}
		} else if lower != 0 {
			deviation = (lower - enrollment) / lower * 100
		}
		deviation = math.Round(deviation*10) / 10

		confidence := ConfidenceLow
		if deviation > iqrDeviationHigh {
			confidence = ConfidenceHigh
		} else if deviation > iqrDeviationMed {
			confidence = ConfidenceMedium
		}
		records = append(records, Record{
			Pincode:        pin.Pincode,
			District:       pin.District,
			Enrollment:     pin.TotalEnrollment,
			Score:          deviation,
			Confidence:     confidence,
			Reason:         fmt.Sprintf("%.1f%% deviation from IQR bounds (%.0f - %.0f)", deviation, lower, upper),
			DaysToDeadline: proximity,
		})
	}

	sortByScore(records)
	return records
}

// detectGrowth flags locations whose aggregation-time growth rate exceeds
// the sensitivity threshold.
func (d *Detector) detectGrowth(snap model.Snapshot, sensitivity Sensitivity) []Record {
	threshold := growthThresholdLow
	switch sensitivity {
	case SensitivityMedium:
		threshold = growthThresholdMedium
	case SensitivityHigh:
		threshold = growthThresholdHigh
	}

	proximity := policy.DaysToNearestDeadline(snap.Events, d.now())

	records := make([]Record, 0)
	for _, pin := range snap.Pins {
		if pin.GrowthRate <= threshold {
			continue
		}
		confidence := ConfidenceLow
		if pin.GrowthRate > growthConfidenceHigh {
			confidence = ConfidenceHigh
		} else if pin.GrowthRate > growthConfidenceMed {
			confidence = ConfidenceMedium
		}
		records = append(records, Record{
			Pincode:        pin.Pincode,
			District:       pin.District,
			Enrollment:     pin.TotalEnrollment,
			Score:          float64(pin.GrowthRate),
			Confidence:     confidence,
			Reason:         fmt.Sprintf("Growth rate of %d%% exceeds threshold of %d%%", pin.GrowthRate, threshold),
			DaysToDeadline: proximity,
		})
	}

	sortByScore(records)
	return records
}

func sortByScore(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})
}
