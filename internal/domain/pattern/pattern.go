// Package pattern buckets locations into growth/volume quadrants, finds
// co-moving locations by correlation, and splits activity by day of week.
package pattern

import (
	"math"
	"time"

	"github.com/okian/pinsight/internal/domain/model"
)

// Quadrant predicates and correlation cutoffs. The growth cutoffs here are
// this engine's own and intentionally not shared with other components.
const (
	highVolumeEnrollment = 3000
	highVolumeGrowthPct  = 150
	rapidGrowthPct       = 150
	stableEnrollment     = 2000
	stableGrowthCeiling  = 100

	correlationCutoff = 0.7

	// Weekend share above this is noteworthy (informational only).
	weekendSharePct = 20.0
)

// Member identifies a clustered location.
type Member struct {
	Pincode  string `json:"pincode"`
	District string `json:"district"`
}

// Clusters are the four disjoint growth/volume quadrants. Despite the
// informal "cluster" naming this is rule-based bucketing, not k-means;
// every location lands in exactly one bucket.
type Clusters struct {
	HighVolume  []Member `json:"high_volume"`
	RapidGrowth []Member `json:"rapid_growth"`
	Stable      []Member `json:"stable"`
	Emerging    []Member `json:"emerging"`
}

// CorrelatedPin is a partner location with its correlation coefficient.
type CorrelatedPin struct {
	Pincode     string  `json:"pincode"`
	District    string  `json:"district"`
	Correlation float64 `json:"correlation"`
}

// SpikePattern groups a primary location with the later-indexed locations
// whose monthly series correlate above the cutoff.
type SpikePattern struct {
	PrimaryPin      string          `json:"primary_pin"`
	PrimaryDistrict string          `json:"primary_district"`
	SimilarPins     []CorrelatedPin `json:"similar_pins"`
}

// DaySplit is one side of the weekday/weekend division.
type DaySplit struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// WeekdaySplit reports enrollment by day-of-week class. Noteworthy is an
// informational flag, never an alert.
type WeekdaySplit struct {
	Weekday    DaySplit `json:"weekday"`
	Weekend    DaySplit `json:"weekend"`
	Noteworthy bool     `json:"noteworthy"`
}

// Result bundles the three pattern analyses.
type Result struct {
	Clusters      Clusters       `json:"clusters"`
	SpikePatterns []SpikePattern `json:"spike_patterns"`
	WeekdaySplit  WeekdaySplit   `json:"weekday_split"`
}

// Engine runs pattern recognition over a snapshot.
type Engine struct{}

// NewEngine creates a pattern engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Recognize computes quadrant clusters, spike correlations and the weekday
// split for the snapshot.
func (e *Engine) Recognize(snap model.Snapshot) Result {
	return Result{
		Clusters:      e.cluster(snap),
		SpikePatterns: e.spikePatterns(snap),
		WeekdaySplit:  e.weekdaySplit(snap),
	}
}

// cluster assigns each location to exactly one quadrant by predicate order.
func (e *Engine) cluster(snap model.Snapshot) Clusters {
	c := Clusters{
		HighVolume:  []Member{},
		RapidGrowth: []Member{},
		Stable:      []Member{},
		Emerging:    []Member{},
	}
	for _, pin := range snap.Pins {
		m := Member{Pincode: pin.Pincode, District: pin.District}
		switch {
		case pin.TotalEnrollment > highVolumeEnrollment && pin.GrowthRate > highVolumeGrowthPct:
			c.HighVolume = append(c.HighVolume, m)
		case pin.GrowthRate > rapidGrowthPct:
			c.RapidGrowth = append(c.RapidGrowth, m)
		case pin.TotalEnrollment > stableEnrollment && pin.GrowthRate < stableGrowthCeiling:
			c.Stable = append(c.Stable, m)
		default:
			c.Emerging = append(c.Emerging, m)
		}
	}
	return c
}

// spikePatterns correlates every unordered pair of locations with
// equal-length monthly series, considering each pair once from the lower
// index to the higher.
func (e *Engine) spikePatterns(snap model.Snapshot) []SpikePattern {
	patterns := make([]SpikePattern, 0)

	for i := 0; i < len(snap.Pins); i++ {
		var similar []CorrelatedPin
		for j := i + 1; j < len(snap.Pins); j++ {
			coefficient := Correlation(
				enrollmentValues(snap.Pins[i].MonthlySeries),
				enrollmentValues(snap.Pins[j].MonthlySeries),
			)
			if coefficient > correlationCutoff {
				similar = append(similar, CorrelatedPin{
					Pincode:     snap.Pins[j].Pincode,
					District:    snap.Pins[j].District,
					Correlation: math.Round(coefficient*100) / 100,
				})
			}
		}
		if len(similar) > 0 {
			patterns = append(patterns, SpikePattern{
				PrimaryPin:      snap.Pins[i].Pincode,
				PrimaryDistrict: snap.Pins[i].District,
				SimilarPins:     similar,
			})
		}
	}

	return patterns
}

// weekdaySplit sums raw-record enrollment into weekday and weekend buckets.
func (e *Engine) weekdaySplit(snap model.Snapshot) WeekdaySplit {
	var weekday, weekend int
	for _, rec := range snap.Records {
		switch rec.Date.Weekday() {
		case time.Saturday, time.Sunday:
			weekend += rec.Total()
		default:
			weekday += rec.Total()
		}
	}

	total := weekday + weekend
	split := WeekdaySplit{
		Weekday: DaySplit{Count: weekday},
		Weekend: DaySplit{Count: weekend},
	}
	if total > 0 {
		split.Weekday.Percentage = math.Round(float64(weekday)/float64(total)*1000) / 10
		split.Weekend.Percentage = math.Round(float64(weekend)/float64(total)*1000) / 10
	}
	split.Noteworthy = split.Weekend.Percentage > weekendSharePct
	return split
}

// Correlation computes the Pearson correlation coefficient between two
// equal-length series. Unequal lengths, empty series or a zero denominator
// (constant series) yield 0, never an error.
func Correlation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(len(a))
	meanB /= float64(len(b))

	var numerator, sumA, sumB float64
	for i := range a {
		diffA := a[i] - meanA
		diffB := b[i] - meanB
		numerator += diffA * diffB
		sumA += diffA * diffA
		sumB += diffB * diffB
	}

	denominator := math.Sqrt(sumA * sumB)
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

func enrollmentValues(series []model.MonthlyPoint) []float64 {
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = float64(p.Enrollment)
	}
	return values
}
