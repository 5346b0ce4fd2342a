// Package aggregate builds the per-location and per-date aggregates that
// every analysis engine consumes.
package aggregate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/pinsight/internal/domain/model"
)

// Aggregation thresholds. These are this component's own knobs; the anomaly
// and forecast engines keep separate cutoff tables on purpose.
const (
	growthWindow = 3 // entries per comparison window

	highGrowthPct   = 150
	mediumGrowthPct = 80
	highVolume      = 3000
	mediumVolume    = 1500

	pushbackBaseRate       = 0.02
	pushbackHighMultiplier = 1.5
	pushbackMedMultiplier  = 1.0
	pushbackLowMultiplier  = 0.5
)

// Stats reports the outcome of one aggregation pass.
type Stats struct {
	Accepted int
	Rejected int
}

// Option applies a configuration option to a Build call.
type Option func(*builder)

// WithEvents attaches the policy timeline to the built snapshot.
func WithEvents(events []model.PolicyEvent) Option {
	return func(b *builder) {
		b.events = events
	}
}

// WithNow fixes the snapshot build time, for deterministic tests.
func WithNow(now time.Time) Option {
	return func(b *builder) {
		b.now = now
	}
}

type builder struct {
	events []model.PolicyEvent
	now    time.Time
}

type pinAccumulator struct {
	pin     model.PinRecord
	byDate  map[time.Time]*model.MonthlyPoint
	ordered []time.Time
}

// Build groups validated records by pincode, derives growth rate, risk tier
// and the border-pushback estimate per location, and produces the global
// date series. Records missing a date or pincode are skipped and counted,
// never fatal to the batch.
func Build(records []model.RawRecord, opts ...Option) (model.Snapshot, Stats) {
	b := &builder{now: time.Now()}
	for _, opt := range opts {
		opt(b)
	}

	pins := make(map[string]*pinAccumulator)
	dateTotals := make(map[time.Time]int)
	var stats Stats

	for _, rec := range records {
		if rec.Pincode == "" || rec.Date.IsZero() {
			stats.Rejected++
			continue
		}
		stats.Accepted++

		acc, ok := pins[rec.Pincode]
		if !ok {
			acc = &pinAccumulator{
				pin: model.PinRecord{
					Pincode:  rec.Pincode,
					District: rec.District,
					State:    rec.State,
				},
				byDate: make(map[time.Time]*model.MonthlyPoint),
			}
			pins[rec.Pincode] = acc
		}

		total := rec.Total()
		acc.pin.TotalEnrollment += total

		point, ok := acc.byDate[rec.Date]
		if !ok {
			point = &model.MonthlyPoint{Date: rec.Date}
			acc.byDate[rec.Date] = point
			acc.ordered = append(acc.ordered, rec.Date)
		}
		point.Enrollment += total
		point.Age0to5 += rec.Age0to5
		point.Age5to17 += rec.Age5to17
		point.Age18Plus += rec.Age18Plus

		dateTotals[rec.Date] += total
	}

	snap := model.Snapshot{
		Records: records,
		Events:  b.events,
		BuiltAt: b.now,
	}

	snap.Pins = make([]model.PinRecord, 0, len(pins))
	for _, acc := range pins {
		sort.Slice(acc.ordered, func(i, j int) bool { return acc.ordered[i].Before(acc.ordered[j]) })

		series := make([]model.MonthlyPoint, 0, len(acc.ordered))
		for _, d := range acc.ordered {
			series = append(series, *acc.byDate[d])
		}
		acc.pin.MonthlySeries = series

		acc.pin.GrowthRate = growthRate(series)
		acc.pin.RiskTier = classify(acc.pin.GrowthRate, acc.pin.TotalEnrollment)
		acc.pin.BorderPushbackEstimate = pushbackEstimate(acc.pin.TotalEnrollment, acc.pin.RiskTier)
		acc.pin.Explanation = explain(acc.pin)

		snap.Pins = append(snap.Pins, acc.pin)
	}
	sort.Slice(snap.Pins, func(i, j int) bool { return snap.Pins[i].Pincode < snap.Pins[j].Pincode })

	snap.Dates = make(model.DateSeries, 0, len(dateTotals))
	for d, total := range dateTotals {
		snap.Dates = append(snap.Dates, model.DatePoint{Date: d, Total: total})
	}
	sort.Slice(snap.Dates, func(i, j int) bool { return snap.Dates[i].Date.Before(snap.Dates[j].Date) })

	return snap, stats
}

// growthRate compares the sum of the last growthWindow entries against the
// sum of up to growthWindow entries from the series prefix. A short series
// or a zero older-window sum yields zero, never a division error.
func growthRate(series []model.MonthlyPoint) int {
	if len(series) < 2 {
		return 0
	}

	recentStart := len(series) - growthWindow
	if recentStart < 0 {
		recentStart = 0
	}
	var recent int
	for _, p := range series[recentStart:] {
		recent += p.Enrollment
	}

	olderLen := growthWindow
	if len(series)-growthWindow < olderLen {
		olderLen = len(series) - growthWindow
	}
	if olderLen <= 0 {
		return 0
	}
	var older int
	for _, p := range series[:olderLen] {
		older += p.Enrollment
	}
	if older == 0 {
		return 0
	}

	return int(math.Round(float64(recent-older) / float64(older) * 100))
}

// classify is a pure function of growth rate and total enrollment; it is
// assigned once here and never overwritten downstream.
func classify(growth, total int) model.RiskTier {
	switch {
	case growth > highGrowthPct || total > highVolume:
		return model.RiskHigh
	case growth > mediumGrowthPct || total > mediumVolume:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// pushbackEstimate derives the synthetic border-pushback proxy. This is a
// documented placeholder policy, not a measurement.
func pushbackEstimate(total int, tier model.RiskTier) int {
	multiplier := pushbackLowMultiplier
	switch tier {
	case model.RiskHigh:
		multiplier = pushbackHighMultiplier
	case model.RiskMedium:
		multiplier = pushbackMedMultiplier
	}
	return int(math.Floor(float64(total) * pushbackBaseRate * multiplier))
}

// explain produces the analyst-facing summary attached to each location.
func explain(pin model.PinRecord) string {
	switch pin.RiskTier {
	case model.RiskHigh:
		return fmt.Sprintf("Elevated enrollment activity detected. Growth rate of %d%% exceeds threshold for high-risk classification. Total enrollments: %d.", pin.GrowthRate, pin.TotalEnrollment)
	case model.RiskMedium:
		return fmt.Sprintf("Moderate increase in enrollment observed. Growth rate of %d%% warrants continued monitoring. Total enrollments: %d.", pin.GrowthRate, pin.TotalEnrollment)
	default:
		return fmt.Sprintf("Normal enrollment patterns within historical baseline. Growth rate of %d%% consistent with demographic trends. Total enrollments: %d.", pin.GrowthRate, pin.TotalEnrollment)
	}
}
