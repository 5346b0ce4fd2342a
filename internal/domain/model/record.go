// Package model contains domain models passed between layers.
package model

import "time"

// RiskTier is the coarse risk classification assigned at aggregation time.
type RiskTier string

// Risk tiers, ordered from least to most concerning.
const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// RawRecord is a single validated enrollment record as delivered by the
// ingestion layer. Count fields default to zero when absent at the source.
// Immutable once parsed.
type RawRecord struct {
	Date      time.Time `json:"date"`
	State     string    `json:"state"`
	District  string    `json:"district"`
	Pincode   string    `json:"pincode"`
	Age0to5   int       `json:"age_0_5"`
	Age5to17  int       `json:"age_5_17"`
	Age18Plus int       `json:"age_18_plus"`
}

// Total returns the summed enrollment across the three age buckets.
func (r RawRecord) Total() int {
	return r.Age0to5 + r.Age5to17 + r.Age18Plus
}

// MonthlyPoint is one dated entry in a location's enrollment series.
type MonthlyPoint struct {
	Date       time.Time `json:"date"`
	Enrollment int       `json:"enrollment"`
	Age0to5    int       `json:"age_0_5"`
	Age5to17   int       `json:"age_5_17"`
	Age18Plus  int       `json:"age_18_plus"`
}

// PinRecord aggregates all records for one location (pincode).
//
// GrowthRate and RiskTier are derived once during aggregation and never
// mutated downstream. BorderPushbackEstimate is a synthetic proxy derived
// from enrollment volume and risk tier in the absence of real pushback
// data; it must not be treated as a measurement.
type PinRecord struct {
	Pincode                string         `json:"pincode"`
	District               string         `json:"district"`
	State                  string         `json:"state"`
	TotalEnrollment        int            `json:"total_enrollment"`
	MonthlySeries          []MonthlyPoint `json:"monthly_series"`
	GrowthRate             int            `json:"growth_rate"`
	RiskTier               RiskTier       `json:"risk_tier"`
	BorderPushbackEstimate int            `json:"border_pushback_estimate"`
	Explanation            string         `json:"explanation"`
}

// DatePoint is the enrollment total across all locations for one date.
type DatePoint struct {
	Date  time.Time `json:"date"`
	Total int       `json:"total"`
}

// DateSeries is the global per-date series, ordered ascending by date.
type DateSeries []DatePoint

// PolicyEvent is a dated external deadline used for proximity scoring and
// before/after correlation. Static reference data, read-only.
type PolicyEvent struct {
	Date        time.Time `json:"date"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}
