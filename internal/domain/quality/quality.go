// Package quality assesses completeness, outliers and consistency of an
// ingested dataset.
package quality

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/pinsight/internal/domain/dedupe"
	"github.com/okian/pinsight/internal/domain/model"
)

// Outlier and consistency cutoffs.
const (
	outlierZScore       = 3.0
	outlierSevereZScore = 4.0
	maxExpectedSpanDays = 365
)

// Completeness reports field presence across the dataset.
type Completeness struct {
	Score           float64           `json:"score"`
	TotalRecords    int               `json:"total_records"`
	CompleteRecords int               `json:"complete_records"`
	MissingFields   int               `json:"missing_fields"`
	PerLocation     []LocationQuality `json:"per_location"`
}

// LocationQuality is the completeness breakdown for one location.
type LocationQuality struct {
	Pincode  string  `json:"pincode"`
	Score    float64 `json:"score"`
	Complete int     `json:"complete"`
	Total    int     `json:"total"`
}

// Outlier flags a location metric far from the population mean.
type Outlier struct {
	Pincode   string `json:"pincode"`
	District  string `json:"district"`
	Type      string `json:"type"`
	Value     string `json:"value"`
	Expected  string `json:"expected"`
	Deviation string `json:"deviation"`
	Severity  string `json:"severity"`
}

// Issue is a consistency finding.
type Issue struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// Result bundles the three quality assessments.
type Result struct {
	Completeness Completeness `json:"completeness"`
	Outliers     []Outlier    `json:"outliers"`
	Consistency  []Issue      `json:"consistency"`
}

// Assess runs all quality checks over the snapshot. The tracker is reset
// and reused for duplicate detection.
func Assess(snap model.Snapshot, tracker dedupe.Tracker) Result {
	return Result{
		Completeness: completeness(snap.Records),
		Outliers:     outliers(snap.Pins),
		Consistency:  consistency(snap, tracker),
	}
}

func completeness(records []model.RawRecord) Completeness {
	c := Completeness{TotalRecords: len(records)}

	perPin := make(map[string]*LocationQuality)
	order := make([]string, 0)

	for _, rec := range records {
		complete := !rec.Date.IsZero() && rec.State != "" && rec.District != "" && rec.Pincode != ""
		if complete {
			c.CompleteRecords++
		} else {
			c.MissingFields++
		}

		lq, ok := perPin[rec.Pincode]
		if !ok {
			lq = &LocationQuality{Pincode: rec.Pincode}
			perPin[rec.Pincode] = lq
			order = append(order, rec.Pincode)
		}
		lq.Total++
		if complete {
			lq.Complete++
		}
	}

	if c.TotalRecords > 0 {
		c.Score = round1(float64(c.CompleteRecords) / float64(c.TotalRecords) * 100)
	}

	sort.Strings(order)
	c.PerLocation = make([]LocationQuality, 0, len(order))
	for _, pin := range order {
		lq := perPin[pin]
		lq.Score = round1(float64(lq.Complete) / float64(lq.Total) * 100)
		c.PerLocation = append(c.PerLocation, *lq)
	}

	return c
}

// outliers flags per-location enrollment and growth values more than three
// population standard deviations from the mean. Zero variance flags
// nothing.
func outliers(pins []model.PinRecord) []Outlier {
	found := make([]Outlier, 0)

	enrollment := make([]float64, len(pins))
	growth := make([]float64, len(pins))
	for i, pin := range pins {
		enrollment[i] = float64(pin.TotalEnrollment)
		growth[i] = float64(pin.GrowthRate)
	}

	mean, stdDev := meanStdDev(enrollment)
	if stdDev > 0 {
		for _, pin := range pins {
			z := math.Abs(float64(pin.TotalEnrollment)-mean) / stdDev
			if z > outlierZScore {
				found = append(found, Outlier{
					Pincode:   pin.Pincode,
					District:  pin.District,
					Type:      "Enrollment",
					Value:     fmt.Sprintf("%d", pin.TotalEnrollment),
					Expected:  fmt.Sprintf("%.0f", mean),
					Deviation: fmt.Sprintf("%.2f std dev", z),
					Severity:  outlierSeverity(z),
				})
			}
		}
	}

	growthMean, growthStdDev := meanStdDev(growth)
	if growthStdDev > 0 {
		for _, pin := range pins {
			z := math.Abs(float64(pin.GrowthRate)-growthMean) / growthStdDev
			if z > outlierZScore {
				found = append(found, Outlier{
					Pincode:   pin.Pincode,
					District:  pin.District,
					Type:      "Growth Rate",
					Value:     fmt.Sprintf("%d%%", pin.GrowthRate),
					Expected:  fmt.Sprintf("%.1f%%", growthMean),
					Deviation: fmt.Sprintf("%.2f std dev", z),
					Severity:  outlierSeverity(z),
				})
			}
		}
	}

	return found
}

func outlierSeverity(z float64) string {
	if z > outlierSevereZScore {
		return "High"
	}
	return "Medium"
}

// consistency checks for duplicate date+location records and an unusually
// wide date span.
func consistency(snap model.Snapshot, tracker dedupe.Tracker) []Issue {
	issues := make([]Issue, 0)

	tracker.Reset()
	for _, rec := range snap.Records {
		if tracker.SeenAndRecord(dedupe.Key(rec.Date, rec.Pincode)) {
			issues = append(issues, Issue{
				Type:        "Duplicate",
				Description: fmt.Sprintf("Duplicate record found for PIN %s on %s", rec.Pincode, rec.Date.Format("2006-01-02")),
				Severity:    "Low",
			})
		}
	}

	if len(snap.Dates) > 1 {
		span := snap.Dates[len(snap.Dates)-1].Date.Sub(snap.Dates[0].Date).Hours() / 24
		if span > maxExpectedSpanDays {
			issues = append(issues, Issue{
				Type:        "Date Range",
				Description: fmt.Sprintf("Data spans %d days - verify if this is expected", int(span)),
				Severity:    "Low",
			})
		}
	}

	return issues
}

func meanStdDev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sqSum float64
	for _, v := range values {
		diff := v - mean
		sqSum += diff * diff
	}
	return mean, math.Sqrt(sqSum / float64(len(values)))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
