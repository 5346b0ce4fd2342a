// Package ages analyzes the age-bucket composition of enrollment activity.
package ages

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/pinsight/internal/domain/model"
)

// Suspicion cutoffs on per-location bucket shares.
const (
	adultShareCutoff = 70.0
	adultShareSevere = 85.0
	childShareCutoff = 40.0
	childShareSevere = 50.0
)

// BucketStat is the count and share of one age bucket.
type BucketStat struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Distribution is the global age-bucket breakdown.
type Distribution struct {
	Age0to5   BucketStat `json:"age_0_5"`
	Age5to17  BucketStat `json:"age_5_17"`
	Age18Plus BucketStat `json:"age_18_plus"`
}

// SuspiciousPattern flags a location whose bucket shares fall outside the
// expected demographic range.
type SuspiciousPattern struct {
	Pincode    string  `json:"pincode"`
	District   string  `json:"district"`
	Pattern    string  `json:"pattern"`
	Percentage float64 `json:"percentage"`
	Reason     string  `json:"reason"`
	Severity   string  `json:"severity"`
}

// GrowthRates compares the first and last observed dates per bucket.
type GrowthRates struct {
	Age0to5   float64 `json:"age_0_5"`
	Age5to17  float64 `json:"age_5_17"`
	Age18Plus float64 `json:"age_18_plus"`
}

// Result bundles the three age analyses.
type Result struct {
	Distribution Distribution        `json:"distribution"`
	Suspicious   []SuspiciousPattern `json:"suspicious"`
	GrowthRates  GrowthRates         `json:"growth_rates"`
}

// Analyze runs all three age analyses over the snapshot's raw records.
func Analyze(snap model.Snapshot) Result {
	return Result{
		Distribution: distribution(snap.Records),
		Suspicious:   suspiciousPatterns(snap.Records),
		GrowthRates:  growthRates(snap.Records),
	}
}

func distribution(records []model.RawRecord) Distribution {
	var d Distribution
	for _, rec := range records {
		d.Age0to5.Count += rec.Age0to5
		d.Age5to17.Count += rec.Age5to17
		d.Age18Plus.Count += rec.Age18Plus
	}
	total := d.Age0to5.Count + d.Age5to17.Count + d.Age18Plus.Count
	if total > 0 {
		d.Age0to5.Percentage = round1(float64(d.Age0to5.Count) / float64(total) * 100)
		d.Age5to17.Percentage = round1(float64(d.Age5to17.Count) / float64(total) * 100)
		d.Age18Plus.Percentage = round1(float64(d.Age18Plus.Count) / float64(total) * 100)
	}
	return d
}

type pinBuckets struct {
	district  string
	age0to5   int
	age5to17  int
	age18plus int
}

// suspiciousPatterns flags locations with an unusually adult-heavy or
// child-heavy mix. A location can carry both flags.
func suspiciousPatterns(records []model.RawRecord) []SuspiciousPattern {
	byPin := make(map[string]*pinBuckets)
	order := make([]string, 0)
	for _, rec := range records {
		b, ok := byPin[rec.Pincode]
		if !ok {
			b = &pinBuckets{district: rec.District}
			byPin[rec.Pincode] = b
			order = append(order, rec.Pincode)
		}
		b.age0to5 += rec.Age0to5
		b.age5to17 += rec.Age5to17
		b.age18plus += rec.Age18Plus
	}
	sort.Strings(order)

	suspicious := make([]SuspiciousPattern, 0)
	for _, pin := range order {
		b := byPin[pin]
		total := b.age0to5 + b.age5to17 + b.age18plus
		if total == 0 {
			continue
		}
		adultPct := float64(b.age18plus) / float64(total) * 100
		childPct := float64(b.age0to5) / float64(total) * 100

		if adultPct > adultShareCutoff {
			severity := "Medium"
			if adultPct > adultShareSevere {
				severity = "High"
			}
			suspicious = append(suspicious, SuspiciousPattern{
				Pincode:    pin,
				District:   b.district,
				Pattern:    "High Adult Ratio",
				Percentage: round1(adultPct),
				Reason:     fmt.Sprintf("%.1f%% adult enrollments (expected ~50-60%%)", adultPct),
				Severity:   severity,
			})
		}

		if childPct > childShareCutoff {
			severity := "Medium"
			if childPct > childShareSevere {
				severity = "High"
			}
			suspicious = append(suspicious, SuspiciousPattern{
				Pincode:    pin,
				District:   b.district,
				Pattern:    "High Child Ratio",
				Percentage: round1(childPct),
				Reason:     fmt.Sprintf("%.1f%% child (0-5) enrollments (expected ~15-25%%)", childPct),
				Severity:   severity,
			})
		}
	}

	return suspicious
}

// growthRates compares per-bucket sums on the earliest and latest observed
// dates. Fewer than two dates or a zero older value yields zero.
func growthRates(records []model.RawRecord) GrowthRates {
	byDate := make(map[time.Time]*pinBuckets)
	for _, rec := range records {
		b, ok := byDate[rec.Date]
		if !ok {
			b = &pinBuckets{}
			byDate[rec.Date] = b
		}
		b.age0to5 += rec.Age0to5
		b.age5to17 += rec.Age5to17
		b.age18plus += rec.Age18Plus
	}

	if len(byDate) < 2 {
		return GrowthRates{}
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	older := byDate[dates[0]]
	recent := byDate[dates[len(dates)-1]]

	return GrowthRates{
		Age0to5:   changePct(older.age0to5, recent.age0to5),
		Age5to17:  changePct(older.age5to17, recent.age5to17),
		Age18Plus: changePct(older.age18plus, recent.age18plus),
	}
}

func changePct(older, recent int) float64 {
	if older == 0 {
		return 0
	}
	return round1(float64(recent-older) / float64(older) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
