// Package policy provides the policy-event timeline and deadline proximity
// math shared by the analysis engines.
package policy

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/okian/pinsight/internal/domain/model"
)

// Correlation strength cutoffs on absolute before/after change percent.
const (
	strongChangePct   = 50.0
	moderateChangePct = 20.0

	// Observation windows around each policy date.
	windowBeforeDays = 60
	windowAfterDays  = 30
)

// Proximity is a day count to the nearest future policy deadline. Known is
// false when no future deadline exists.
type Proximity struct {
	Days  int
	Known bool
}

// MarshalJSON renders unknown proximity as "N/A" to match report output.
func (p Proximity) MarshalJSON() ([]byte, error) {
	if !p.Known {
		return json.Marshal("N/A")
	}
	return json.Marshal(p.Days)
}

// DaysToNearestDeadline returns the whole-day count from now to the closest
// strictly-future policy event date.
func DaysToNearestDeadline(events []model.PolicyEvent, now time.Time) Proximity {
	var nearest time.Time
	for _, e := range events {
		if !e.Date.After(now) {
			continue
		}
		if nearest.IsZero() || e.Date.Before(nearest) {
			nearest = e.Date
		}
	}
	if nearest.IsZero() {
		return Proximity{}
	}
	days := int(math.Floor(nearest.Sub(now).Hours() / 24))
	return Proximity{Days: days, Known: true}
}

// EventImpact summarizes enrollment activity around one policy event.
type EventImpact struct {
	Policy    string  `json:"policy"`
	Date      string  `json:"date"`
	AvgBefore int     `json:"avg_before"`
	AvgAfter  int     `json:"avg_after"`
	ChangePct float64 `json:"change_pct"`
	Strength  string  `json:"strength"`
}

// AnalyzeImpact compares average per-record enrollment in the 60 days
// before each policy date against the 30 days after. A zero before-average
// yields a zero change, never a division error.
func AnalyzeImpact(snap model.Snapshot) []EventImpact {
	impacts := make([]EventImpact, 0, len(snap.Events))

	for _, event := range snap.Events {
		var sumBefore, sumAfter, countBefore, countAfter int

		for _, rec := range snap.Records {
			daysDiff := rec.Date.Sub(event.Date).Hours() / 24
			switch {
			case daysDiff >= -windowBeforeDays && daysDiff < 0:
				sumBefore += rec.Total()
				countBefore++
			case daysDiff >= 0 && daysDiff <= windowAfterDays:
				sumAfter += rec.Total()
				countAfter++
			}
		}

		var avgBefore, avgAfter float64
		if countBefore > 0 {
			avgBefore = float64(sumBefore) / float64(countBefore)
		}
		if countAfter > 0 {
			avgAfter = float64(sumAfter) / float64(countAfter)
		}

		var change float64
		if avgBefore > 0 {
			change = (avgAfter - avgBefore) / avgBefore * 100
		}

		strength := "Weak"
		if math.Abs(change) > strongChangePct {
			strength = "Strong"
		} else if math.Abs(change) > moderateChangePct {
			strength = "Moderate"
		}

		impacts = append(impacts, EventImpact{
			Policy:    event.Title,
			Date:      event.Date.Format("2006-01-02"),
			AvgBefore: int(math.Round(avgBefore)),
			AvgAfter:  int(math.Round(avgAfter)),
			ChangePct: math.Round(change*10) / 10,
			Strength:  strength,
		})
	}

	return impacts
}

// DefaultTimeline returns the built-in policy reference timeline used when
// no timeline file is configured.
func DefaultTimeline() []model.PolicyEvent {
	return []model.PolicyEvent{
		{
			Date:        time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC),
			Title:       "Registry Draft Review Period",
			Description: "Final review period announced for registry draft submissions",
		},
		{
			Date:        time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			Title:       "Citizenship Documentation Deadline",
			Description: "Extended deadline for citizenship documentation submissions",
		},
		{
			Date:        time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
			Title:       "Border Verification Protocols",
			Description: "Implementation of enhanced border verification protocols",
		},
	}
}

// Sort orders events ascending by date, in place.
func Sort(events []model.PolicyEvent) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
}
