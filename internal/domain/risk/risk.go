// Package risk computes the weighted multi-factor composite risk score per
// location.
package risk

import (
	"math"
	"sort"
	"time"

	"github.com/okian/pinsight/internal/domain/model"
	"github.com/okian/pinsight/internal/domain/policy"
)

// Factor normalization denominators and the factor weights. The weights
// sum to exactly 1.0.
const (
	growthDenominator   = 300.0
	volumeDenominator   = 5000.0
	pushbackDenominator = 100.0

	weightGrowth   = 0.30
	weightVolume   = 0.25
	weightPushback = 0.20
	weightDeadline = 0.15
	weightAge      = 0.10

	maxFactorScore = 100.0

	// Deadline proximity scores by day bucket.
	deadlineScoreUnder30 = 100.0
	deadlineScoreUnder60 = 70.0
	deadlineScoreUnder90 = 40.0
	deadlineScoreFar     = 20.0

	// Adult-share suspicion scores by percentage bucket.
	adultShareExtreme = 80.0
	adultShareHigh    = 70.0
	adultShareRaised  = 60.0
	ageScoreExtreme   = 100.0
	ageScoreHigh      = 70.0
	ageScoreRaised    = 40.0
	ageScoreBaseline  = 20.0

	compositeHighCutoff   = 70.0
	compositeMediumCutoff = 40.0
)

// FactorScores holds the five normalized per-factor scores in [0,100].
type FactorScores struct {
	GrowthRate       float64 `json:"growth_rate"`
	EnrollmentVolume float64 `json:"enrollment_volume"`
	BorderPushback   float64 `json:"border_pushback"`
	PolicyDeadline   float64 `json:"policy_deadline"`
	AgeDistribution  float64 `json:"age_distribution"`
}

// MatrixEntry is one row of the risk matrix, recomputed per invocation.
type MatrixEntry struct {
	Pincode    string         `json:"pincode"`
	District   string         `json:"district"`
	Scores     FactorScores   `json:"scores"`
	TotalScore float64        `json:"total_score"`
	RiskTier   model.RiskTier `json:"risk_tier"`
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithNow fixes the reference time for deadline proximity, for
// deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// Scorer produces the weighted risk matrix for a snapshot.
type Scorer struct {
	now func() time.Time
}

// NewScorer creates a scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the composite per-location risk matrix, sorted descending
// by total score. The composite is independent of the aggregation-time
// risk tier and never overwrites it.
func (s *Scorer) Score(snap model.Snapshot) []MatrixEntry {
	proximity := policy.DaysToNearestDeadline(snap.Events, s.now())
	deadlineScore := scoreDeadline(proximity)

	matrix := make([]MatrixEntry, 0, len(snap.Pins))
	for _, pin := range snap.Pins {
		scores := FactorScores{
			GrowthRate:       capScore(float64(pin.GrowthRate) / growthDenominator * 100),
			EnrollmentVolume: capScore(float64(pin.TotalEnrollment) / volumeDenominator * 100),
			BorderPushback:   capScore(float64(pin.BorderPushbackEstimate) / pushbackDenominator * 100),
			PolicyDeadline:   deadlineScore,
			AgeDistribution:  scoreAgeDistribution(snap.Records, pin.Pincode),
		}

		total := scores.GrowthRate*weightGrowth +
			scores.EnrollmentVolume*weightVolume +
			scores.BorderPushback*weightPushback +
			scores.PolicyDeadline*weightDeadline +
			scores.AgeDistribution*weightAge

		tier := model.RiskLow
		if total > compositeHighCutoff {
			tier = model.RiskHigh
		} else if total > compositeMediumCutoff {
			tier = model.RiskMedium
		}

		matrix = append(matrix, MatrixEntry{
			Pincode:    pin.Pincode,
			District:   pin.District,
			Scores:     scores,
			TotalScore: math.Round(total*10) / 10,
			RiskTier:   tier,
		})
	}

	sort.SliceStable(matrix, func(i, j int) bool {
		return matrix[i].TotalScore > matrix[j].TotalScore
	})
	return matrix
}

func capScore(v float64) float64 {
	return math.Min(maxFactorScore, v)
}

// scoreDeadline maps days-to-deadline onto the proximity score buckets.
// No future deadline scores zero.
func scoreDeadline(p policy.Proximity) float64 {
	if !p.Known {
		return 0
	}
	switch {
	case p.Days < 30:
		return deadlineScoreUnder30
	case p.Days < 60:
		return deadlineScoreUnder60
	case p.Days < 90:
		return deadlineScoreUnder90
	default:
		return deadlineScoreFar
	}
}

// scoreAgeDistribution scores the adult share of a location's raw records.
// Locations with no raw records score zero.
func scoreAgeDistribution(records []model.RawRecord, pincode string) float64 {
	var adults, all int
	found := false
	for _, rec := range records {
		if rec.Pincode != pincode {
			continue
		}
		found = true
		adults += rec.Age18Plus
		all += rec.Total()
	}
	if !found {
		return 0
	}

	var adultPct float64
	if all > 0 {
		adultPct = float64(adults) / float64(all) * 100
	}

	switch {
	case adultPct > adultShareExtreme:
		return ageScoreExtreme
	case adultPct > adultShareHigh:
		return ageScoreHigh
	case adultPct > adultShareRaised:
		return ageScoreRaised
	default:
		return ageScoreBaseline
	}
}
