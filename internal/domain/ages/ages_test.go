package ages_test

import (
	"testing"
	"time"

	"github.com/okian/pinsight/internal/domain/ages"
	"github.com/okian/pinsight/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAnalyze_Distribution(t *testing.T) {
	Convey("Given records across all age buckets", t, func() {
		snap := model.Snapshot{Records: []model.RawRecord{
			{Date: day(1, 1), Pincode: "783301", Age0to5: 20, Age5to17: 30, Age18Plus: 50},
		}}

		Convey("When the distribution is computed", func() {
			result := ages.Analyze(snap)

			Convey("Then counts and shares line up", func() {
				So(result.Distribution.Age0to5.Count, ShouldEqual, 20)
				So(result.Distribution.Age0to5.Percentage, ShouldEqual, 20.0)
				So(result.Distribution.Age5to17.Percentage, ShouldEqual, 30.0)
				So(result.Distribution.Age18Plus.Percentage, ShouldEqual, 50.0)
			})
		})
	})

	Convey("Given no records", t, func() {
		result := ages.Analyze(model.Snapshot{})

		Convey("Then the distribution stays zero", func() {
			So(result.Distribution.Age18Plus.Percentage, ShouldEqual, 0.0)
		})
	})
}

func TestAnalyze_SuspiciousPatterns(t *testing.T) {
	Convey("Given locations with skewed age mixes", t, func() {
		snap := model.Snapshot{Records: []model.RawRecord{
			// 90% adults: severe adult skew.
			{Date: day(1, 1), Pincode: "783301", District: "Dhubri", Age0to5: 5, Age5to17: 5, Age18Plus: 90},
			// 75% adults: flagged but not severe.
			{Date: day(1, 1), Pincode: "783302", District: "Dhubri", Age0to5: 10, Age5to17: 15, Age18Plus: 75},
			// 45% young children: flagged child skew.
			{Date: day(1, 1), Pincode: "783303", District: "Dhubri", Age0to5: 45, Age5to17: 30, Age18Plus: 25},
			// Balanced mix: clean.
			{Date: day(1, 1), Pincode: "783304", District: "Dhubri", Age0to5: 20, Age5to17: 30, Age18Plus: 50},
		}}

		Convey("When suspicious patterns are computed", func() {
			result := ages.Analyze(snap)

			Convey("Then each skewed location is flagged with a matching severity", func() {
				So(result.Suspicious, ShouldHaveLength, 3)

				So(result.Suspicious[0].Pincode, ShouldEqual, "783301")
				So(result.Suspicious[0].Pattern, ShouldEqual, "High Adult Ratio")
				So(result.Suspicious[0].Severity, ShouldEqual, "High")

				So(result.Suspicious[1].Pincode, ShouldEqual, "783302")
				So(result.Suspicious[1].Severity, ShouldEqual, "Medium")

				So(result.Suspicious[2].Pincode, ShouldEqual, "783303")
				So(result.Suspicious[2].Pattern, ShouldEqual, "High Child Ratio")
				So(result.Suspicious[2].Severity, ShouldEqual, "Medium")
			})
		})
	})
}

func TestAnalyze_GrowthRates(t *testing.T) {
	Convey("Given records on two dates", t, func() {
		snap := model.Snapshot{Records: []model.RawRecord{
			{Date: day(1, 1), Pincode: "783301", Age0to5: 10, Age5to17: 10, Age18Plus: 10},
			{Date: day(6, 1), Pincode: "783301", Age0to5: 20, Age5to17: 30, Age18Plus: 5},
		}}

		Convey("When bucket growth is computed", func() {
			result := ages.Analyze(snap)

			Convey("Then each bucket compares first against last date", func() {
				So(result.GrowthRates.Age0to5, ShouldEqual, 100.0)
				So(result.GrowthRates.Age5to17, ShouldEqual, 200.0)
				So(result.GrowthRates.Age18Plus, ShouldEqual, -50.0)
			})
		})
	})

	Convey("Given a single observed date", t, func() {
		snap := model.Snapshot{Records: []model.RawRecord{
			{Date: day(1, 1), Pincode: "783301", Age18Plus: 100},
		}}

		Convey("When bucket growth is computed", func() {
			result := ages.Analyze(snap)

			Convey("Then growth stays zero", func() {
				So(result.GrowthRates.Age18Plus, ShouldEqual, 0.0)
			})
		})
	})
}
