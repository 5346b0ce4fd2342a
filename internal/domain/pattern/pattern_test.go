package pattern_test

import (
	"testing"
	"time"

	"github.com/okian/pinsight/internal/domain/model"
	"github.com/okian/pinsight/internal/domain/pattern"
	. "github.com/smartystreets/goconvey/convey"
)

func series(values ...int) []model.MonthlyPoint {
	points := make([]model.MonthlyPoint, len(values))
	for i, v := range values {
		points[i] = model.MonthlyPoint{
			Date:       time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC),
			Enrollment: v,
		}
	}
	return points
}

func TestCorrelation(t *testing.T) {
	Convey("Given two series", t, func() {
		Convey("When they move identically", func() {
			So(pattern.Correlation([]float64{10, 20, 30}, []float64{20, 40, 60}), ShouldEqual, 1.0)
		})

		Convey("When they move inversely", func() {
			So(pattern.Correlation([]float64{10, 20, 30}, []float64{30, 20, 10}), ShouldEqual, -1.0)
		})

		Convey("When one is constant", func() {
			So(pattern.Correlation([]float64{10, 20, 30}, []float64{5, 5, 5}), ShouldEqual, 0.0)
		})

		Convey("When lengths differ", func() {
			So(pattern.Correlation([]float64{10, 20}, []float64{10, 20, 30}), ShouldEqual, 0.0)
		})

		Convey("When both are empty", func() {
			So(pattern.Correlation(nil, nil), ShouldEqual, 0.0)
		})
	})
}

func TestEngine_Clusters(t *testing.T) {
	Convey("Given locations across every quadrant", t, func() {
		engine := pattern.NewEngine()
		snap := model.Snapshot{Pins: []model.PinRecord{
			{Pincode: "783301", District: "Dhubri", TotalEnrollment: 4000, GrowthRate: 200},
			{Pincode: "783302", District: "Dhubri", TotalEnrollment: 500, GrowthRate: 200},
			{Pincode: "783303", District: "Dhubri", TotalEnrollment: 2500, GrowthRate: 50},
			{Pincode: "783304", District: "Dhubri", TotalEnrollment: 100, GrowthRate: 10},
		}}

		Convey("When clusters are computed", func() {
			result := engine.Recognize(snap)

			Convey("Then each location lands in exactly one bucket by predicate order", func() {
				So(result.Clusters.HighVolume, ShouldHaveLength, 1)
				So(result.Clusters.HighVolume[0].Pincode, ShouldEqual, "783301")
				So(result.Clusters.RapidGrowth, ShouldHaveLength, 1)
				So(result.Clusters.RapidGrowth[0].Pincode, ShouldEqual, "783302")
				So(result.Clusters.Stable, ShouldHaveLength, 1)
				So(result.Clusters.Stable[0].Pincode, ShouldEqual, "783303")
				So(result.Clusters.Emerging, ShouldHaveLength, 1)
				So(result.Clusters.Emerging[0].Pincode, ShouldEqual, "783304")
			})
		})
	})
}

func TestEngine_SpikePatterns(t *testing.T) {
	Convey("Given two co-moving locations and one flat one", t, func() {
		engine := pattern.NewEngine()
		snap := model.Snapshot{Pins: []model.PinRecord{
			{Pincode: "783301", District: "Dhubri", MonthlySeries: series(10, 20, 30)},
			{Pincode: "783302", District: "Dhubri", MonthlySeries: series(20, 40, 60)},
			{Pincode: "783303", District: "Dhubri", MonthlySeries: series(5, 5, 5)},
		}}

		Convey("When spike patterns are computed", func() {
			result := engine.Recognize(snap)

			Convey("Then each pair is considered once, lower index first", func() {
				So(result.SpikePatterns, ShouldHaveLength, 1)
				p := result.SpikePatterns[0]
				So(p.PrimaryPin, ShouldEqual, "783301")
				So(p.SimilarPins, ShouldHaveLength, 1)
				So(p.SimilarPins[0].Pincode, ShouldEqual, "783302")
				So(p.SimilarPins[0].Correlation, ShouldEqual, 1.0)
			})
		})
	})
}

func TestEngine_WeekdaySplit(t *testing.T) {
	Convey("Given weekend-heavy enrollment activity", t, func() {
		engine := pattern.NewEngine()
		saturday := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
		monday := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
		snap := model.Snapshot{Records: []model.RawRecord{
			{Date: saturday, Pincode: "783301", Age18Plus: 30},
			{Date: monday, Pincode: "783301", Age18Plus: 70},
		}}

		Convey("When the split is computed", func() {
			result := engine.Recognize(snap)

			Convey("Then weekend share above 20% is noteworthy", func() {
				So(result.WeekdaySplit.Weekend.Count, ShouldEqual, 30)
				So(result.WeekdaySplit.Weekday.Count, ShouldEqual, 70)
				So(result.WeekdaySplit.Weekend.Percentage, ShouldEqual, 30.0)
				So(result.WeekdaySplit.Weekday.Percentage, ShouldEqual, 70.0)
				So(result.WeekdaySplit.Noteworthy, ShouldBeTrue)
			})
		})
	})

	Convey("Given no records", t, func() {
		engine := pattern.NewEngine()

		Convey("When the split is computed", func() {
			result := engine.Recognize(model.Snapshot{})

			Convey("Then percentages stay zero and nothing is noteworthy", func() {
				So(result.WeekdaySplit.Weekend.Percentage, ShouldEqual, 0.0)
				So(result.WeekdaySplit.Noteworthy, ShouldBeFalse)
			})
		})
	})
}
