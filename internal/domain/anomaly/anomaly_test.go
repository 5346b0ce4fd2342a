package anomaly_test

import (
	"testing"
	"time"

	"github.com/okian/pinsight/internal/domain/anomaly"
	"github.com/okian/pinsight/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func pin(pincode string, enrollment, growth int) model.PinRecord {
	return model.PinRecord{
		Pincode:         pincode,
		District:        "Dhubri",
		TotalEnrollment: enrollment,
		GrowthRate:      growth,
	}
}

// snapshotWithOutlier has nine baseline locations and one extreme one,
// which sits exactly three population standard deviations from the mean.
func snapshotWithOutlier() model.Snapshot {
	pins := make([]model.PinRecord, 0, 10)
	for i := 0; i < 9; i++ {
		pins = append(pins, pin("78330"+string(rune('0'+i)), 100, 0))
	}
	pins = append(pins, pin("783399", 10000, 0))
	return model.Snapshot{Pins: pins}
}

func TestDetector_ZScore(t *testing.T) {
	Convey("Given a population with one extreme location", t, func() {
		detector := anomaly.NewDetector()
		snap := snapshotWithOutlier()

		Convey("When detecting at medium sensitivity", func() {
			records := detector.Detect(snap, anomaly.MethodZScore, anomaly.SensitivityMedium)

			Convey("Then only the extreme location is flagged", func() {
				So(records, ShouldHaveLength, 1)
				So(records[0].Pincode, ShouldEqual, "783399")
				So(records[0].Score, ShouldEqual, 3.0)
				So(records[0].Confidence, ShouldEqual, anomaly.ConfidenceMedium)
				So(records[0].Reason, ShouldContainSubstring, "Z-Score")
			})
		})

		Convey("When detecting at low sensitivity", func() {
			records := detector.Detect(snap, anomaly.MethodZScore, anomaly.SensitivityLow)

			Convey("Then a score of exactly 3.0 does not cross the strict threshold", func() {
				So(records, ShouldBeEmpty)
			})
		})

		Convey("When detecting at high sensitivity", func() {
			records := detector.Detect(snap, anomaly.MethodZScore, anomaly.SensitivityHigh)

			Convey("Then the extreme location is still flagged", func() {
				So(records, ShouldHaveLength, 1)
			})
		})
	})

	Convey("Given a population with zero variance", t, func() {
		detector := anomaly.NewDetector()
		snap := model.Snapshot{Pins: []model.PinRecord{
			pin("783301", 500, 0),
			pin("783302", 500, 0),
			pin("783303", 500, 0),
		}}

		Convey("When detecting at high sensitivity", func() {
			records := detector.Detect(snap, anomaly.MethodZScore, anomaly.SensitivityHigh)

			Convey("Then nothing is flagged", func() {
				So(records, ShouldBeEmpty)
			})
		})
	})

	Convey("Given an empty snapshot", t, func() {
		detector := anomaly.NewDetector()

		Convey("When detecting", func() {
			records := detector.Detect(model.Snapshot{}, anomaly.MethodZScore, anomaly.SensitivityMedium)

			Convey("Then the result is empty, not nil panic", func() {
				So(records, ShouldBeEmpty)
			})
		})
	})
}

func TestDetector_IQR(t *testing.T) {
	Convey("Given a population with one extreme location", t, func() {
		detector := anomaly.NewDetector()
		snap := snapshotWithOutlier()

		Convey("When detecting with the IQR method", func() {
			records := detector.Detect(snap, anomaly.MethodIQR, anomaly.SensitivityMedium)

			Convey("Then the extreme location is flagged with its bound deviation", func() {
				So(records, ShouldHaveLength, 1)
				So(records[0].Pincode, ShouldEqual, "783399")
				// Q1 and Q3 both sit at 100, so the deviation from the
				// upper fence is (10000-100)/100.
				So(records[0].Score, ShouldEqual, 9900.0)
				So(records[0].Confidence, ShouldEqual, anomaly.ConfidenceHigh)
			})
		})
	})
}

func TestDetector_Growth(t *testing.T) {
	Convey("Given locations with mixed growth rates", t, func() {
		detector := anomaly.NewDetector()
		snap := model.Snapshot{Pins: []model.PinRecord{
			pin("783301", 400, 260),
			pin("783302", 400, 120),
			pin("783303", 400, 50),
		}}

		Convey("When detecting at low sensitivity", func() {
			records := detector.Detect(snap, anomaly.MethodGrowth, anomaly.SensitivityLow)

			Convey("Then only growth above 200% is flagged, with high confidence above 250%", func() {
				So(records, ShouldHaveLength, 1)
				So(records[0].Pincode, ShouldEqual, "783301")
				So(records[0].Confidence, ShouldEqual, anomaly.ConfidenceHigh)
			})
		})

		Convey("When detecting at high sensitivity", func() {
			records := detector.Detect(snap, anomaly.MethodGrowth, anomaly.SensitivityHigh)

			Convey("Then everything above 100% is flagged, sorted by score", func() {
				So(records, ShouldHaveLength, 2)
				So(records[0].Pincode, ShouldEqual, "783301")
				So(records[1].Pincode, ShouldEqual, "783302")
				So(records[1].Confidence, ShouldEqual, anomaly.ConfidenceLow)
			})
		})

		Convey("When more sensitive settings are used", func() {
			low := detector.Detect(snap, anomaly.MethodGrowth, anomaly.SensitivityLow)
			medium := detector.Detect(snap, anomaly.MethodGrowth, anomaly.SensitivityMedium)
			high := detector.Detect(snap, anomaly.MethodGrowth, anomaly.SensitivityHigh)

			Convey("Then the flagged set only grows", func() {
				So(len(medium), ShouldBeGreaterThanOrEqualTo, len(low))
				So(len(high), ShouldBeGreaterThanOrEqualTo, len(medium))
			})
		})
	})
}

func TestDetector_DeadlineProximity(t *testing.T) {
	Convey("Given a snapshot with an upcoming policy deadline", t, func() {
		now := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
		detector := anomaly.NewDetector(anomaly.WithNow(func() time.Time { return now }))
		snap := snapshotWithOutlier()
		snap.Events = []model.PolicyEvent{
			{Date: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), Title: "Documentation Deadline"},
		}

		Convey("When detecting", func() {
			records := detector.Detect(snap, anomaly.MethodZScore, anomaly.SensitivityMedium)

			Convey("Then flagged locations carry the day count to the deadline", func() {
				So(records, ShouldHaveLength, 1)
				So(records[0].DaysToDeadline.Known, ShouldBeTrue)
				So(records[0].DaysToDeadline.Days, ShouldEqual, 30)
			})
		})
	})

	Convey("Given a snapshot with no future deadline", t, func() {
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		detector := anomaly.NewDetector(anomaly.WithNow(func() time.Time { return now }))
		snap := snapshotWithOutlier()

		Convey("When detecting", func() {
			records := detector.Detect(snap, anomaly.MethodZScore, anomaly.SensitivityMedium)

			Convey("Then proximity is reported unknown", func() {
				So(records, ShouldHaveLength, 1)
				So(records[0].DaysToDeadline.Known, ShouldBeFalse)
			})
		})
	})

	Convey("Given an unknown method name", t, func() {
		detector := anomaly.NewDetector()

		Convey("When detecting", func() {
			records := detector.Detect(snapshotWithOutlier(), anomaly.Method("bogus"), anomaly.SensitivityMedium)

			Convey("Then it falls back to z-score", func() {
				So(records, ShouldHaveLength, 1)
				So(records[0].Reason, ShouldContainSubstring, "Z-Score")
			})
		})
	})
}
