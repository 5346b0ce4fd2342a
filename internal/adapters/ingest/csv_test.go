package ingest_test

import (
	"strings"
	"testing"
	"time"

	"github.com/okian/pinsight/internal/adapters/ingest"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseCSV(t *testing.T) {
	Convey("Given a well-formed export", t, func() {
		input := strings.Join([]string{
			"date,state,district,pincode,age05,age517,age18greater",
			"15-03-2024,Assam,Dhubri,783301,10,20,70",
			"16-03-2024,Assam,Dhubri,783302,5,15,80",
		}, "\n")

		Convey("When the stream is parsed", func() {
			records, report, err := ingest.ParseCSV(strings.NewReader(input))

			Convey("Then every row is accepted", func() {
				So(err, ShouldBeNil)
				So(report.Accepted, ShouldEqual, 2)
				So(report.Rejected, ShouldEqual, 0)
				So(records, ShouldHaveLength, 2)
			})

			Convey("Then dates parse as day-month-year", func() {
				So(records[0].Date, ShouldResemble, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
			})

			Convey("Then age counts land in their buckets", func() {
				So(records[0].Age0to5, ShouldEqual, 10)
				So(records[0].Age5to17, ShouldEqual, 20)
				So(records[0].Age18Plus, ShouldEqual, 70)
				So(records[0].Total(), ShouldEqual, 100)
			})
		})
	})

	Convey("Given messy headers and ISO dates", t, func() {
		input := strings.Join([]string{
			"Date, State ,District,Pin,Age 0-5,Age_5_17,age18plus",
			"2024-03-15,Assam,Dhubri,783301,1,2,3",
		}, "\n")

		Convey("When the stream is parsed", func() {
			records, report, err := ingest.ParseCSV(strings.NewReader(input))

			Convey("Then normalization and aliases resolve the columns", func() {
				So(err, ShouldBeNil)
				So(report.Accepted, ShouldEqual, 1)
				So(records[0].Pincode, ShouldEqual, "783301")
				So(records[0].Age0to5, ShouldEqual, 1)
				So(records[0].Age18Plus, ShouldEqual, 3)
			})
		})
	})

	Convey("Given rows with missing required fields", t, func() {
		input := strings.Join([]string{
			"date,state,district,pincode,age05,age517,age18greater",
			"15-03-2024,Assam,Dhubri,783301,1,2,3",
			"not-a-date,Assam,Dhubri,783302,1,2,3",
			"15-03-2024,Assam,Dhubri,,1,2,3",
		}, "\n")

		Convey("When the stream is parsed", func() {
			records, report, err := ingest.ParseCSV(strings.NewReader(input))

			Convey("Then bad rows are counted, never fatal", func() {
				So(err, ShouldBeNil)
				So(report.Accepted, ShouldEqual, 1)
				So(report.Rejected, ShouldEqual, 2)
				So(records, ShouldHaveLength, 1)
			})
		})
	})

	Convey("Given malformed count fields", t, func() {
		input := strings.Join([]string{
			"date,state,district,pincode,age05,age517,age18greater",
			"15-03-2024,Assam,Dhubri,783301,abc,-5,",
		}, "\n")

		Convey("When the stream is parsed", func() {
			records, _, err := ingest.ParseCSV(strings.NewReader(input))

			Convey("Then counts default to zero at the boundary", func() {
				So(err, ShouldBeNil)
				So(records[0].Age0to5, ShouldEqual, 0)
				So(records[0].Age5to17, ShouldEqual, 0)
				So(records[0].Age18Plus, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a header missing a required column", t, func() {
		input := "date,state,district\n15-03-2024,Assam,Dhubri\n"

		Convey("When the stream is parsed", func() {
			_, _, err := ingest.ParseCSV(strings.NewReader(input))

			Convey("Then the missing column is named", func() {
				So(err, ShouldWrap, ingest.ErrMissingColumn)
				So(err.Error(), ShouldContainSubstring, "pincode")
			})
		})
	})

	Convey("Given an empty stream", t, func() {
		Convey("When the stream is parsed", func() {
			_, _, err := ingest.ParseCSV(strings.NewReader(""))

			Convey("Then it is reported unreadable", func() {
				So(err, ShouldWrap, ingest.ErrUnreadableInput)
			})
		})
	})
}
