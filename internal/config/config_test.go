package config_test

import (
	"testing"

	"github.com/okian/pinsight/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.MaxUploadBytes, convey.ShouldEqual, int64(32<<20))
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.Alerts.GrowthThreshold, convey.ShouldEqual, 150)
			convey.So(cfg.Alerts.EnrollmentThreshold, convey.ShouldEqual, 3000)
			convey.So(cfg.Alerts.DaysToDeadline, convey.ShouldEqual, 60)
		})
	})
}
