package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/pinsight/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad_Defaults(t *testing.T) {
	Convey("Given no configuration sources", t, func() {
		Convey("When the config is loaded", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then defaults apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9090")
			})
		})
	})
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PINSIGHT_ADDR", ":8088")
	t.Setenv("PINSIGHT_LOG_LEVEL", "debug")

	Convey("Given environment overrides", t, func() {
		Convey("When the config is loaded", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then env wins over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":8088")
				So(cfg.LogLevel, ShouldEqual, "debug")
			})
		})
	})
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "addr: \":7070\"\nalerts:\n  growth_threshold: 120\n  enrollment_threshold: 2500\n  days_to_deadline: 45\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PINSIGHT_CONFIG", path)

	Convey("Given a YAML config file", t, func() {
		Convey("When the config is loaded", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then file values layer over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
				So(cfg.Alerts.GrowthThreshold, ShouldEqual, 120)
				So(cfg.Alerts.DaysToDeadline, ShouldEqual, 45)
			})
		})
	})
}

func TestLoad_InvalidThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "alerts:\n  growth_threshold: -10\n  enrollment_threshold: 2500\n  days_to_deadline: 45\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PINSIGHT_CONFIG", path)

	Convey("Given invalid alert thresholds in the file", t, func() {
		Convey("When the config is loaded", func() {
			_, err := config.Load(context.Background())

			Convey("Then loading fails validation", func() {
				So(err, ShouldWrap, config.ErrInvalidConfig)
			})
		})
	})
}

func TestLoadPolicyTimeline(t *testing.T) {
	ctx := context.Background()

	Convey("Given a well-formed timeline file", t, func() {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		content := "events:\n" +
			"  - date: \"2024-10-15\"\n" +
			"    title: Registry Draft Review Period\n" +
			"    description: Final review period\n" +
			"  - date: \"2024-12-31\"\n" +
			"    title: Citizenship Documentation Deadline\n"
		So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)

		Convey("When the timeline is loaded", func() {
			events, err := config.LoadPolicyTimeline(ctx, path)

			Convey("Then every event parses with its date", func() {
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 2)
				So(events[0].Title, ShouldEqual, "Registry Draft Review Period")
				So(events[0].Date.Year(), ShouldEqual, 2024)
				So(events[1].Description, ShouldBeEmpty)
			})
		})
	})

	Convey("Given an event with a bad date", t, func() {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		content := "events:\n  - date: \"soon\"\n    title: Deadline\n"
		So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)

		Convey("When the timeline is loaded", func() {
			_, err := config.LoadPolicyTimeline(ctx, path)

			Convey("Then the bad date is rejected", func() {
				So(err, ShouldWrap, config.ErrInvalidConfig)
			})
		})
	})

	Convey("Given a missing file", t, func() {
		Convey("When the timeline is loaded", func() {
			_, err := config.LoadPolicyTimeline(ctx, filepath.Join(t.TempDir(), "absent.yaml"))

			Convey("Then the load error is wrapped", func() {
				So(err, ShouldWrap, config.ErrLoadConfig)
			})
		})
	})
}
