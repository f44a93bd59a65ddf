package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	config "github.com/stretchops/insight/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given no environment overrides", t, func() {
		os.Unsetenv("INSIGHT_CONFIG")
		os.Unsetenv("INSIGHT_ADDR")
		os.Unsetenv("INSIGHT_FETCH_QUEUE_SIZE")

		Convey("When loading", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then defaults apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9080")
				So(cfg.DrilldownPageSize, ShouldEqual, 5)
				So(cfg.FetchWorkerCount, ShouldEqual, 4)
			})
		})
	})

	Convey("Given env overrides", t, func() {
		os.Setenv("INSIGHT_ADDR", ":7070")
		os.Setenv("INSIGHT_FETCH_QUEUE_SIZE", "64")
		defer os.Unsetenv("INSIGHT_ADDR")
		defer os.Unsetenv("INSIGHT_FETCH_QUEUE_SIZE")

		cfg, err := config.Load(context.Background())
		So(err, ShouldBeNil)
		So(cfg.Addr, ShouldEqual, ":7070")
		So(cfg.FetchQueueSize, ShouldEqual, 64)
	})

	Convey("Given a YAML config file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "insight.yaml")
		body := "backend_base_url: https://api.example.test\nlog_level: debug\nstage_freshness_seconds:\n  audit_details: 60\n"
		So(os.WriteFile(path, []byte(body), 0o600), ShouldBeNil)
		os.Setenv("INSIGHT_CONFIG", path)
		defer os.Unsetenv("INSIGHT_CONFIG")

		cfg, err := config.Load(context.Background())
		So(err, ShouldBeNil)
		So(cfg.BackendBaseURL, ShouldEqual, "https://api.example.test")
		So(cfg.LogLevel, ShouldEqual, "debug")
		So(cfg.StageFreshnessSeconds["audit_details"], ShouldEqual, 60)
	})

	Convey("Given an invalid page size override", t, func() {
		os.Setenv("INSIGHT_DRILLDOWN_PAGE_SIZE", "0")
		defer os.Unsetenv("INSIGHT_DRILLDOWN_PAGE_SIZE")

		_, err := config.Load(context.Background())
		So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
	})
}
