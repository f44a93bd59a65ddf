package model_test

import (
	"testing"

	model "github.com/stretchops/insight/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParsePercent(t *testing.T) {
	Convey("Given percent strings from the backend", t, func() {
		Convey("When parsing a well-formed value", func() {
			So(model.ParsePercent("82.5%"), ShouldEqual, 82.5)
		})

		Convey("When parsing a value without a percent sign", func() {
			So(model.ParsePercent("91"), ShouldEqual, 91.0)
		})

		Convey("When parsing a padded value", func() {
			So(model.ParsePercent("  73.2 % "), ShouldEqual, 73.2)
		})

		Convey("When parsing an empty value", func() {
			So(model.ParsePercent(""), ShouldEqual, 0)
		})

		Convey("When parsing garbage", func() {
			So(model.ParsePercent("n/a"), ShouldEqual, 0)
		})
	})
}
