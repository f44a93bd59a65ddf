package filters_test

import (
	"errors"
	"testing"
	"time"

	filters "github.com/stretchops/insight/internal/domain/filters"
	. "github.com/smartystreets/goconvey/convey"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func strptr(s string) *string { return &s }

func TestStateTransitions(t *testing.T) {
	Convey("Given the default filter state", t, func() {
		s := filters.NewState()

		Convey("Then it starts unfiltered with a 30-day window", func() {
			So(s.FilterBy, ShouldEqual, filters.ByLocation)
			So(s.Duration, ShouldEqual, filters.DurationLast30Days)
			So(s.Location, ShouldEqual, filters.All)
			So(s.Flexologist, ShouldEqual, filters.All)
			So(s.Dataset, ShouldEqual, "")
			So(s.SelectedOpportunity, ShouldBeNil)
		})

		Convey("When an opportunity and a location are drilled into", func() {
			s, err := s.SelectOpportunity(strptr("Missed stretch goal"))
			So(err, ShouldBeNil)
			s, err = s.SelectLocation(strptr("Studio A"))
			So(err, ShouldBeNil)

			Convey("And the duration changes", func() {
				next, err := s.SetDuration(filters.DurationLast7Days)
				So(err, ShouldBeNil)

				Convey("Then both drill selections are cleared", func() {
					So(next.SelectedOpportunity, ShouldBeNil)
					So(next.SelectedLocation, ShouldBeNil)
				})
			})

			Convey("And the breakdown dimension changes", func() {
				next, err := s.SetFilterBy(filters.ByFlexologist)
				So(err, ShouldBeNil)
				So(next.SelectedOpportunity, ShouldBeNil)
				So(next.SelectedLocation, ShouldBeNil)
			})

			Convey("And the location filter changes", func() {
				next, err := s.SetLocation("Studio B")
				So(err, ShouldBeNil)
				So(next.SelectedOpportunity, ShouldBeNil)
				So(next.SelectedLocation, ShouldBeNil)
			})

			Convey("And the flexologist filter changes", func() {
				next, err := s.SetFlexologist("Jordan")
				So(err, ShouldBeNil)
				So(next.SelectedOpportunity, ShouldBeNil)
				So(next.SelectedLocation, ShouldBeNil)
			})

			Convey("And the dataset changes", func() {
				next, err := s.SetDataset("visit_quality")
				So(err, ShouldBeNil)

				Convey("Then drill context survives", func() {
					So(next.SelectedOpportunity, ShouldNotBeNil)
					So(*next.SelectedOpportunity, ShouldEqual, "Missed stretch goal")
				})
			})

			Convey("And a different opportunity is selected", func() {
				next, err := s.SelectOpportunity(strptr("No next visit booked"))
				So(err, ShouldBeNil)

				Convey("Then the stale location drill is cleared", func() {
					So(*next.SelectedOpportunity, ShouldEqual, "No next visit booked")
					So(next.SelectedLocation, ShouldBeNil)
				})
			})
		})

		Convey("When a custom range is set", func() {
			next, err := s.SetCustomRange(day("2024-02-01"), day("2024-02-10"))
			So(err, ShouldBeNil)

			Convey("Then duration flips to custom with the range attached", func() {
				So(next.Duration, ShouldEqual, filters.DurationCustom)
				So(next.CustomRange, ShouldNotBeNil)
				So(next.HasCompleteRange(), ShouldBeTrue)
			})

			Convey("And switching back to a fixed window drops the range", func() {
				back, err := next.SetDuration(filters.DurationLast90Days)
				So(err, ShouldBeNil)
				So(back.CustomRange, ShouldBeNil)
			})
		})

		Convey("When the custom range ends before it starts", func() {
			next, err := s.SetCustomRange(day("2024-02-10"), day("2024-02-01"))

			Convey("Then the intent is rejected and the state unchanged", func() {
				So(errors.Is(err, filters.ErrInvalidRange), ShouldBeTrue)
				So(next.Duration, ShouldEqual, filters.DurationLast30Days)
				So(next.CustomRange, ShouldBeNil)
			})
		})

		Convey("When an unknown duration token is applied", func() {
			_, err := s.SetDuration("fortnight")
			So(errors.Is(err, filters.ErrInvalidDuration), ShouldBeTrue)
		})

		Convey("When an unknown dimension is applied", func() {
			_, err := s.SetFilterBy(filters.Dimension("region"))
			So(errors.Is(err, filters.ErrInvalidDimension), ShouldBeTrue)
		})

		Convey("When duration switches to custom without a range", func() {
			next, err := s.SetDuration(filters.DurationCustom)
			So(err, ShouldBeNil)
			So(next.HasCompleteRange(), ShouldBeFalse)
		})

		Convey("When the opportunity selection is cleared with nil", func() {
			withSel, _ := s.SelectOpportunity(strptr("Overtime not logged"))
			cleared, err := withSel.SelectOpportunity(nil)
			So(err, ShouldBeNil)
			So(cleared.SelectedOpportunity, ShouldBeNil)
		})

		Convey("When narrowing is checked", func() {
			So(s.Narrowed(), ShouldBeFalse)
			narrowed, _ := s.SetLocation("Studio A")
			So(narrowed.Narrowed(), ShouldBeTrue)
		})
	})
}
