package transform_test

import (
	"testing"

	model "github.com/stretchops/insight/internal/domain/model"
	transform "github.com/stretchops/insight/internal/domain/transform"
	types "github.com/stretchops/insight/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func rows(percentages ...float64) []types.DrilldownRow {
	out := make([]types.DrilldownRow, len(percentages))
	for i, p := range percentages {
		out[i] = types.DrilldownRow{Name: string(rune('a' + i)), Percentage: p}
	}
	return out
}

func TestSortByPercentage(t *testing.T) {
	Convey("Given an unsorted breakdown", t, func() {
		in := rows(82.5, 91.0, 10.0, 91.0)

		Convey("When sorted by percentage", func() {
			out := transform.SortByPercentage(in)

			Convey("Then order is descending", func() {
				So(out[0].Percentage, ShouldEqual, 91.0)
				So(out[1].Percentage, ShouldEqual, 91.0)
				So(out[2].Percentage, ShouldEqual, 82.5)
				So(out[3].Percentage, ShouldEqual, 10.0)
			})

			Convey("Then ties keep input order", func() {
				So(out[0].Name, ShouldEqual, "b")
				So(out[1].Name, ShouldEqual, "d")
			})

			Convey("Then the input is untouched", func() {
				So(in[0].Percentage, ShouldEqual, 82.5)
			})

			Convey("Then sorting again is a no-op", func() {
				again := transform.SortByPercentage(out)
				So(again, ShouldResemble, out)
			})
		})
	})
}

func TestPaginate(t *testing.T) {
	Convey("Given a sorted list of 12 rows", t, func() {
		in := transform.SortByPercentage(rows(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12))

		Convey("When paginated with page size 5", func() {
			Convey("Then pages concatenated reproduce the sorted list", func() {
				var all []types.DrilldownRow
				for p := 0; p < transform.TotalPages(len(in), 5); p++ {
					page := transform.Paginate(in, p, 5)
					So(len(page), ShouldBeLessThanOrEqualTo, 5)
					all = append(all, page...)
				}
				So(all, ShouldResemble, in)
			})

			Convey("Then the last page holds the remainder", func() {
				So(len(transform.Paginate(in, 2, 5)), ShouldEqual, 2)
			})

			Convey("Then an out-of-range page clamps to the last page", func() {
				So(transform.Paginate(in, 99, 5), ShouldResemble, transform.Paginate(in, 2, 5))
			})

			Convey("Then a negative page clamps to page 0", func() {
				So(transform.Paginate(in, -3, 5), ShouldResemble, transform.Paginate(in, 0, 5))
			})
		})

		Convey("When the list is empty", func() {
			So(transform.Paginate(nil, 0, 5), ShouldBeEmpty)
			So(transform.TotalPages(0, 5), ShouldEqual, 1)
		})
	})
}

func TestSeriesMapping(t *testing.T) {
	Convey("Given an audit summary", t, func() {
		a := model.AuditSummary{
			Opportunities: []model.OpportunityStat{
				{Opportunity: "No next visit booked", Percentage: 40.0},
				{Opportunity: "Missed stretch goal", Percentage: 55.5},
			},
		}

		Convey("When mapped to an opportunity series", func() {
			s := transform.ToOpportunitySeries(a)

			Convey("Then bars are descending by value", func() {
				So(s[0].Name, ShouldEqual, "Missed stretch goal")
				So(s[0].Value, ShouldEqual, 55.5)
				So(s[1].Name, ShouldEqual, "No next visit booked")
			})
		})
	})

	Convey("Given a ranking payload", t, func() {
		r := model.Ranking{Data: []model.RankEntry{
			{Name: "Studio A", Count: 12},
			{Name: "Studio B", Count: 30},
		}}

		Convey("When mapped to a ranking series", func() {
			s := transform.ToRankingSeries(r)
			So(s[0].Name, ShouldEqual, "Studio B")
			So(s[1].Name, ShouldEqual, "Studio A")
		})
	})
}

func TestDrilldownShaping(t *testing.T) {
	Convey("Given summary-level stats", t, func() {
		stats := []model.DimensionStat{
			{Name: "north", Percentage: 82.5},
			{Name: "south", Percentage: 91.0},
		}

		Convey("When shaped and sorted", func() {
			out := transform.SortByPercentage(transform.FromSummary(stats))

			Convey("Then south leads with a formatted display value", func() {
				So(out[0].Name, ShouldEqual, "south")
				So(out[0].Display, ShouldEqual, "91.0%")
				So(out[0].HasCounts, ShouldBeFalse)
				So(out[1].Name, ShouldEqual, "north")
				So(out[1].Display, ShouldEqual, "82.5%")
			})
		})
	})

	Convey("Given detail-level stats", t, func() {
		stats := []model.DetailStat{
			{Name: "Jordan", Percentage: 66.7, ParticularCount: 2, TotalCount: 3},
		}

		Convey("When shaped", func() {
			out := transform.FromDetails(stats)

			Convey("Then counts ride along", func() {
				So(out[0].HasCounts, ShouldBeTrue)
				So(out[0].ParticularCount, ShouldEqual, 2)
				So(out[0].TotalCount, ShouldEqual, 3)
				So(out[0].Display, ShouldEqual, "66.7%")
			})
		})
	})
}

func TestPager(t *testing.T) {
	Convey("Given a pager over 12 rows", t, func() {
		p := transform.NewPager(5)
		p.SetTotal(12)

		Convey("Then it starts at page 0 of 3", func() {
			So(p.Page(), ShouldEqual, 0)
			So(p.TotalPages(), ShouldEqual, 3)
		})

		Convey("When stepping forward past the end", func() {
			p.Next()
			p.Next()
			p.Next()
			p.Next()

			Convey("Then it stops on the last page", func() {
				So(p.Page(), ShouldEqual, 2)
			})
		})

		Convey("When stepping back past the start", func() {
			p.Prev()
			So(p.Page(), ShouldEqual, 0)
		})

		Convey("When the list shrinks under the current page", func() {
			p.Next()
			p.Next()
			p.SetTotal(4)

			Convey("Then the page clamps into range", func() {
				So(p.Page(), ShouldEqual, 0)
				So(p.TotalPages(), ShouldEqual, 1)
			})
		})

		Convey("When the drill context changes", func() {
			p.Next()
			p.Reset()
			So(p.Page(), ShouldEqual, 0)
		})
	})
}
