package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/stretchops/insight/internal/adapters/http/api"
	service "github.com/stretchops/insight/internal/app"
	"github.com/stretchops/insight/internal/domain/filters"
	"github.com/stretchops/insight/internal/domain/stage"
	"github.com/stretchops/insight/internal/domain/types"
	"github.com/stretchops/insight/pkg/logger"
)

func init() {
	logger.Init()
}

// mockPipeline records intents and serves canned views.
type mockPipeline struct {
	intents  []string
	retried  []stage.Stage
	paged    []string
	applyErr error

	filtersView   service.FiltersView
	seriesView    service.SeriesView
	drilldownView service.DrilldownView
	breakdownView service.BreakdownView
}

func (m *mockPipeline) Filters(ctx context.Context) service.FiltersView { return m.filtersView }
func (m *mockPipeline) OpportunitySeries(ctx context.Context) service.SeriesView {
	return m.seriesView
}
func (m *mockPipeline) Drilldown(ctx context.Context) service.DrilldownView {
	return m.drilldownView
}
func (m *mockPipeline) RankingSeries(ctx context.Context) service.SeriesView { return m.seriesView }
func (m *mockPipeline) LocationBreakdownView(ctx context.Context) service.BreakdownView {
	return m.breakdownView
}

func (m *mockPipeline) record(intent string) error {
	if m.applyErr != nil {
		return m.applyErr
	}
	m.intents = append(m.intents, intent)
	return nil
}

func (m *mockPipeline) SetFilterBy(ctx context.Context, d filters.Dimension) error {
	return m.record("set_filter_by:" + string(d))
}
func (m *mockPipeline) SetDuration(ctx context.Context, d string) error {
	return m.record("set_duration:" + d)
}
func (m *mockPipeline) SetCustomRange(ctx context.Context, start, end time.Time) error {
	return m.record("set_custom_range:" + start.Format("2006-01-02") + ":" + end.Format("2006-01-02"))
}
func (m *mockPipeline) SetLocation(ctx context.Context, name string) error {
	return m.record("set_location:" + name)
}
func (m *mockPipeline) SetFlexologist(ctx context.Context, name string) error {
	return m.record("set_flexologist:" + name)
}
func (m *mockPipeline) SetDataset(ctx context.Context, key string) error {
	return m.record("set_dataset:" + key)
}
func (m *mockPipeline) SelectOpportunity(ctx context.Context, name *string) error {
	if name == nil {
		return m.record("select_opportunity:<clear>")
	}
	return m.record("select_opportunity:" + *name)
}
func (m *mockPipeline) SelectLocation(ctx context.Context, name *string) error {
	if name == nil {
		return m.record("select_location:<clear>")
	}
	return m.record("select_location:" + *name)
}
func (m *mockPipeline) SetRankBy(ctx context.Context, d filters.Dimension) error {
	return m.record("set_rank_by:" + string(d))
}

func (m *mockPipeline) PageDrilldown(ctx context.Context, panel string, dir int) error {
	if panel != service.PanelLocations && panel != service.PanelFlexologists {
		return service.ErrUnknownPanel
	}
	m.paged = append(m.paged, panel)
	return nil
}

func (m *mockPipeline) Retry(ctx context.Context, s stage.Stage) error {
	if !stage.Valid(s) {
		return service.ErrUnknownStage
	}
	m.retried = append(m.retried, s)
	return nil
}

type mockStats struct{}

func (mockStats) GetStats() service.Stats {
	return service.Stats{Started: true, Workers: 4, QueueLength: 2, Dataset: "Total Bookings"}
}

func newTestServer(p *mockPipeline) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(p, mockStats{}).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func TestFiltersEndpoint(t *testing.T) {
	Convey("Given an API server over a ready pipeline", t, func() {
		p := &mockPipeline{
			filtersView: service.FiltersView{Status: types.PanelReady},
		}
		ts := newTestServer(p)
		defer ts.Close()

		Convey("When the filters view is requested", func() {
			resp, err := http.Get(ts.URL + "/analytics/filters")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the view is returned as JSON", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var v service.FiltersView
				So(json.NewDecoder(resp.Body).Decode(&v), ShouldBeNil)
				So(v.Status, ShouldEqual, types.PanelReady)
			})
		})

		Convey("When the wrong method is used", func() {
			resp, err := http.Post(ts.URL+"/analytics/filters", "application/json", nil)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the route is not found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestIntentsEndpoint(t *testing.T) {
	Convey("Given an API server", t, func() {
		p := &mockPipeline{}
		ts := newTestServer(p)
		defer ts.Close()

		post := func(body string) *http.Response {
			resp, err := http.Post(ts.URL+"/analytics/intents", "application/json", strings.NewReader(body))
			So(err, ShouldBeNil)
			return resp
		}

		Convey("When a duration intent is posted", func() {
			resp := post(`{"intent":"set_duration","value":"last_7_days"}`)
			defer resp.Body.Close()

			Convey("Then the intent is dispatched and acknowledged", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(p.intents, ShouldResemble, []string{"set_duration:last_7_days"})
			})
		})

		Convey("When a custom range intent is posted", func() {
			resp := post(`{"intent":"set_custom_range","start":"2026-03-01","end":"2026-03-10"}`)
			defer resp.Body.Close()

			Convey("Then the parsed dates reach the pipeline", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(p.intents, ShouldResemble, []string{"set_custom_range:2026-03-01:2026-03-10"})
			})
		})

		Convey("When a drill selection is cleared", func() {
			resp := post(`{"intent":"select_opportunity","clear":true}`)
			defer resp.Body.Close()

			Convey("Then the clear reaches the pipeline as nil", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(p.intents, ShouldResemble, []string{"select_opportunity:<clear>"})
			})
		})

		Convey("When the intent is unknown", func() {
			resp := post(`{"intent":"sort_sideways"}`)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(p.intents, ShouldBeEmpty)
			})
		})

		Convey("When the pipeline rejects the transition", func() {
			p.applyErr = filters.ErrInvalidDuration
			resp := post(`{"intent":"set_duration","value":"yesterday"}`)
			defer resp.Body.Close()

			Convey("Then a validation error is surfaced", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				var e struct {
					Code string `json:"code"`
				}
				So(json.NewDecoder(resp.Body).Decode(&e), ShouldBeNil)
				So(e.Code, ShouldEqual, "validation_error")
			})
		})

		Convey("When the body is not JSON", func() {
			resp := post(`{nope`)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestDrilldownPageEndpoint(t *testing.T) {
	Convey("Given an API server", t, func() {
		p := &mockPipeline{
			drilldownView: service.DrilldownView{
				Locations: service.DrilldownPanel{Status: types.PanelReady},
			},
		}
		ts := newTestServer(p)
		defer ts.Close()

		Convey("When a panel pages forward", func() {
			resp, err := http.Post(ts.URL+"/analytics/drilldown/page", "application/json",
				strings.NewReader(`{"panel":"locations","direction":"next"}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the updated view is returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(p.paged, ShouldResemble, []string{"locations"})
				var v service.DrilldownView
				So(json.NewDecoder(resp.Body).Decode(&v), ShouldBeNil)
				So(v.Locations.Status, ShouldEqual, types.PanelReady)
			})
		})

		Convey("When the panel name is unknown", func() {
			resp, err := http.Post(ts.URL+"/analytics/drilldown/page", "application/json",
				strings.NewReader(`{"panel":"sideways","direction":"next"}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the direction is unknown", func() {
			resp, err := http.Post(ts.URL+"/analytics/drilldown/page", "application/json",
				strings.NewReader(`{"panel":"locations","direction":"up"}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(p.paged, ShouldBeEmpty)
			})
		})
	})
}

func TestRetryEndpoint(t *testing.T) {
	Convey("Given an API server", t, func() {
		p := &mockPipeline{}
		ts := newTestServer(p)
		defer ts.Close()

		Convey("When a valid stage is retried", func() {
			resp, err := http.Post(ts.URL+"/analytics/retry", "application/json",
				strings.NewReader(`{"stage":"ranking"}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the retry reaches the pipeline", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(p.retried, ShouldResemble, []stage.Stage{stage.Ranking})
			})
		})

		Convey("When the stage is unknown", func() {
			resp, err := http.Post(ts.URL+"/analytics/retry", "application/json",
				strings.NewReader(`{"stage":"sideways"}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given an API server", t, func() {
		ts := newTestServer(&mockPipeline{})
		defer ts.Close()

		Convey("When stats are requested", func() {
			resp, err := http.Get(ts.URL + "/stats")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the provider's snapshot is returned typed", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var stats service.Stats
				So(json.NewDecoder(resp.Body).Decode(&stats), ShouldBeNil)
				So(stats.Started, ShouldBeTrue)
				So(stats.Workers, ShouldEqual, 4)
				So(stats.QueueLength, ShouldEqual, 2)
				So(stats.Dataset, ShouldEqual, "Total Bookings")
			})
		})
	})
}
