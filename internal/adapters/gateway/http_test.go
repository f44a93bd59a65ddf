package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	gateway "github.com/stretchops/insight/internal/adapters/gateway"
	filters "github.com/stretchops/insight/internal/domain/filters"
	. "github.com/smartystreets/goconvey/convey"
)

// capture records the last request the stub backend saw.
type capture struct {
	path  string
	query url.Values
	auth  string
}

func stubBackend(body string, cap *capture) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cap.path = r.URL.Path
		cap.query = r.URL.Query()
		cap.auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestHTTPClient(t *testing.T) {
	Convey("Given a stub backend and the default filter state", t, func() {
		var cap capture
		st := filters.NewState()
		ctx := context.Background()

		Convey("When fetching the audit summary unfiltered", func() {
			srv := stubBackend(`{"total_notes":10,"opportunities":[{"opportunity":"x","percentage":"40%"}],"locations":[{"location":"north","percentage":"82.5%"}],"flexologists":[]}`, &cap)
			defer srv.Close()
			c := gateway.NewHTTPClient(srv.URL, gateway.WithToken("secret"))

			got, err := c.AuditSummary(ctx, st)
			So(err, ShouldBeNil)

			Convey("Then the All sentinels are omitted from the request", func() {
				So(cap.query.Has("location"), ShouldBeFalse)
				So(cap.query.Has("flexologist_name"), ShouldBeFalse)
				So(cap.query.Get("duration"), ShouldEqual, filters.DurationLast30Days)
			})

			Convey("Then the bearer token rides along", func() {
				So(cap.auth, ShouldEqual, "Bearer secret")
			})

			Convey("Then percent strings become floats at the boundary", func() {
				So(got.Opportunities[0].Percentage, ShouldEqual, 40.0)
				So(got.Locations[0].Percentage, ShouldEqual, 82.5)
			})
		})

		Convey("When a location narrows the audit", func() {
			srv := stubBackend(`{}`, &cap)
			defer srv.Close()
			c := gateway.NewHTTPClient(srv.URL)

			narrowed, _ := st.SetLocation("Studio A")
			_, err := c.AuditSummary(ctx, narrowed)
			So(err, ShouldBeNil)
			So(cap.query.Get("location"), ShouldEqual, "Studio A")
		})

		Convey("When a custom range is active", func() {
			srv := stubBackend(`{}`, &cap)
			defer srv.Close()
			c := gateway.NewHTTPClient(srv.URL)

			start, _ := time.Parse("2006-01-02", "2024-02-01")
			end, _ := time.Parse("2006-01-02", "2024-02-10")
			ranged, _ := st.SetCustomRange(start, end)

			_, err := c.AuditSummary(ctx, ranged)
			So(err, ShouldBeNil)
			So(cap.query.Get("duration"), ShouldEqual, "custom")
			So(cap.query.Get("start"), ShouldEqual, "2024-02-01")
			So(cap.query.Get("end"), ShouldEqual, "2024-02-10")
		})

		Convey("When fetching audit details with an opportunity", func() {
			srv := stubBackend(`{"location":[{"location":"north","percentage_note_quality":"66.7%","particular_count":2,"total_count":3}],"flexologist":[]}`, &cap)
			defer srv.Close()
			c := gateway.NewHTTPClient(srv.URL)

			opp := "Missed stretch goal"
			sel, _ := st.SelectOpportunity(&opp)
			got, err := c.AuditDetails(ctx, sel)
			So(err, ShouldBeNil)
			So(cap.path, ShouldEqual, "/analytics/audit/details")
			So(cap.query.Get("opportunity"), ShouldEqual, opp)
			So(got.Locations[0].Percentage, ShouldEqual, 66.7)
			So(got.Locations[0].ParticularCount, ShouldEqual, 2)
		})

		Convey("When fetching the ranking", func() {
			srv := stubBackend(`{"data":[{"name":"Studio B","count":30}]}`, &cap)
			defer srv.Close()
			c := gateway.NewHTTPClient(srv.URL)

			got, err := c.Ranking(ctx, st, "percentage_note_quality")
			So(err, ShouldBeNil)

			Convey("Then the resolved metric token is sent, never the label", func() {
				So(cap.query.Get("metric"), ShouldEqual, "percentage_note_quality")
				So(cap.query.Get("rank_by"), ShouldEqual, "location")
			})
			So(got.Data[0].Count, ShouldEqual, 30.0)
		})

		Convey("When the backend answers with a 5xx", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer srv.Close()
			c := gateway.NewHTTPClient(srv.URL)

			_, err := c.FilterCatalogue(ctx, st)
			So(err, ShouldWrap, gateway.ErrStatus)
		})
	})
}
