package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/stretchops/insight/internal/domain/filters"
	"github.com/stretchops/insight/internal/domain/model"
)

// Default client configuration constants.
const (
	defaultTimeout = 10 * time.Second
)

// HTTPClient implements Client against the booking backend's REST API.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient creates a backend client with configuration options.
func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FilterCatalogue fetches the dataset/location/flexologist option lists.
func (c *HTTPClient) FilterCatalogue(ctx context.Context, st filters.State) (model.FilterCatalogue, error) {
	q := url.Values{}
	q.Set("filter_by", string(st.FilterBy))

	var wire wireCatalogue
	if err := c.get(ctx, "/analytics/filters", q, &wire); err != nil {
		return model.FilterCatalogue{}, err
	}
	return wire.toModel(), nil
}

// AuditSummary fetches the note-quality audit for the current filters.
func (c *HTTPClient) AuditSummary(ctx context.Context, st filters.State) (model.AuditSummary, error) {
	q := rangeParams(st)
	addDimensionParams(q, st)

	var wire wireAudit
	if err := c.get(ctx, "/analytics/audit", q, &wire); err != nil {
		return model.AuditSummary{}, err
	}
	return wire.toModel(), nil
}

// AuditDetails fetches the per-opportunity breakdown with counts.
func (c *HTTPClient) AuditDetails(ctx context.Context, st filters.State) (model.AuditDetails, error) {
	q := rangeParams(st)
	addDimensionParams(q, st)
	if st.SelectedOpportunity != nil {
		q.Set("opportunity", *st.SelectedOpportunity)
	}

	var wire wireDetails
	if err := c.get(ctx, "/analytics/audit/details", q, &wire); err != nil {
		return model.AuditDetails{}, err
	}
	return wire.toModel(), nil
}

// Ranking fetches the ranking table for the resolved metric.
func (c *HTTPClient) Ranking(ctx context.Context, st filters.State, metric string) (model.Ranking, error) {
	q := rangeParams(st)
	q.Set("rank_by", string(st.RankBy))
	q.Set("metric", metric)

	var wire model.Ranking
	if err := c.get(ctx, "/analytics/ranking", q, &wire); err != nil {
		return model.Ranking{}, err
	}
	return wire, nil
}

// LocationBreakdown fetches the per-location breakdown table.
func (c *HTTPClient) LocationBreakdown(ctx context.Context, st filters.State, metric string) (model.LocationBreakdown, error) {
	q := rangeParams(st)
	q.Set("metric", metric)

	var wire wireBreakdown
	if err := c.get(ctx, "/analytics/locations/breakdown", q, &wire); err != nil {
		return model.LocationBreakdown{}, err
	}
	return wire.toModel(), nil
}

// get performs one GET and decodes the JSON body into out.
func (c *HTTPClient) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %d", ErrStatus, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	return nil
}

// rangeParams encodes the duration selection: a fixed token, or custom with
// ISO calendar dates.
func rangeParams(st filters.State) url.Values {
	q := url.Values{}
	q.Set("duration", st.Duration)
	if st.Duration == filters.DurationCustom && st.CustomRange != nil {
		q.Set("start", st.CustomRange.Start.Format("2006-01-02"))
		q.Set("end", st.CustomRange.End.Format("2006-01-02"))
	}
	return q
}

// addDimensionParams adds location/flexologist narrowing. The All sentinel
// is omitted from the outgoing request rather than sent literally.
func addDimensionParams(q url.Values, st filters.State) {
	if st.Location != filters.All {
		q.Set("location", st.Location)
	}
	if st.Flexologist != filters.All {
		q.Set("flexologist_name", st.Flexologist)
	}
}
