package stubserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stretchops/insight/pkg/logger"
)

// Poll cadence for waiting on asynchronous pipeline state.
const (
	pollInterval = 100 * time.Millisecond
	pollDeadline = 15 * time.Second
)

// Run executes the smoke suite against a running analytics service: waits
// for the bootstrap, applies a handful of intents, pages through the
// drilldown panels, and verifies the view invariants.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}
	c := &client{base: config.ServiceURL, http: &http.Client{Timeout: config.Timeout}}

	logger.Get().Info(ctx, "starting insight smoke run",
		logger.String("serviceURL", config.ServiceURL),
		logger.String("timeout", config.Timeout.String()),
	)

	if err := c.waitHealthy(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	filters, err := c.waitBootstrapped(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap wait failed: %w", err)
	}
	logger.Get().Info(ctx, "pipeline bootstrapped",
		logger.String("dataset", filters.State.Dataset))

	if err := c.applyIntents(ctx, stats); err != nil {
		return fmt.Errorf("intent application failed: %w", err)
	}

	pages, err := c.collectDrilldownPages(ctx, stats)
	if err != nil {
		return fmt.Errorf("drilldown paging failed: %w", err)
	}

	if err := verifyDrilldown(pages, stats); err != nil {
		return fmt.Errorf("drilldown verification failed: %w", err)
	}
	if err := c.verifyRanking(ctx, stats); err != nil {
		return fmt.Errorf("ranking verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)
	return nil
}

// client is a minimal HTTP client over the analytics API.
type client struct {
	base string
	http *http.Client
}

// View shapes as the API serves them; only the fields the smoke run checks.
type filtersView struct {
	State struct {
		Dataset string `json:"dataset"`
	} `json:"state"`
	Status string `json:"status"`
}

type seriesView struct {
	Series []struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	} `json:"series"`
	Status string `json:"status"`
}

type drilldownRow struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

type drilldownPanel struct {
	Rows []drilldownRow `json:"rows"`
	Page struct {
		Page       int `json:"page"`
		TotalPages int `json:"total_pages"`
	} `json:"page"`
	Status string `json:"status"`
}

type drilldownView struct {
	Locations    drilldownPanel `json:"locations"`
	Flexologists drilldownPanel `json:"flexologists"`
}

func (c *client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: status %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *client) post(ctx context.Context, path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post %s: status %d", path, resp.StatusCode)
	}
	return nil
}

// waitHealthy polls /healthz until the service answers.
func (c *client) waitHealthy(ctx context.Context) error {
	return c.poll(ctx, func() error {
		return c.get(ctx, "/healthz", nil)
	})
}

// waitBootstrapped polls the filters view until the default dataset lands.
func (c *client) waitBootstrapped(ctx context.Context) (filtersView, error) {
	var v filtersView
	err := c.poll(ctx, func() error {
		if err := c.get(ctx, "/analytics/filters", &v); err != nil {
			return err
		}
		if v.Status != "ready" || v.State.Dataset == "" {
			return fmt.Errorf("not bootstrapped yet: status=%s dataset=%q", v.Status, v.State.Dataset)
		}
		return nil
	})
	return v, err
}

func (c *client) poll(ctx context.Context, probe func() error) error {
	deadline := time.Now().Add(pollDeadline)
	var last error
	for time.Now().Before(deadline) {
		if last = probe(); last == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
	return last
}

// applyIntents exercises the mutation surface: narrow the window, pick a
// flexologist dimension, select an opportunity.
func (c *client) applyIntents(ctx context.Context, stats *Stats) error {
	intents := []map[string]any{
		{"intent": "set_duration", "value": "last_90_days"},
		{"intent": "set_filter_by", "value": "flexologist"},
		{"intent": "select_opportunity", "value": opportunityNames[0]},
	}
	for _, in := range intents {
		if err := c.post(ctx, "/analytics/intents", in); err != nil {
			return err
		}
		stats.IntentsApplied++
	}
	return nil
}

// collectDrilldownPages walks the locations panel page by page.
func (c *client) collectDrilldownPages(ctx context.Context, stats *Stats) ([][]drilldownRow, error) {
	var v drilldownView
	err := c.poll(ctx, func() error {
		if err := c.get(ctx, "/analytics/drilldown", &v); err != nil {
			return err
		}
		if v.Locations.Status != "ready" {
			return fmt.Errorf("locations panel not ready: %s", v.Locations.Status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	pages := [][]drilldownRow{v.Locations.Rows}
	for page := 1; page < v.Locations.Page.TotalPages; page++ {
		if err := c.post(ctx, "/analytics/drilldown/page",
			map[string]any{"panel": "locations", "direction": "next"}); err != nil {
			return nil, err
		}
		if err := c.get(ctx, "/analytics/drilldown", &v); err != nil {
			return nil, err
		}
		pages = append(pages, v.Locations.Rows)
		stats.PagesTraversed++
	}
	return pages, nil
}

// verifyRanking checks the ranking panel settles and is sorted descending.
func (c *client) verifyRanking(ctx context.Context, stats *Stats) error {
	var v seriesView
	err := c.poll(ctx, func() error {
		if err := c.get(ctx, "/analytics/ranking", &v); err != nil {
			return err
		}
		if v.Status != "ready" {
			return fmt.Errorf("ranking panel not ready: %s", v.Status)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for i := 1; i < len(v.Series); i++ {
		if v.Series[i].Value > v.Series[i-1].Value {
			return fmt.Errorf("ranking not sorted at %d: %f > %f",
				i, v.Series[i].Value, v.Series[i-1].Value)
		}
	}
	stats.PanelsVerified++
	return nil
}

// displayFinalStats shows the smoke run summary.
func displayFinalStats(stats *Stats) {
	logger.Get().Info(context.Background(), "smoke run complete",
		logger.Int("intentsApplied", stats.IntentsApplied),
		logger.Int("pagesTraversed", stats.PagesTraversed),
		logger.Int("rowsSeen", stats.RowsSeen),
		logger.Int("panelsVerified", stats.PanelsVerified),
		logger.String("duration", stats.Duration.String()),
	)
}
