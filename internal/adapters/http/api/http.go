// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	service "github.com/stretchops/insight/internal/app"
	"github.com/stretchops/insight/internal/domain/filters"
	"github.com/stretchops/insight/internal/domain/stage"
)

// Pipeline bundles everything the handlers need from the analytics
// pipeline. Using an interface bundle keeps the handler layer loosely
// coupled to the service implementation.
type Pipeline interface {
	// Reads.
	Filters(ctx context.Context) service.FiltersView
	OpportunitySeries(ctx context.Context) service.SeriesView
	Drilldown(ctx context.Context) service.DrilldownView
	RankingSeries(ctx context.Context) service.SeriesView
	LocationBreakdownView(ctx context.Context) service.BreakdownView

	// Intents.
	SetFilterBy(ctx context.Context, d filters.Dimension) error
	SetDuration(ctx context.Context, d string) error
	SetCustomRange(ctx context.Context, start, end time.Time) error
	SetLocation(ctx context.Context, name string) error
	SetFlexologist(ctx context.Context, name string) error
	SetDataset(ctx context.Context, key string) error
	SelectOpportunity(ctx context.Context, name *string) error
	SelectLocation(ctx context.Context, name *string) error
	SetRankBy(ctx context.Context, d filters.Dimension) error
	PageDrilldown(ctx context.Context, panel string, dir int) error
	Retry(ctx context.Context, s stage.Stage) error
}

// Server wires HTTP routes for the analytics API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	filtersHandler   *FiltersHandler
	intentsHandler   *IntentsHandler
	panelsHandler    *PanelsHandler
	drilldownHandler *DrilldownHandler
	retryHandler     *RetryHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(p Pipeline, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		filtersHandler:   NewFiltersHandler(p),
		intentsHandler:   NewIntentsHandler(p),
		panelsHandler:    NewPanelsHandler(p),
		drilldownHandler: NewDrilldownHandler(p),
		retryHandler:     NewRetryHandler(p),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/analytics/filters", MetricsMiddleware(s.filtersHandler.HandleGetFilters, "filters"))
	mux.HandleFunc("/analytics/intents", MetricsMiddleware(s.intentsHandler.HandlePostIntent, "intents"))
	mux.HandleFunc("/analytics/opportunities", MetricsMiddleware(s.panelsHandler.HandleGetOpportunities, "opportunities"))
	mux.HandleFunc("/analytics/ranking", MetricsMiddleware(s.panelsHandler.HandleGetRanking, "ranking"))
	mux.HandleFunc("/analytics/breakdown", MetricsMiddleware(s.panelsHandler.HandleGetBreakdown, "breakdown"))
	mux.HandleFunc("/analytics/drilldown", MetricsMiddleware(s.drilldownHandler.HandleGetDrilldown, "drilldown"))
	mux.HandleFunc("/analytics/drilldown/page", MetricsMiddleware(s.drilldownHandler.HandlePostPage, "drilldown_page"))
	mux.HandleFunc("/analytics/retry", MetricsMiddleware(s.retryHandler.HandlePostRetry, "retry"))
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
