// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	service "github.com/stretchops/insight/internal/app"
)

// PanelDependencies defines the chart and table view reads.
type PanelDependencies interface {
	OpportunitySeries(ctx context.Context) service.SeriesView
	RankingSeries(ctx context.Context) service.SeriesView
	LocationBreakdownView(ctx context.Context) service.BreakdownView
}

// PanelsHandler serves the chart and table panels.
type PanelsHandler struct {
	deps PanelDependencies
}

// NewPanelsHandler creates a new panels handler.
func NewPanelsHandler(deps PanelDependencies) *PanelsHandler {
	return &PanelsHandler{deps: deps}
}

// HandleGetOpportunities handles GET /analytics/opportunities requests.
func (h *PanelsHandler) HandleGetOpportunities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.OpportunitySeries(r.Context()))
}

// HandleGetRanking handles GET /analytics/ranking requests.
func (h *PanelsHandler) HandleGetRanking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.RankingSeries(r.Context()))
}

// HandleGetBreakdown handles GET /analytics/breakdown requests.
func (h *PanelsHandler) HandleGetBreakdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.LocationBreakdownView(r.Context()))
}
