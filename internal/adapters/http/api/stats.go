// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	service "github.com/stretchops/insight/internal/app"
)

// StatsProvider exposes a snapshot of pipeline runtime counters.
type StatsProvider interface {
	GetStats() service.Stats
}

// StatsHandler serves the pipeline stats snapshot.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats handles GET /stats requests with the queue, cache, and
// bootstrap counters of the running pipeline.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.provider.GetStats())
}
