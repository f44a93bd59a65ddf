// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/stretchops/insight/internal/app"
)

// DrilldownDependencies defines the drilldown view and paging surface.
type DrilldownDependencies interface {
	Drilldown(ctx context.Context) service.DrilldownView
	PageDrilldown(ctx context.Context, panel string, dir int) error
}

// DrilldownHandler serves the two breakdown panels and their paging.
type DrilldownHandler struct {
	deps DrilldownDependencies
}

// NewDrilldownHandler creates a new drilldown handler.
func NewDrilldownHandler(deps DrilldownDependencies) *DrilldownHandler {
	return &DrilldownHandler{deps: deps}
}

// HandleGetDrilldown handles GET /analytics/drilldown requests.
func (h *DrilldownHandler) HandleGetDrilldown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Drilldown(r.Context()))
}

// pageRequest mirrors the POST /analytics/drilldown/page schema.
type pageRequest struct {
	Panel     string `json:"panel"`
	Direction string `json:"direction"`
}

// HandlePostPage handles POST /analytics/drilldown/page requests and
// responds with the post-transition drilldown view.
func (h *DrilldownHandler) HandlePostPage(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_drilldown_page"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	dir := 0
	switch req.Direction {
	case "next":
		dir = 1
	case "prev":
		dir = -1
	default:
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	if err := h.deps.PageDrilldown(r.Context(), req.Panel, dir); err != nil {
		if errors.Is(err, service.ErrUnknownPanel) {
			writeError(w, http.StatusBadRequest, "unknown_panel", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Drilldown(r.Context()))
}
