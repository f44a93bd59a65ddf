// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/stretchops/insight/internal/domain/filters"
)

// Intent tokens as the View emits them.
const (
	IntentSetFilterBy       = "set_filter_by"
	IntentSetDuration       = "set_duration"
	IntentSetCustomRange    = "set_custom_range"
	IntentSetLocation       = "set_location"
	IntentSetFlexologist    = "set_flexologist"
	IntentSetDataset        = "set_dataset"
	IntentSelectOpportunity = "select_opportunity"
	IntentSelectLocation    = "select_location"
	IntentSetRankBy         = "set_rank_by"
)

const dateLayout = "2006-01-02"

// IntentDependencies defines the mutation surface handlers dispatch to.
type IntentDependencies interface {
	SetFilterBy(ctx context.Context, d filters.Dimension) error
	SetDuration(ctx context.Context, d string) error
	SetCustomRange(ctx context.Context, start, end time.Time) error
	SetLocation(ctx context.Context, name string) error
	SetFlexologist(ctx context.Context, name string) error
	SetDataset(ctx context.Context, key string) error
	SelectOpportunity(ctx context.Context, name *string) error
	SelectLocation(ctx context.Context, name *string) error
	SetRankBy(ctx context.Context, d filters.Dimension) error
}

// IntentsHandler handles filter intent requests.
type IntentsHandler struct {
	deps IntentDependencies
}

// NewIntentsHandler creates a new intents handler.
func NewIntentsHandler(deps IntentDependencies) *IntentsHandler {
	return &IntentsHandler{deps: deps}
}

// intentRequest mirrors the POST /analytics/intents schema. Value carries
// the new selection; Clear drops a drill selection; Start/End are calendar
// dates for the custom range.
type intentRequest struct {
	Intent string `json:"intent"`
	Value  string `json:"value,omitempty"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
	Clear  bool   `json:"clear,omitempty"`
}

// HandlePostIntent handles POST /analytics/intents requests. Validation
// failures reject the intent and leave the filter state untouched.
func (h *IntentsHandler) HandlePostIntent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_intent"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req intentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	err := h.dispatch(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, ackResponse{Status: "applied"})
	case errors.Is(err, ErrUnknownIntent):
		writeError(w, http.StatusBadRequest, "unknown_intent", err)
	default:
		writeError(w, http.StatusBadRequest, "validation_error", err)
	}
}

func (h *IntentsHandler) dispatch(ctx context.Context, req intentRequest) error {
	const op = "api.post_intent"
	switch req.Intent {
	case IntentSetFilterBy:
		return h.deps.SetFilterBy(ctx, filters.Dimension(req.Value))
	case IntentSetDuration:
		return h.deps.SetDuration(ctx, req.Value)
	case IntentSetCustomRange:
		start, err := time.Parse(dateLayout, req.Start)
		if err != nil {
			return WrapKind(op, ErrBadRequest, err)
		}
		end, err := time.Parse(dateLayout, req.End)
		if err != nil {
			return WrapKind(op, ErrBadRequest, err)
		}
		return h.deps.SetCustomRange(ctx, start, end)
	case IntentSetLocation:
		return h.deps.SetLocation(ctx, req.Value)
	case IntentSetFlexologist:
		return h.deps.SetFlexologist(ctx, req.Value)
	case IntentSetDataset:
		return h.deps.SetDataset(ctx, req.Value)
	case IntentSelectOpportunity:
		return h.deps.SelectOpportunity(ctx, selection(req))
	case IntentSelectLocation:
		return h.deps.SelectLocation(ctx, selection(req))
	case IntentSetRankBy:
		return h.deps.SetRankBy(ctx, filters.Dimension(req.Value))
	}
	return NewKind(op, ErrUnknownIntent)
}

// selection maps a drill intent's payload to the optional selection value.
func selection(req intentRequest) *string {
	if req.Clear {
		return nil
	}
	v := req.Value
	return &v
}
