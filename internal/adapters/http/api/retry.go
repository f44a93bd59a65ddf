// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/stretchops/insight/internal/app"
	"github.com/stretchops/insight/internal/domain/stage"
)

// RetryDependencies defines the retry surface.
type RetryDependencies interface {
	Retry(ctx context.Context, s stage.Stage) error
}

// RetryHandler re-issues a failed stage's fetch for its current key.
type RetryHandler struct {
	deps RetryDependencies
}

// NewRetryHandler creates a new retry handler.
func NewRetryHandler(deps RetryDependencies) *RetryHandler {
	return &RetryHandler{deps: deps}
}

// retryRequest mirrors the POST /analytics/retry schema.
type retryRequest struct {
	Stage string `json:"stage"`
}

// HandlePostRetry handles POST /analytics/retry requests.
func (h *RetryHandler) HandlePostRetry(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_retry"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req retryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.Retry(r.Context(), stage.Stage(req.Stage)); err != nil {
		if errors.Is(err, service.ErrUnknownStage) {
			writeError(w, http.StatusBadRequest, "unknown_stage", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "retrying"})
}
