// Package gateway is the remote data gateway to the studio-booking backend.
// One function per endpoint, pure I/O: build the request, decode the JSON,
// parse loosely-typed fields into the typed model, no further logic.
package gateway

import (
	"context"
	"fmt"

	"github.com/stretchops/insight/internal/domain/filters"
	"github.com/stretchops/insight/internal/domain/model"
	"github.com/stretchops/insight/internal/domain/stage"
)

// Client performs the five backend calls the stage graph depends on.
type Client interface {
	FilterCatalogue(ctx context.Context, st filters.State) (model.FilterCatalogue, error)
	AuditSummary(ctx context.Context, st filters.State) (model.AuditSummary, error)
	AuditDetails(ctx context.Context, st filters.State) (model.AuditDetails, error)
	Ranking(ctx context.Context, st filters.State, metric string) (model.Ranking, error)
	LocationBreakdown(ctx context.Context, st filters.State, metric string) (model.LocationBreakdown, error)
}

// Fetch dispatches one stage's call on c. metric is only consulted for the
// ranking and breakdown stages; the caller resolves it from the filter
// catalogue before dispatching.
func Fetch(ctx context.Context, c Client, s stage.Stage, st filters.State, metric string) (any, error) {
	switch s {
	case stage.Filters:
		return c.FilterCatalogue(ctx, st)
	case stage.Audit:
		return c.AuditSummary(ctx, st)
	case stage.AuditDetails:
		return c.AuditDetails(ctx, st)
	case stage.Ranking:
		return c.Ranking(ctx, st, metric)
	case stage.LocationBreakdown:
		return c.LocationBreakdown(ctx, st, metric)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStage, s)
}
