// Package stage defines the dependent-query graph behind the analytics
// views: the five stages, their eligibility predicates, their deterministic
// cache keys, and their freshness windows.
//
// The graph is fixed. Evaluation order is topological: Filters first, then
// Audit and Ranking (independent of each other), then AuditDetails and
// LocationBreakdown. A stage's eligibility depends only on the current
// filter state and on whether its upstream stages have succeeded, so the
// whole graph is evaluable without touching the network or any UI.
package stage

import (
	"fmt"
	"time"

	"github.com/stretchops/insight/internal/domain/filters"
)

// Stage names one unit of the dependent-query graph.
type Stage string

// The five stages.
const (
	Filters           Stage = "filters"
	Audit             Stage = "audit"
	AuditDetails      Stage = "audit_details"
	Ranking           Stage = "ranking"
	LocationBreakdown Stage = "location_breakdown"
)

// Freshness windows. Details churn more with opportunity selection, so they
// go stale faster.
const (
	defaultFreshness      = 5 * time.Minute
	auditDetailsFreshness = 2 * time.Minute
)

// Order is the topological evaluation order of the graph.
var Order = []Stage{Filters, Audit, Ranking, AuditDetails, LocationBreakdown}

// Valid reports whether s names a known stage.
func Valid(s Stage) bool {
	switch s {
	case Filters, Audit, AuditDetails, Ranking, LocationBreakdown:
		return true
	}
	return false
}

// Freshness returns the maximum age a cached entry for s may have before a
// re-fetch is due.
func Freshness(s Stage) time.Duration {
	if s == AuditDetails {
		return auditDetailsFreshness
	}
	return defaultFreshness
}

// Eligible reports whether s may fetch given the current filter state and
// the success status of upstream stages. succeeded must report whether the
// named stage currently has a fresh-or-stale successful result.
func Eligible(s Stage, st filters.State, succeeded func(Stage) bool) bool {
	switch s {
	case Filters:
		return true
	case Audit:
		return succeeded(Filters) && st.HasCompleteRange()
	case AuditDetails:
		// Needs something concrete to drill into: a selected opportunity or
		// a narrowed dimension. Otherwise consumers fall back to the Audit
		// summary's own breakdown.
		if !succeeded(Audit) || !st.HasCompleteRange() {
			return false
		}
		return st.SelectedOpportunity != nil || st.Narrowed()
	case Ranking:
		return succeeded(Filters) && st.Dataset != "" && st.HasCompleteRange()
	case LocationBreakdown:
		return succeeded(Ranking)
	}
	return false
}

// Key builds the deterministic cache key for s under st. Equal keys denote
// cache-equivalent requests; changing any field a stage depends on yields a
// new key without touching entries stored under old keys.
func Key(s Stage, st filters.State) string {
	switch s {
	case Filters:
		return fmt.Sprintf("filters|by=%s", st.FilterBy)
	case Audit:
		return fmt.Sprintf("audit|%s|by=%s|loc=%s|flex=%s",
			rangeKey(st), st.FilterBy, st.Location, st.Flexologist)
	case AuditDetails:
		// Both the opportunity and the narrowed dimension participate: the
		// opportunity drives the detail query and the dimension narrows
		// within it. Confirm-with-product: whether a narrowed dimension
		// without an opportunity should instead widen to all opportunities.
		opp := ""
		if st.SelectedOpportunity != nil {
			opp = *st.SelectedOpportunity
		}
		return fmt.Sprintf("audit_details|%s|by=%s|loc=%s|flex=%s|opp=%s",
			rangeKey(st), st.FilterBy, st.Location, st.Flexologist, opp)
	case Ranking:
		return fmt.Sprintf("ranking|%s|rank_by=%s|dataset=%s",
			rangeKey(st), st.RankBy, st.Dataset)
	case LocationBreakdown:
		return fmt.Sprintf("location_breakdown|%s|dataset=%s",
			rangeKey(st), st.Dataset)
	}
	return string(s)
}

func rangeKey(st filters.State) string {
	if st.Duration == filters.DurationCustom && st.CustomRange != nil {
		return fmt.Sprintf("d=custom:%s:%s",
			st.CustomRange.Start.Format("2006-01-02"),
			st.CustomRange.End.Format("2006-01-02"))
	}
	return "d=" + st.Duration
}
