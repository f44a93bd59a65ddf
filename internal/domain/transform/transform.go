// Package transform holds the pure projections between raw stage payloads
// and view-ready shapes: percentage sorting, pagination, and series mapping.
//
// Every function returns a new slice and leaves its input untouched; panels
// and pagers may read the same source list within one render cycle.
package transform

import (
	"fmt"
	"sort"

	"github.com/stretchops/insight/internal/domain/model"
	"github.com/stretchops/insight/internal/domain/types"
)

// DefaultPageSize is the fixed drilldown page size.
const DefaultPageSize = 5

// SortByPercentage returns rows ordered descending by percentage. The sort
// is stable: rows with equal percentages keep their input-relative order,
// which is what makes pagination deterministic across re-renders.
func SortByPercentage(rows []types.DrilldownRow) []types.DrilldownRow {
	out := make([]types.DrilldownRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Percentage > out[j].Percentage
	})
	return out
}

// sortSeries orders a series descending by value, stable on ties.
func sortSeries(s []types.Series) []types.Series {
	out := make([]types.Series, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value > out[j].Value
	})
	return out
}

// TotalPages returns the page count for n items, at least 1.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

// ClampPage bounds page to the valid range for n items.
func ClampPage(page, n, pageSize int) int {
	if page < 0 {
		return 0
	}
	if last := TotalPages(n, pageSize) - 1; page > last {
		return last
	}
	return page
}

// Paginate returns the page-th slice of rows. The page index is clamped, so
// a list that shrank under the caller never yields an empty out-of-range
// page.
func Paginate(rows []types.DrilldownRow, page, pageSize int) []types.DrilldownRow {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page = ClampPage(page, len(rows), pageSize)
	start := page * pageSize
	if start >= len(rows) {
		return nil
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	out := make([]types.DrilldownRow, end-start)
	copy(out, rows[start:end])
	return out
}

// ToOpportunitySeries maps the audit summary's opportunity stats to a chart
// series, descending by percentage.
func ToOpportunitySeries(a model.AuditSummary) []types.Series {
	s := make([]types.Series, len(a.Opportunities))
	for i, o := range a.Opportunities {
		s[i] = types.Series{Name: o.Opportunity, Value: o.Percentage}
	}
	return sortSeries(s)
}

// ToRankingSeries maps ranking entries to a table series, descending by
// count.
func ToRankingSeries(r model.Ranking) []types.Series {
	s := make([]types.Series, len(r.Data))
	for i, e := range r.Data {
		s[i] = types.Series{Name: e.Name, Value: e.Count}
	}
	return sortSeries(s)
}

// FromSummary shapes summary-level breakdown stats into drilldown rows.
func FromSummary(stats []model.DimensionStat) []types.DrilldownRow {
	rows := make([]types.DrilldownRow, len(stats))
	for i, st := range stats {
		rows[i] = types.DrilldownRow{
			Name:       st.Name,
			Display:    formatPercent(st.Percentage),
			Percentage: st.Percentage,
		}
	}
	return rows
}

// FromDetails shapes detail-level stats into drilldown rows carrying the
// numerator/denominator for display.
func FromDetails(stats []model.DetailStat) []types.DrilldownRow {
	rows := make([]types.DrilldownRow, len(stats))
	for i, st := range stats {
		rows[i] = types.DrilldownRow{
			Name:            st.Name,
			Display:         formatPercent(st.Percentage),
			Percentage:      st.Percentage,
			ParticularCount: st.ParticularCount,
			TotalCount:      st.TotalCount,
			HasCounts:       true,
		}
	}
	return rows
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
