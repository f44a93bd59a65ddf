// Package model holds the typed payloads returned by the booking backend.
//
// Percent fields arrive from the backend as strings like "82.5%". They are
// parsed into float64 exactly once, at the gateway boundary, so downstream
// transforms never touch string parsing.
package model

import (
	"strconv"
	"strings"
)

// DatasetOption is one selectable dataset in the filter catalogue.
// Label is what the View shows; Metric is the backend token sent to the
// ranking endpoint.
type DatasetOption struct {
	Label  string `json:"label"`
	Metric string `json:"metric"`
}

// FilterCatalogue is the Filters stage payload.
type FilterCatalogue struct {
	DatasetOptions     []DatasetOption `json:"dataset_options"`
	FlexologistOptions []string        `json:"flexologist_options"`
	LocationOptions    []string        `json:"location_options"`
}

// OpportunityStat is one bar of the opportunity chart.
type OpportunityStat struct {
	Opportunity string  `json:"opportunity"`
	Percentage  float64 `json:"percentage"`
}

// DimensionStat is a summary-level breakdown row (no counts).
type DimensionStat struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// AuditSummary is the Audit stage payload.
type AuditSummary struct {
	TotalNotes             int               `json:"total_notes"`
	TotalWithOpportunities int               `json:"total_with_opportunities"`
	TotalQualityNotes      int               `json:"total_quality_notes"`
	Opportunities          []OpportunityStat `json:"opportunities"`
	Locations              []DimensionStat   `json:"locations"`
	Flexologists           []DimensionStat   `json:"flexologists"`
}

// DetailStat is a detail-level breakdown row carrying the numerator and
// denominator behind the percentage.
type DetailStat struct {
	Name            string  `json:"name"`
	Percentage      float64 `json:"percentage"`
	ParticularCount int     `json:"particular_count"`
	TotalCount      int     `json:"total_count"`
}

// AuditDetails is the AuditDetails stage payload.
type AuditDetails struct {
	Locations    []DetailStat `json:"locations"`
	Flexologists []DetailStat `json:"flexologists"`
}

// RankEntry is one row of the ranking table.
type RankEntry struct {
	Name  string  `json:"name"`
	Count float64 `json:"count"`
}

// Ranking is the Ranking stage payload.
type Ranking struct {
	Data []RankEntry `json:"data"`
}

// BreakdownRow is one row of the per-location breakdown table.
type BreakdownRow struct {
	Location     string  `json:"location"`
	TotalNotes   int     `json:"total_notes"`
	QualityNotes int     `json:"quality_notes"`
	Percentage   float64 `json:"percentage"`
}

// LocationBreakdown is the LocationBreakdown stage payload.
type LocationBreakdown struct {
	Rows []BreakdownRow `json:"rows"`
}

// ParsePercent converts values like "82.5%", " 91 %" or "7" to a float64.
// Returns 0 for empty or unparseable input; absent data renders as zero
// rather than failing the whole payload.
func ParsePercent(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
