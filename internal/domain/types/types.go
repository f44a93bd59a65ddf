// Package types contains the view-ready shapes shared between the pipeline
// service and the HTTP API.
package types

// Series is one bar or table row of a chart: a name and its numeric value,
// already sorted by the transform layer.
type Series struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// DrilldownRow is one row of a drilldown panel. Display carries the
// formatted percentage ("91.0%"); Percentage is the numeric sort key.
// ParticularCount/TotalCount are only meaningful when HasCounts is true,
// i.e. when detail-level data backs the row.
type DrilldownRow struct {
	Name            string  `json:"name"`
	Display         string  `json:"display"`
	Percentage      float64 `json:"percentage"`
	ParticularCount int     `json:"particular_count,omitempty"`
	TotalCount      int     `json:"total_count,omitempty"`
	HasCounts       bool    `json:"has_counts"`
}

// PanelStatus mirrors a stage's cache status for one view panel.
type PanelStatus string

// Panel statuses as the View consumes them.
const (
	PanelIdle    PanelStatus = "idle"
	PanelLoading PanelStatus = "loading"
	PanelError   PanelStatus = "error"
	PanelReady   PanelStatus = "ready"
)

// PanelPage reports pagination state for one drilldown panel.
type PanelPage struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
}
