package gateway

import "github.com/stretchops/insight/internal/domain/model"

// Wire shapes mirror the backend's loosely-typed JSON: percentages arrive as
// strings like "82.5%" and breakdown arrays are keyed by singular dimension
// names. They are converted to the typed model here, at the boundary, so
// nothing downstream re-parses strings.

type wireCatalogue struct {
	DatasetOptions     []model.DatasetOption `json:"dataset_options"`
	FlexologistOptions []string              `json:"flexologist_options"`
	LocationOptions    []string              `json:"location_options"`
}

func (w wireCatalogue) toModel() model.FilterCatalogue {
	return model.FilterCatalogue(w)
}

type wireOpportunity struct {
	Opportunity string `json:"opportunity"`
	Percentage  string `json:"percentage"`
}

type wireLocationStat struct {
	Location   string `json:"location"`
	Percentage string `json:"percentage"`
}

type wireFlexologistStat struct {
	Flexologist string `json:"flexologist"`
	Percentage  string `json:"percentage"`
}

type wireAudit struct {
	TotalNotes             int                   `json:"total_notes"`
	TotalWithOpportunities int                   `json:"total_with_opportunities"`
	TotalQualityNotes      int                   `json:"total_quality_notes"`
	Opportunities          []wireOpportunity     `json:"opportunities"`
	Locations              []wireLocationStat    `json:"locations"`
	Flexologists           []wireFlexologistStat `json:"flexologists"`
}

func (w wireAudit) toModel() model.AuditSummary {
	out := model.AuditSummary{
		TotalNotes:             w.TotalNotes,
		TotalWithOpportunities: w.TotalWithOpportunities,
		TotalQualityNotes:      w.TotalQualityNotes,
		Opportunities:          make([]model.OpportunityStat, len(w.Opportunities)),
		Locations:              make([]model.DimensionStat, len(w.Locations)),
		Flexologists:           make([]model.DimensionStat, len(w.Flexologists)),
	}
	for i, o := range w.Opportunities {
		out.Opportunities[i] = model.OpportunityStat{
			Opportunity: o.Opportunity,
			Percentage:  model.ParsePercent(o.Percentage),
		}
	}
	for i, l := range w.Locations {
		out.Locations[i] = model.DimensionStat{
			Name:       l.Location,
			Percentage: model.ParsePercent(l.Percentage),
		}
	}
	for i, f := range w.Flexologists {
		out.Flexologists[i] = model.DimensionStat{
			Name:       f.Flexologist,
			Percentage: model.ParsePercent(f.Percentage),
		}
	}
	return out
}

type wireDetailStat struct {
	Location        string `json:"location,omitempty"`
	Flexologist     string `json:"flexologist,omitempty"`
	Percentage      string `json:"percentage_note_quality"`
	ParticularCount int    `json:"particular_count"`
	TotalCount      int    `json:"total_count"`
}

func (w wireDetailStat) name() string {
	if w.Location != "" {
		return w.Location
	}
	return w.Flexologist
}

type wireDetails struct {
	Location    []wireDetailStat `json:"location"`
	Flexologist []wireDetailStat `json:"flexologist"`
}

func (w wireDetails) toModel() model.AuditDetails {
	out := model.AuditDetails{
		Locations:    make([]model.DetailStat, len(w.Location)),
		Flexologists: make([]model.DetailStat, len(w.Flexologist)),
	}
	for i, s := range w.Location {
		out.Locations[i] = toDetailStat(s)
	}
	for i, s := range w.Flexologist {
		out.Flexologists[i] = toDetailStat(s)
	}
	return out
}

func toDetailStat(w wireDetailStat) model.DetailStat {
	return model.DetailStat{
		Name:            w.name(),
		Percentage:      model.ParsePercent(w.Percentage),
		ParticularCount: w.ParticularCount,
		TotalCount:      w.TotalCount,
	}
}

type wireBreakdownRow struct {
	Location     string `json:"location"`
	TotalNotes   int    `json:"total_notes"`
	QualityNotes int    `json:"quality_notes"`
	Percentage   string `json:"percentage"`
}

type wireBreakdown struct {
	Rows []wireBreakdownRow `json:"rows"`
}

func (w wireBreakdown) toModel() model.LocationBreakdown {
	out := model.LocationBreakdown{Rows: make([]model.BreakdownRow, len(w.Rows))}
	for i, r := range w.Rows {
		out.Rows[i] = model.BreakdownRow{
			Location:     r.Location,
			TotalNotes:   r.TotalNotes,
			QualityNotes: r.QualityNotes,
			Percentage:   model.ParsePercent(r.Percentage),
		}
	}
	return out
}
