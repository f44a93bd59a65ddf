package service

import (
	"context"

	"github.com/stretchops/insight/internal/adapters/cache"
	"github.com/stretchops/insight/internal/domain/filters"
	"github.com/stretchops/insight/internal/domain/model"
	"github.com/stretchops/insight/internal/domain/stage"
	"github.com/stretchops/insight/internal/domain/transform"
	"github.com/stretchops/insight/internal/domain/types"
)

// Drilldown panel names as the API addresses them.
const (
	PanelLocations    = "locations"
	PanelFlexologists = "flexologists"
)

// FiltersView is the filter catalogue plus the current filter state.
type FiltersView struct {
	State     filters.State         `json:"state"`
	Catalogue model.FilterCatalogue `json:"catalogue"`
	Status    types.PanelStatus     `json:"status"`
	Error     string                `json:"error,omitempty"`
}

// SeriesView is a sorted chart series plus its panel status.
type SeriesView struct {
	Series []types.Series    `json:"series"`
	Status types.PanelStatus `json:"status"`
	Error  string            `json:"error,omitempty"`
}

// DrilldownPanel is one paginated breakdown panel.
type DrilldownPanel struct {
	Rows   []types.DrilldownRow `json:"rows"`
	Page   types.PanelPage      `json:"page"`
	Status types.PanelStatus    `json:"status"`
	Error  string               `json:"error,omitempty"`
}

// DrilldownView carries both breakdown panels.
type DrilldownView struct {
	Locations    DrilldownPanel `json:"locations"`
	Flexologists DrilldownPanel `json:"flexologists"`
}

// BreakdownView is the per-location breakdown table.
type BreakdownView struct {
	Rows   []model.BreakdownRow `json:"rows"`
	Status types.PanelStatus    `json:"status"`
	Error  string               `json:"error,omitempty"`
}

// entryFor reads a stage's entry under the given state's key and maps its
// cache status to the panel status the View consumes.
func (p *Pipeline) entryFor(ctx context.Context, s stage.Stage, st filters.State) (cache.Entry, types.PanelStatus) {
	e, ok := p.store.Get(ctx, stage.Key(s, st))
	if !ok {
		return cache.Entry{}, types.PanelIdle
	}
	switch e.Status {
	case cache.StatusPending:
		return e, types.PanelLoading
	case cache.StatusSuccess:
		return e, types.PanelReady
	case cache.StatusError:
		return e, types.PanelError
	}
	return e, types.PanelIdle
}

func errText(e cache.Entry) string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Filters returns the filter catalogue view.
func (p *Pipeline) Filters(ctx context.Context) FiltersView {
	st := p.State()
	e, status := p.entryFor(ctx, stage.Filters, st)

	v := FiltersView{State: st, Status: status, Error: errText(e)}
	if cat, ok := e.Value.(model.FilterCatalogue); ok {
		v.Catalogue = cat
	}
	return v
}

// OpportunitySeries returns the opportunity bar chart series.
func (p *Pipeline) OpportunitySeries(ctx context.Context) SeriesView {
	st := p.State()
	e, status := p.entryFor(ctx, stage.Audit, st)

	v := SeriesView{Status: status, Error: errText(e)}
	if a, ok := e.Value.(model.AuditSummary); ok {
		v.Series = transform.ToOpportunitySeries(a)
	}
	return v
}

// Drilldown returns both breakdown panels, sorted and paginated. When the
// detail stage is eligible its rows carry numerator/denominator counts;
// while the details are loading the summary's own breakdown keeps the
// panels populated, so a drill never blanks a view that already had data.
func (p *Pipeline) Drilldown(ctx context.Context) DrilldownView {
	st := p.State()
	locRows, flexRows, status, errMsg := p.drillSource(ctx, st)

	locRows = transform.SortByPercentage(locRows)
	flexRows = transform.SortByPercentage(flexRows)

	p.mu.Lock()
	p.locPager.SetTotal(len(locRows))
	p.flexPager.SetTotal(len(flexRows))
	loc := DrilldownPanel{
		Rows:   transform.Paginate(locRows, p.locPager.Page(), p.locPager.PageSize()),
		Page:   types.PanelPage{Page: p.locPager.Page(), TotalPages: p.locPager.TotalPages()},
		Status: status,
		Error:  errMsg,
	}
	flex := DrilldownPanel{
		Rows:   transform.Paginate(flexRows, p.flexPager.Page(), p.flexPager.PageSize()),
		Page:   types.PanelPage{Page: p.flexPager.Page(), TotalPages: p.flexPager.TotalPages()},
		Status: status,
		Error:  errMsg,
	}
	p.mu.Unlock()

	return DrilldownView{Locations: loc, Flexologists: flex}
}

// drillSource picks detail-level rows when the detail stage is eligible and
// has succeeded, falling back to the audit summary's own breakdown.
func (p *Pipeline) drillSource(ctx context.Context, st filters.State) (loc, flex []types.DrilldownRow, status types.PanelStatus, errMsg string) {
	succeeded := func(s stage.Stage) bool {
		e, ok := p.store.Get(ctx, stage.Key(s, st))
		return ok && e.Status == cache.StatusSuccess
	}

	if stage.Eligible(stage.AuditDetails, st, succeeded) {
		e, s := p.entryFor(ctx, stage.AuditDetails, st)
		if d, ok := e.Value.(model.AuditDetails); ok && e.Status == cache.StatusSuccess {
			return transform.FromDetails(d.Locations), transform.FromDetails(d.Flexologists), s, ""
		}
		status, errMsg = s, errText(e)
		if status == types.PanelIdle {
			status = types.PanelLoading
		}
	}

	e, s := p.entryFor(ctx, stage.Audit, st)
	if status == "" {
		status, errMsg = s, errText(e)
	}
	if a, ok := e.Value.(model.AuditSummary); ok {
		return transform.FromSummary(a.Locations), transform.FromSummary(a.Flexologists), status, errMsg
	}
	return nil, nil, status, errMsg
}

// RankingSeries returns the ranking table series from whichever source is
// authoritative for the current selection: detail rows when an opportunity
// drill is active, the ranking stage otherwise, with the audit summary's
// breakdown as the fallback before the ranking stage has resolved.
func (p *Pipeline) RankingSeries(ctx context.Context) SeriesView {
	st := p.State()

	if st.SelectedOpportunity != nil {
		if e, status := p.entryFor(ctx, stage.AuditDetails, st); e.Status == cache.StatusSuccess {
			if d, ok := e.Value.(model.AuditDetails); ok {
				rows := d.Locations
				if st.RankBy == filters.ByFlexologist {
					rows = d.Flexologists
				}
				return SeriesView{Series: detailSeries(rows), Status: status}
			}
		}
	}

	e, status := p.entryFor(ctx, stage.Ranking, st)
	if r, ok := e.Value.(model.Ranking); ok && e.Status == cache.StatusSuccess {
		return SeriesView{Series: transform.ToRankingSeries(r), Status: status}
	}

	if ae, as := p.entryFor(ctx, stage.Audit, st); ae.Status == cache.StatusSuccess {
		if a, ok := ae.Value.(model.AuditSummary); ok {
			stats := a.Locations
			if st.RankBy == filters.ByFlexologist {
				stats = a.Flexologists
			}
			// Ranking itself may still be loading; report its status so the
			// View can show the fallback as provisional.
			if status == types.PanelIdle {
				status = as
			}
			return SeriesView{Series: summarySeries(stats), Status: status, Error: errText(e)}
		}
	}
	return SeriesView{Status: status, Error: errText(e)}
}

// LocationBreakdownView returns the per-location breakdown table.
func (p *Pipeline) LocationBreakdownView(ctx context.Context) BreakdownView {
	st := p.State()
	e, status := p.entryFor(ctx, stage.LocationBreakdown, st)

	v := BreakdownView{Status: status, Error: errText(e)}
	if b, ok := e.Value.(model.LocationBreakdown); ok {
		v.Rows = b.Rows
	}
	return v
}

func detailSeries(rows []model.DetailStat) []types.Series {
	sorted := transform.SortByPercentage(transform.FromDetails(rows))
	out := make([]types.Series, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, types.Series{Name: r.Name, Value: r.Percentage})
	}
	return out
}

func summarySeries(stats []model.DimensionStat) []types.Series {
	sorted := transform.SortByPercentage(transform.FromSummary(stats))
	out := make([]types.Series, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, types.Series{Name: r.Name, Value: r.Percentage})
	}
	return out
}
