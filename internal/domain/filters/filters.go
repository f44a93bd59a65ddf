// Package filters holds the user-selectable filter state and the named
// intents that transition it.
//
// Every transition is a pure function from one State to the next. Invalid
// input is rejected with an error and the prior state is kept; callers never
// observe a half-applied transition.
package filters

import (
	"fmt"
	"time"
)

// Dimension selects which breakdown axis a view groups by.
type Dimension string

// Breakdown dimensions.
const (
	ByLocation    Dimension = "location"
	ByFlexologist Dimension = "flexologist"
)

// Duration tokens accepted by the backend. DurationCustom requires an
// explicit date range.
const (
	DurationLast7Days  = "last_7_days"
	DurationLast30Days = "last_30_days"
	DurationLast90Days = "last_90_days"
	DurationCustom     = "custom"
)

// All is the sentinel meaning "unfiltered" for location and flexologist.
// It is never sent to the backend.
const All = "All"

// DateRange is an inclusive calendar-date range for custom durations.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// State is the single source of truth for the analytics filters.
// The zero value is not usable; call NewState.
type State struct {
	FilterBy    Dimension  `json:"filter_by"`
	Duration    string     `json:"duration"`
	CustomRange *DateRange `json:"custom_range,omitempty"`
	Location    string     `json:"location"`
	Flexologist string     `json:"flexologist"`
	Dataset     string     `json:"dataset"`
	RankBy      Dimension  `json:"rank_by"`

	// Drill-through context; nil means nothing selected.
	SelectedOpportunity *string `json:"selected_opportunity,omitempty"`
	SelectedLocation    *string `json:"selected_location,omitempty"`
}

// NewState returns the default filter state used before any user interaction.
func NewState() State {
	return State{
		FilterBy:    ByLocation,
		Duration:    DurationLast30Days,
		Location:    All,
		Flexologist: All,
		RankBy:      ByLocation,
	}
}

func validDimension(d Dimension) bool {
	return d == ByLocation || d == ByFlexologist
}

func validDuration(d string) bool {
	switch d {
	case DurationLast7Days, DurationLast30Days, DurationLast90Days, DurationCustom:
		return true
	}
	return false
}

// clearDrill drops any drill-through context. Drill selections are only
// valid for the filter combination they were created under.
func (s State) clearDrill() State {
	s.SelectedOpportunity = nil
	s.SelectedLocation = nil
	return s
}

// SetFilterBy changes the breakdown dimension and clears drill context.
func (s State) SetFilterBy(d Dimension) (State, error) {
	if !validDimension(d) {
		return s, fmt.Errorf("%w: filter_by %q", ErrInvalidDimension, d)
	}
	s.FilterBy = d
	return s.clearDrill(), nil
}

// SetDuration changes the reporting window and clears drill context.
// Switching to a non-custom window also drops any custom range. Switching to
// custom keeps the previous range (if any) until SetCustomRange is applied;
// stages requiring a complete range are not eligible until then.
func (s State) SetDuration(d string) (State, error) {
	if !validDuration(d) {
		return s, fmt.Errorf("%w: duration %q", ErrInvalidDuration, d)
	}
	s.Duration = d
	if d != DurationCustom {
		s.CustomRange = nil
	}
	return s.clearDrill(), nil
}

// SetCustomRange sets the custom window. Rejected unless start <= end.
// Implies Duration = custom, and clears drill context.
func (s State) SetCustomRange(start, end time.Time) (State, error) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return s, fmt.Errorf("%w: %s..%s", ErrInvalidRange,
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	s.Duration = DurationCustom
	s.CustomRange = &DateRange{Start: start, End: end}
	return s.clearDrill(), nil
}

// SetLocation narrows to one studio location ("All" clears the narrowing)
// and clears drill context.
func (s State) SetLocation(name string) (State, error) {
	if name == "" {
		return s, fmt.Errorf("%w: empty location", ErrInvalidValue)
	}
	s.Location = name
	return s.clearDrill(), nil
}

// SetFlexologist narrows to one flexologist ("All" clears the narrowing)
// and clears drill context.
func (s State) SetFlexologist(name string) (State, error) {
	if name == "" {
		return s, fmt.Errorf("%w: empty flexologist", ErrInvalidValue)
	}
	s.Flexologist = name
	return s.clearDrill(), nil
}

// SetDataset selects the ranking dataset. Does NOT clear drill context:
// the drilldown panels key off the audit filters, not the dataset.
func (s State) SetDataset(key string) (State, error) {
	if key == "" {
		return s, fmt.Errorf("%w: empty dataset", ErrInvalidValue)
	}
	s.Dataset = key
	return s, nil
}

// SelectOpportunity activates (or clears, with nil) the opportunity drill
// context. A new opportunity invalidates any location drill-through made
// under the previous one.
func (s State) SelectOpportunity(name *string) (State, error) {
	if name != nil && *name == "" {
		return s, fmt.Errorf("%w: empty opportunity", ErrInvalidValue)
	}
	s.SelectedOpportunity = cloneStr(name)
	s.SelectedLocation = nil
	return s, nil
}

// SelectLocation activates (or clears, with nil) the location drill context.
func (s State) SelectLocation(name *string) (State, error) {
	if name != nil && *name == "" {
		return s, fmt.Errorf("%w: empty location selection", ErrInvalidValue)
	}
	s.SelectedLocation = cloneStr(name)
	return s, nil
}

// SetRankBy changes the ranking table dimension.
func (s State) SetRankBy(d Dimension) (State, error) {
	if !validDimension(d) {
		return s, fmt.Errorf("%w: rank_by %q", ErrInvalidDimension, d)
	}
	s.RankBy = d
	return s, nil
}

// HasCompleteRange reports whether the duration selection is usable for a
// backend query: either a fixed window, or custom with a validated range.
func (s State) HasCompleteRange() bool {
	if s.Duration != DurationCustom {
		return true
	}
	return s.CustomRange != nil
}

// Narrowed reports whether location or flexologist is set to a specific
// value rather than the All sentinel.
func (s State) Narrowed() bool {
	return s.Location != All || s.Flexologist != All
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
