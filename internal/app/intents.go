package service

import (
	"context"
	"time"

	"github.com/stretchops/insight/internal/domain/filters"
	"github.com/stretchops/insight/internal/domain/stage"
	"github.com/stretchops/insight/internal/domain/transform"
)

// Intents. Each applies one pure filter-state transition; on success the
// resolver re-evaluates the stage graph. Validation failures leave the state
// untouched and schedule nothing.

// SetFilterBy switches the breakdown dimension.
func (p *Pipeline) SetFilterBy(ctx context.Context, d filters.Dimension) error {
	return p.apply(ctx, func(s filters.State) (filters.State, error) {
		return s.SetFilterBy(d)
	})
}

// SetDuration switches the reporting window.
func (p *Pipeline) SetDuration(ctx context.Context, d string) error {
	return p.apply(ctx, func(s filters.State) (filters.State, error) {
		return s.SetDuration(d)
	})
}

// SetCustomRange sets an explicit date range.
func (p *Pipeline) SetCustomRange(ctx context.Context, start, end time.Time) error {
	return p.apply(ctx, func(s filters.State) (filters.State, error) {
		return s.SetCustomRange(start, end)
	})
}

// SetLocation narrows to one studio location.
func (p *Pipeline) SetLocation(ctx context.Context, name string) error {
	return p.apply(ctx, func(s filters.State) (filters.State, error) {
		return s.SetLocation(name)
	})
}

// SetFlexologist narrows to one flexologist.
func (p *Pipeline) SetFlexologist(ctx context.Context, name string) error {
	return p.apply(ctx, func(s filters.State) (filters.State, error) {
		return s.SetFlexologist(name)
	})
}

// SetDataset records an explicit dataset choice. The bootstrapper never
// overrides a dataset set through here.
func (p *Pipeline) SetDataset(ctx context.Context, key string) error {
	err := p.apply(ctx, func(s filters.State) (filters.State, error) {
		return s.SetDataset(key)
	})
	if err == nil {
		p.mu.Lock()
		p.userChoseDataset = true
		p.mu.Unlock()
	}
	return err
}

// SelectOpportunity activates or clears (nil) the opportunity drill context.
func (p *Pipeline) SelectOpportunity(ctx context.Context, name *string) error {
	return p.apply(ctx, func(s filters.State) (filters.State, error) {
		return s.SelectOpportunity(name)
	})
}

// SelectLocation activates or clears (nil) the location drill context.
func (p *Pipeline) SelectLocation(ctx context.Context, name *string) error {
	return p.apply(ctx, func(s filters.State) (filters.State, error) {
		return s.SelectLocation(name)
	})
}

// SetRankBy switches the ranking table dimension.
func (p *Pipeline) SetRankBy(ctx context.Context, d filters.Dimension) error {
	return p.apply(ctx, func(s filters.State) (filters.State, error) {
		return s.SetRankBy(d)
	})
}

// apply runs one transition under the lock, resets the drilldown pagers when
// the drill context they were valid for changed, and triggers a resolve
// pass.
func (p *Pipeline) apply(ctx context.Context, transition func(filters.State) (filters.State, error)) error {
	p.mu.Lock()
	next, err := transition(p.state)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	p.state = next

	if key := stage.Key(stage.AuditDetails, p.state); key != p.lastDrillKey {
		p.locPager.Reset()
		p.flexPager.Reset()
		p.lastDrillKey = key
	}
	started := p.started
	p.mu.Unlock()

	if started {
		p.Resolve(ctx)
	}
	return nil
}

// PageDrilldown moves one panel's page: dir is +1 for next, -1 for prev.
func (p *Pipeline) PageDrilldown(ctx context.Context, panel string, dir int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var pager *transform.Pager
	switch panel {
	case PanelLocations:
		pager = p.locPager
	case PanelFlexologists:
		pager = p.flexPager
	default:
		return ErrUnknownPanel
	}
	if dir >= 0 {
		pager.Next()
	} else {
		pager.Prev()
	}
	return nil
}

// Retry drops a failed stage's entry for its current key and re-resolves.
// Only that stage's fetch is re-issued; fresh siblings stay untouched.
func (p *Pipeline) Retry(ctx context.Context, s stage.Stage) error {
	if !stage.Valid(s) {
		return ErrUnknownStage
	}

	p.mu.Lock()
	key := stage.Key(s, p.state)
	p.mu.Unlock()

	p.store.Drop(ctx, key)
	p.Resolve(ctx)
	return nil
}
