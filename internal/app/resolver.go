package service

import (
	"context"
	"time"

	"github.com/stretchops/insight/internal/adapters/cache"
	"github.com/stretchops/insight/internal/adapters/gateway"
	workerpool "github.com/stretchops/insight/internal/adapters/mq/worker"
	"github.com/stretchops/insight/internal/domain/filters"
	"github.com/stretchops/insight/internal/domain/model"
	"github.com/stretchops/insight/internal/domain/stage"
	"github.com/stretchops/insight/pkg/logger"
	"github.com/stretchops/insight/pkg/metrics"
)

// Resolve walks the stage graph in topological order and schedules a fetch
// for every stage that is eligible under the current filter state and has
// no fresh result. Idempotent and cheap: running it twice schedules nothing
// the second time, because pending entries gate re-enqueueing.
func (p *Pipeline) Resolve(ctx context.Context) {
	p.mu.RLock()
	st := p.state
	started := p.started
	p.mu.RUnlock()

	if !started {
		return
	}

	succeeded := func(s stage.Stage) bool {
		e, ok := p.store.Get(ctx, stage.Key(s, st))
		return ok && e.Status == cache.StatusSuccess
	}

	now := time.Now()
	for _, s := range stage.Order {
		if !stage.Eligible(s, st, succeeded) {
			continue
		}
		key := stage.Key(s, st)
		if e, ok := p.store.Get(ctx, key); ok {
			if e.Status == cache.StatusPending {
				continue
			}
			if e.Fresh(now, p.freshnessFor(s)) {
				continue
			}
			// Failed entries wait for an explicit retry or the sweep; a
			// resolve pass never hammers a failing endpoint on its own.
			if e.Status == cache.StatusError {
				continue
			}
		}
		p.schedule(ctx, s, key, st)
	}
}

// schedule marks key pending and enqueues its fetch job. The pending mark is
// the dedup gate: exactly one job per key is ever in flight.
func (p *Pipeline) schedule(ctx context.Context, s stage.Stage, key string, st filters.State) {
	if !p.store.MarkPending(ctx, key) {
		return
	}

	j := model.FetchJob{
		Stage: s,
		Key:   key,
		State: st,
	}
	if s == stage.Ranking || s == stage.LocationBreakdown {
		j.Metric = p.resolveMetric(ctx, st)
	}

	if !p.fetchQueue.Enqueue(ctx, j) {
		p.store.Fail(ctx, key, ErrQueueFull)
		p.logger.Warn(ctx, "fetch job dropped",
			logger.String("stage", string(s)),
			logger.String("key", key),
		)
		return
	}
	p.logger.Debug(ctx, "fetch scheduled",
		logger.String("stage", string(s)),
		logger.String("key", key),
	)
}

// resolveMetric maps the selected dataset label to its backend metric token
// via the cached filter catalogue. Falls back to the label itself when the
// catalogue has no entry for it.
func (p *Pipeline) resolveMetric(ctx context.Context, st filters.State) string {
	if st.Dataset == "" {
		return ""
	}
	e, ok := p.store.Get(ctx, stage.Key(stage.Filters, st))
	if ok && e.Status == cache.StatusSuccess {
		if cat, ok := e.Value.(model.FilterCatalogue); ok {
			for _, opt := range cat.DatasetOptions {
				if opt.Label == st.Dataset {
					return opt.Metric
				}
			}
		}
	}
	return st.Dataset
}

// Fetch resolves one job against the gateway. Jobs are deduplicated by key
// before scheduling, but a retry racing an in-flight fetch can still produce
// two jobs for the same key; singleflight collapses those into one call.
func (p *Pipeline) Fetch(ctx context.Context, j workerpool.Job) (any, error) {
	v, err, _ := p.flight.Do(j.Key, func() (any, error) {
		return gateway.Fetch(ctx, p.gw, j.Stage, j.State, j.Metric)
	})
	return v, err
}

// CommitSuccess stores a fetch result under the key it was scheduled for.
// The data is always correct for its own key, so it is always written; what
// a stale arrival must never do is trigger bootstrap or downstream fetches
// for a state the user has already left.
func (p *Pipeline) CommitSuccess(ctx context.Context, j workerpool.Job, value any) {
	p.store.Complete(ctx, j.Key, value)

	p.mu.RLock()
	current := stage.Key(j.Stage, p.state)
	p.mu.RUnlock()

	if j.Key != current {
		metrics.RecordStaleDiscard()
		p.logger.Debug(ctx, "stale result discarded",
			logger.String("stage", string(j.Stage)),
			logger.String("key", j.Key),
		)
		return
	}

	if j.Stage == stage.Filters {
		if cat, ok := value.(model.FilterCatalogue); ok {
			p.maybeBootstrap(ctx, cat)
		}
	}

	// Downstream stages may have become eligible.
	p.Resolve(ctx)
}

// CommitFailure records a fetch error under the job's key. The error stays
// local to that entry; sibling stages keep whatever they have.
func (p *Pipeline) CommitFailure(ctx context.Context, j workerpool.Job, err error) {
	p.store.Fail(ctx, j.Key, err)
	metrics.RecordErrorByComponent("pipeline", "stage_fetch")
}

// maybeBootstrap applies the default dataset after the first successful
// catalogue fetch. It runs at most once per pipeline instance and never
// overrides a dataset the user picked, even one picked while the catalogue
// fetch was still in flight.
func (p *Pipeline) maybeBootstrap(ctx context.Context, cat model.FilterCatalogue) {
	p.mu.Lock()
	if p.bootstrapped {
		p.mu.Unlock()
		return
	}
	p.bootstrapped = true

	if p.userChoseDataset || p.state.Dataset != "" || len(cat.DatasetOptions) == 0 {
		p.mu.Unlock()
		return
	}
	p.state.Dataset = cat.DatasetOptions[0].Label
	applied := p.state.Dataset
	p.mu.Unlock()

	metrics.RecordBootstrapApplied()
	p.logger.Info(ctx, "default dataset applied",
		logger.String("dataset", applied),
	)
}
