// Package service provides the analytics pipeline: the one object owning
// the filter state and the stage cache, resolving the dependent-query graph
// against the backend gateway, and projecting view models for the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/stretchops/insight/internal/adapters/cache"
	"github.com/stretchops/insight/internal/adapters/gateway"
	eventqueue "github.com/stretchops/insight/internal/adapters/mq/queue"
	workerpool "github.com/stretchops/insight/internal/adapters/mq/worker"
	"github.com/stretchops/insight/internal/domain/filters"
	"github.com/stretchops/insight/internal/domain/stage"
	"github.com/stretchops/insight/internal/domain/transform"
	"github.com/stretchops/insight/pkg/logger"
)

// Default pipeline configuration constants.
const (
	defaultWorkerCount   = 4
	defaultQueueSize     = 1024
	defaultSweepInterval = time.Minute
	defaultCacheMaxAge   = 15 * time.Minute
)

// Pipeline owns the filter state, the stage cache, and the fetch plumbing.
// All mutation goes through named intents; everything else is a read.
type Pipeline struct {
	mu sync.RWMutex

	// Filter state and bootstrap tracking
	state            filters.State
	bootstrapped     bool
	userChoseDataset bool

	// Drilldown pagination, one pager per panel
	locPager  *transform.Pager
	flexPager *transform.Pager

	// Keys the pagers were last valid for
	lastDrillKey string

	// Core components
	store      cache.Store
	gw         gateway.Client
	fetchQueue eventqueue.Queue
	pool       *workerpool.Pool
	flight     singleflight.Group

	// Configuration
	workerCount   int
	queueSize     int
	pageSize      int
	sweepInterval time.Duration
	cacheMaxAge   time.Duration
	freshness     map[stage.Stage]time.Duration

	// State
	started bool
	stopCh  chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithGateway sets the backend gateway client.
func WithGateway(gw gateway.Client) Option {
	return func(p *Pipeline) {
		if gw != nil {
			p.gw = gw
		}
	}
}

// WithStore sets a custom cache store.
func WithStore(store cache.Store) Option {
	return func(p *Pipeline) {
		if store != nil {
			p.store = store
		}
	}
}

// WithWorkerCount sets the number of fetch workers.
func WithWorkerCount(count int) Option {
	return func(p *Pipeline) {
		if count > 0 {
			p.workerCount = count
		}
	}
}

// WithQueueSize sets the fetch queue capacity.
func WithQueueSize(size int) Option {
	return func(p *Pipeline) {
		if size > 0 {
			p.queueSize = size
		}
	}
}

// WithPageSize sets the drilldown page size.
func WithPageSize(size int) Option {
	return func(p *Pipeline) {
		if size > 0 {
			p.pageSize = size
		}
	}
}

// WithFreshness overrides one stage's freshness window.
func WithFreshness(s stage.Stage, window time.Duration) Option {
	return func(p *Pipeline) {
		if window > 0 {
			p.freshness[s] = window
		}
	}
}

// WithSweepInterval sets how often the cache sweep runs.
func WithSweepInterval(interval time.Duration) Option {
	return func(p *Pipeline) {
		if interval > 0 {
			p.sweepInterval = interval
		}
	}
}

// WithCacheMaxAge sets the age past which untouched entries are evicted.
func WithCacheMaxAge(age time.Duration) Option {
	return func(p *Pipeline) {
		if age > 0 {
			p.cacheMaxAge = age
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New constructs a Pipeline with default configuration. A gateway must be
// provided via WithGateway before Start.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		state:         filters.NewState(),
		workerCount:   defaultWorkerCount,
		queueSize:     defaultQueueSize,
		pageSize:      transform.DefaultPageSize,
		sweepInterval: defaultSweepInterval,
		cacheMaxAge:   defaultCacheMaxAge,
		freshness:     make(map[stage.Stage]time.Duration),
		stopCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.locPager = transform.NewPager(p.pageSize)
	p.flexPager = transform.NewPager(p.pageSize)
	return p
}

// Start wires the components and schedules the first resolve pass.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()

	if p.started {
		p.mu.Unlock()
		return nil
	}
	if p.gw == nil {
		p.mu.Unlock()
		return ErrNoGateway
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("pipeline")
	}
	if p.store == nil {
		p.store = cache.NewMemStore()
	}
	p.fetchQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(p.queueSize),
	)
	p.pool = workerpool.NewPool(p.workerCount, p.fetchQueue, p, p)
	p.pool.Start(ctx)
	p.started = true

	p.logger.Info(ctx, "analytics pipeline started",
		logger.Int("workers", p.workerCount),
		logger.Int("queueSize", p.queueSize),
		logger.Int("pageSize", p.pageSize),
	)
	p.mu.Unlock()

	go p.sweepLoop(ctx)
	p.Resolve(ctx)
	return nil
}

// Stop shuts the pipeline down. The lock is released before the pool drains
// so in-flight commits, which read pipeline state, can finish.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	pool := p.pool
	q := p.fetchQueue
	select {
	case <-p.stopCh:
	default:
		close(p.stopCh)
	}
	p.mu.Unlock()

	if pool != nil {
		pool.Stop()
	}
	if q != nil {
		_ = q.Close()
	}
	p.logger.Info(context.Background(), "analytics pipeline stopped")
}

// sweepLoop evicts aged cache entries and re-resolves so entries past their
// freshness window get re-fetched without waiting for an intent.
func (p *Pipeline) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(p.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			evicted := p.store.Sweep(ctx, p.cacheMaxAge)
			if evicted > 0 {
				p.logger.Debug(ctx, "cache sweep", logger.Int("evicted", evicted))
			}
			p.Resolve(ctx)
		}
	}
}

// State returns a snapshot of the current filter state.
func (p *Pipeline) State() filters.State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Stats is a point-in-time snapshot of pipeline health counters.
type Stats struct {
	Started          bool           `json:"started"`
	Workers          int            `json:"workers"`
	QueueCapacity    int            `json:"queue_capacity"`
	QueueLength      int            `json:"queue_length"`
	CacheEntries     int            `json:"cache_entries"`
	CacheByStatus    map[string]int `json:"cache_by_status,omitempty"`
	Bootstrapped     bool           `json:"bootstrapped"`
	UserChoseDataset bool           `json:"user_chose_dataset"`
	Dataset          string         `json:"dataset"`
}

// GetStats returns pipeline statistics for monitoring.
func (p *Pipeline) GetStats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ctx := context.Background()
	stats := Stats{
		Started:          p.started,
		Workers:          p.workerCount,
		QueueCapacity:    p.queueSize,
		Bootstrapped:     p.bootstrapped,
		UserChoseDataset: p.userChoseDataset,
		Dataset:          p.state.Dataset,
	}
	if p.started {
		stats.QueueLength = p.fetchQueue.Len(ctx)
		stats.CacheEntries = p.store.Len(ctx)
		stats.CacheByStatus = make(map[string]int)
		for status, n := range p.store.StatusCounts(ctx) {
			stats.CacheByStatus[string(status)] = n
		}
	}
	return stats
}

// freshnessFor returns the configured or default window for s.
func (p *Pipeline) freshnessFor(s stage.Stage) time.Duration {
	if w, ok := p.freshness[s]; ok {
		return w
	}
	return stage.Freshness(s)
}
