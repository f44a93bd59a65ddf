// Package worker runs the fetch workers that resolve pending stage queries
// against the backend gateway.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchops/insight/internal/adapters/mq/queue"
	"github.com/stretchops/insight/pkg/logger"
	"github.com/stretchops/insight/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 4
	workerShutdownTimeout = 5 * time.Second
)

// Job abstracts what workers read off the queue.
type Job = queue.Job

// Fetcher performs one stage fetch for a scheduled job.
type Fetcher interface {
	Fetch(ctx context.Context, j Job) (any, error)
}

// Committer receives fetch outcomes. The implementation decides whether a
// result is still wanted (the job's key may have been superseded) and writes
// the cache accordingly.
type Committer interface {
	CommitSuccess(ctx context.Context, j Job, value any)
	CommitFailure(ctx context.Context, j Job, err error)
}

// JobSource defines how workers receive jobs.
type JobSource interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes fetch jobs until stopped.
type Worker struct {
	source    JobSource
	fetcher   Fetcher
	committer Committer
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(source JobSource, fetcher Fetcher, committer Committer, opts ...Option) *Worker {
	w := &Worker{
		source:    source,
		fetcher:   fetcher,
		committer: committer,
		name:      "fetcher",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop until ctx is canceled or the source closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, j)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process resolves one job and hands the outcome to the committer.
func (w *Worker) process(ctx context.Context, j Job) {
	start := time.Now()
	value, err := w.fetcher.Fetch(ctx, j)
	latency := float64(time.Since(start).Milliseconds())

	metrics.RecordStageFetchLatency(string(j.Stage), latency)
	metrics.RecordWorkerProcessingLatency(latency)

	if err != nil {
		metrics.RecordStageFetchError(string(j.Stage))
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "fetch_error")
		w.logger.Error(ctx, "stage fetch failed",
			logger.String("stage", string(j.Stage)),
			logger.String("key", j.Key),
			logger.Error(err),
		)
		w.committer.CommitFailure(ctx, j, err)
		return
	}

	metrics.RecordStageFetch(string(j.Stage))
	w.committer.CommitSuccess(ctx, j, value)
}

// Pool manages a fixed set of fetch workers.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers over the same source.
func NewPool(workerCount int, source JobSource, fetcher Fetcher, committer Committer) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		logger:  logger.Get().Named("fetch-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(source, fetcher, committer,
			WithName(fmt.Sprintf("fetcher-%d", i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop signals all workers and waits briefly for each to finish.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		select {
		case <-w.shutdown:
		default:
			close(w.shutdown)
		}
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}
