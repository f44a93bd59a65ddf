package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/stretchops/insight/internal/adapters/mq/queue"
	worker "github.com/stretchops/insight/internal/adapters/mq/worker"
	stage "github.com/stretchops/insight/internal/domain/stage"
	"github.com/stretchops/insight/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, j worker.Job) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return "payload:" + j.Key, nil
}

type recordingCommitter struct {
	mu        sync.Mutex
	successes map[string]any
	failures  map[string]error
	notify    chan struct{}
}

func newRecordingCommitter() *recordingCommitter {
	return &recordingCommitter{
		successes: make(map[string]any),
		failures:  make(map[string]error),
		notify:    make(chan struct{}, 16),
	}
}

func (c *recordingCommitter) CommitSuccess(ctx context.Context, j worker.Job, value any) {
	c.mu.Lock()
	c.successes[j.Key] = value
	c.mu.Unlock()
	c.notify <- struct{}{}
}

func (c *recordingCommitter) CommitFailure(ctx context.Context, j worker.Job, err error) {
	c.mu.Lock()
	c.failures[j.Key] = err
	c.mu.Unlock()
	c.notify <- struct{}{}
}

func (c *recordingCommitter) wait(n int) bool {
	for i := 0; i < n; i++ {
		select {
		case <-c.notify:
		case <-time.After(2 * time.Second):
			return false
		}
	}
	return true
}

func TestWorkerPool(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}

	Convey("Given a pool of two workers over a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		fetcher := &fakeFetcher{}
		committer := newRecordingCommitter()
		pool := worker.NewPool(2, q, fetcher, committer)
		pool.Start(ctx)

		Convey("When jobs are enqueued", func() {
			So(q.Enqueue(ctx, worker.Job{Stage: stage.Audit, Key: "k1"}), ShouldBeTrue)
			So(q.Enqueue(ctx, worker.Job{Stage: stage.Ranking, Key: "k2"}), ShouldBeTrue)

			Convey("Then each outcome is committed once", func() {
				So(committer.wait(2), ShouldBeTrue)
				committer.mu.Lock()
				defer committer.mu.Unlock()
				So(committer.successes["k1"], ShouldEqual, "payload:k1")
				So(committer.successes["k2"], ShouldEqual, "payload:k2")
				So(committer.failures, ShouldBeEmpty)
			})
		})

		Convey("When the fetch fails", func() {
			fetcher.err = errors.New("backend 503")
			So(q.Enqueue(ctx, worker.Job{Stage: stage.Filters, Key: "bad"}), ShouldBeTrue)

			Convey("Then the failure is committed, not dropped", func() {
				So(committer.wait(1), ShouldBeTrue)
				committer.mu.Lock()
				defer committer.mu.Unlock()
				So(committer.failures["bad"], ShouldNotBeNil)
			})
		})

		Convey("When the pool stops", func() {
			pool.Stop()
			// Stopping twice must not panic workers that already exited.
			So(func() { cancel() }, ShouldNotPanic)
		})
	})
}
