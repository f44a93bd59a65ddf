package queue_test

import (
	"context"
	"testing"

	queue "github.com/stretchops/insight/internal/adapters/mq/queue"
	stage "github.com/stretchops/insight/internal/domain/stage"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))
		ctx := context.Background()

		job := func(key string) queue.Job {
			return queue.Job{Stage: stage.Audit, Key: key}
		}

		Convey("When jobs are enqueued within capacity", func() {
			So(q.Enqueue(ctx, job("a")), ShouldBeTrue)
			So(q.Enqueue(ctx, job("b")), ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 2)

			Convey("Then a third job is refused", func() {
				So(q.Enqueue(ctx, job("c")), ShouldBeFalse)
			})

			Convey("Then dequeue delivers in order", func() {
				ch := q.Dequeue(ctx)
				So((<-ch).Key, ShouldEqual, "a")
				So((<-ch).Key, ShouldEqual, "b")
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Close(), ShouldBeNil)
			So(q.IsClosed(), ShouldBeTrue)

			Convey("Then enqueue is refused", func() {
				So(q.Enqueue(ctx, job("x")), ShouldBeFalse)
			})

			Convey("Then closing again is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})

			Convey("Then the dequeue channel drains and closes", func() {
				ch := q.Dequeue(ctx)
				_, open := <-ch
				So(open, ShouldBeFalse)
			})
		})
	})
}
