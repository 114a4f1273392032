// Package background runs fire-and-forget side effects off the request
// path with bounded concurrency. Failures are logged and counted; they
// are never surfaced to the request that enqueued them.
package background

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/snowskye/lead-gateway/pkg/logger"
	"github.com/snowskye/lead-gateway/pkg/metrics"
)

// jobTimeout bounds a single background job.
const jobTimeout = 10 * time.Second

type job struct {
	name string
	fn   func(ctx context.Context) error
}

// Pool is a fixed-size worker pool over a bounded queue. A full queue
// drops the job rather than blocking the caller.
type Pool struct {
	jobs   chan job
	wg     sync.WaitGroup
	logger *logger.Logger

	closeOnce sync.Once
}

// NewPool starts a pool with the given worker count and queue size.
func NewPool(workers, queueSize int, log *logger.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	p := &Pool{
		jobs:   make(chan job, queueSize),
		logger: log,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit enqueues a job without blocking. When the queue is full the job
// is dropped with a log entry and a metric.
func (p *Pool) Submit(name string, fn func(ctx context.Context) error) {
	select {
	case p.jobs <- job{name: name, fn: fn}:
		metrics.BackgroundQueueDepth.Set(float64(len(p.jobs)))
	default:
		p.logger.Warn("background queue full, dropping job", zap.String("job", name))
		metrics.BackgroundJobsTotal.WithLabelValues(name, "dropped").Inc()
	}
}

// Close stops accepting work and waits for queued jobs to drain.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for j := range p.jobs {
		p.run(j)
		metrics.BackgroundQueueDepth.Set(float64(len(p.jobs)))
	}
}

func (p *Pool) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("background job panicked",
				zap.String("job", j.name),
				zap.Any("panic", r),
			)
			metrics.BackgroundJobsTotal.WithLabelValues(j.name, "panic").Inc()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := j.fn(ctx); err != nil {
		p.logger.Error("background job failed",
			zap.String("job", j.name),
			zap.Error(err),
		)
		metrics.BackgroundJobsTotal.WithLabelValues(j.name, "error").Inc()
		return
	}
	metrics.BackgroundJobsTotal.WithLabelValues(j.name, "ok").Inc()
}
