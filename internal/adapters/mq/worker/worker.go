// Package worker executes refresh jobs off the request path.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/punchclock/internal/adapters/mq/queue"
	"github.com/okian/punchclock/internal/domain/model"
	"github.com/okian/punchclock/pkg/logger"
	"github.com/okian/punchclock/pkg/metrics"
)

const (
	defaultWorkerCount    = 2
	workerShutdownTimeout = 5 * time.Second
)

// Job is what workers read off the queue.
type Job = queue.Job

// Processor performs the terminal round trip and snapshot publish for a job.
type Processor interface {
	Process(ctx context.Context, job Job) model.RefreshResult
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// InMemoryWorker runs jobs one at a time.
type InMemoryWorker struct {
	queue     Queue
	processor Processor
	name      string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(q Queue, p Processor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		processor: p,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run processes jobs until ctx is cancelled, Shutdown is called or the queue
// closes.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs one job and always answers on its result channel.
func (w *InMemoryWorker) process(ctx context.Context, job Job) {
	start := time.Now()
	metrics.AddWorkerBusy(1)
	defer metrics.AddWorkerBusy(-1)

	result := w.processor.Process(ctx, job)
	result.JobID = job.ID
	result.Kind = job.Kind
	result.Duration = time.Since(start)

	metrics.RecordWorkerJobLatency(float64(result.Duration.Milliseconds()))
	if result.Err != nil {
		w.logger.Error(ctx, "refresh job failed",
			logger.String("job", job.ID.String()),
			logger.String("kind", string(job.Kind)),
			logger.Error(result.Err),
		)
	} else {
		w.logger.Debug(ctx, "refresh job done",
			logger.String("job", job.ID.String()),
			logger.String("kind", string(job.Kind)),
			logger.Duration("elapsed", result.Duration),
		)
	}

	select {
	case job.Result <- result:
	default:
		// Result already delivered; the slot holds one value.
	}
}

// Pool manages a fixed set of workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers.
func NewPool(workerCount int, q Queue, p Processor) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}
	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range pool.workers {
		pool.workers[i] = NewInMemoryWorker(q, p, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start runs every worker in its own goroutine.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop closes the queue and waits for the workers to finish.
func (p *Pool) Stop(ctx context.Context) {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, workerShutdownTimeout)
	defer cancel()
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
}
