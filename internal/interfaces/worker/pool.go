package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	jobTracer          = otel.Tracer("dynamite/worker")
	jobMeter           = otel.Meter("dynamite/worker")
	jobDuration, _     = jobMeter.Float64Histogram("worker.job.duration", metric.WithDescription("Job execution duration in seconds"), metric.WithUnit("s"))
	jobTotal, _        = jobMeter.Int64Counter("worker.job.total", metric.WithDescription("Total jobs executed by status"))
	jobQueueDropped, _ = jobMeter.Int64Counter("worker.job.queue_dropped", metric.WithDescription("Jobs dropped due to full queue"))
)

// ErrQueueFull is returned by Submit when the queue has no free slot
var ErrQueueFull = errors.New("job queue full")

// Job is one unit of background work scoped to an account
type Job interface {
	Execute(ctx context.Context) error
	AccountID() string
	Description() string
}

// Pool runs jobs on a fixed number of goroutines
type Pool struct {
	workerCount int
	jobDelay    time.Duration
	jobTimeout  time.Duration
	jobs        chan Job
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *zap.Logger
}

// NewPool creates a pool.
// workerCount: number of concurrent workers
// jobDelay: pause after each job, per worker
// queueSize: buffer size of the job channel
func NewPool(workerCount int, jobDelay time.Duration, queueSize int, logger *zap.Logger) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workerCount: workerCount,
		jobDelay:    jobDelay,
		jobTimeout:  2 * time.Minute,
		jobs:        make(chan Job, queueSize),
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// Start launches the worker goroutines
func (p *Pool) Start() {
	p.logger.Info("starting worker pool", zap.Int("workers", p.workerCount))

	for i := 1; i <= p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return

		case job, ok := <-p.jobs:
			if !ok {
				return
			}

			p.processJob(id, job)

			if p.jobDelay > 0 {
				select {
				case <-time.After(p.jobDelay):
				case <-p.ctx.Done():
					return
				}
			}
		}
	}
}

func (p *Pool) processJob(workerID int, job Job) {
	log := p.logger.With(
		zap.Int("worker", workerID),
		zap.String("job", job.Description()),
		zap.String("account_id", job.AccountID()),
	)

	ctx, cancel := context.WithTimeout(p.ctx, p.jobTimeout)
	defer cancel()

	ctx, span := jobTracer.Start(ctx, "job.execute",
		trace.WithAttributes(
			attribute.Int("worker.id", workerID),
			attribute.String("job.description", job.Description()),
			attribute.String("job.account_id", job.AccountID()),
		),
	)
	defer span.End()

	start := time.Now()

	if err := job.Execute(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		jobTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "error")))
		jobDuration.Record(ctx, time.Since(start).Seconds())
		log.Error("job failed", zap.Error(err))
		return
	}

	jobTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "success")))
	jobDuration.Record(ctx, time.Since(start).Seconds())
	log.Debug("job completed", zap.Duration("duration", time.Since(start)))
}

// Submit queues a job without blocking. A full queue drops the job with ErrQueueFull.
func (p *Pool) Submit(job Job) error {
	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.jobs <- job:
		return nil
	default:
		jobQueueDropped.Add(context.Background(), 1)
		p.logger.Warn("job queue full, dropping job", zap.String("account_id", job.AccountID()))
		return ErrQueueFull
	}
}

// Enqueue queues a job, waiting for a free slot until ctx is done
func (p *Pool) Enqueue(ctx context.Context, job Job) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.jobs <- job:
		return nil
	}
}

// Shutdown closes the queue and waits for queued jobs to finish
func (p *Pool) Shutdown() {
	close(p.jobs)
	p.wg.Wait()
	p.cancel()
	p.logger.Info("worker pool stopped")
}

// ShutdownWithTimeout is Shutdown that cancels running jobs once timeout passes
func (p *Pool) ShutdownWithTimeout(timeout time.Duration) {
	close(p.jobs)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped")
	case <-time.After(timeout):
		p.logger.Warn("worker pool shutdown timed out, cancelling jobs", zap.Duration("timeout", timeout))
		p.cancel()
		<-done
	}
	p.cancel()
}
