// Package worker persists generated meal plans and publishes plan events off
// the chat hot path.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/papercomputeco/mealprep/pkg/eventstream"
	"github.com/papercomputeco/mealprep/pkg/storage"
)

var (
	defaultNumWorkers   uint = 2
	defaultJobQueueSize uint = 64
)

// Job is a plan waiting to be stored and announced.
type Job struct {
	Source   eventstream.Source
	Markdown string
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver stores the plan.
	Driver storage.Driver

	// Publisher is optional. A nil Publisher skips event emission.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 64).
	QueueSize uint

	Logger *slog.Logger

	// OnStored is called after each plan is saved. Used by tests and the
	// chat command to learn the assigned plan id.
	OnStored func(*storage.Plan)
}

// Pool processes plan jobs asynchronously.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	closeOnce sync.Once
}

// NewPool creates a Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, fmt.Errorf("worker pool requires a storage driver")
	}
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}
	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job. Returns false when the queue is full and the job
// was dropped.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("plan queued", "session_id", job.Source.SessionID)
		return true
	default:
		p.logger.Error("plan not queued, queue full, job dropped", "session_id", job.Source.SessionID)
		return false
	}
}

// Close stops the workers after in-flight jobs drain. Enqueue must not be
// called after Close.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
		p.wg.Wait()
	})
}

func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	plan := &storage.Plan{
		SessionID: job.Source.SessionID,
		UserID:    job.Source.UserID,
		Markdown:  job.Markdown,
	}
	if err := p.config.Driver.SavePlan(ctx, plan); err != nil {
		p.logger.Error("storing plan failed", "session_id", plan.SessionID, "error", err)
		return
	}
	p.logger.Info("plan stored", "plan_id", plan.ID, "session_id", plan.SessionID)

	if p.config.OnStored != nil {
		p.config.OnStored(plan)
	}

	if p.config.Publisher == nil {
		return
	}

	event := eventstream.NewPlanGeneratedEvent(job.Source, plan.ID, plan.Markdown)
	if err := p.config.Publisher.PublishPlan(ctx, event); err != nil {
		// The plan is already stored; a lost event is logged, not retried.
		p.logger.Warn("publishing plan event failed", "plan_id", plan.ID, "error", err)
		return
	}
	p.logger.Debug("plan event published", "event_id", event.EventID)
}
