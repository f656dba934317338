// Package worker provides an asynchronous worker pool that recomputes
// centrality rankings of medium-sized result sets and republishes them into
// the cache.
//
// The pool decouples the ranking from the request path so that a request
// can return unsorted results immediately while a later identical request
// finds the sorted order cached.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/folio/pkg/cache"
	"github.com/papercomputeco/folio/pkg/centrality"
	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/graph"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
	defaultJobTimeout        = 30 * time.Second
)

// Ranker orders a result set by centrality.
type Ranker interface {
	Rank(ctx context.Context, docs []document.Document, mode centrality.Mode, order graph.Order) ([]document.Document, centrality.Stats, error)
}

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	// ID identifies the job in logs. NewJob fills it.
	ID string

	// Key is the cache key the ranked ids are stored under.
	Key string

	Docs  []document.Document
	Mode  centrality.Mode
	Order graph.Order

	// TTL of the stored ranking.
	TTL time.Duration
}

// NewJob creates a Job with a fresh id.
func NewJob(key string, docs []document.Document, mode centrality.Mode, order graph.Order, ttl time.Duration) Job {
	return Job{
		ID:    uuid.NewString(),
		Key:   key,
		Docs:  docs,
		Mode:  mode,
		Order: order,
		TTL:   ttl,
	}
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Ranker computes the centrality order.
	Ranker Ranker

	// Cache receives the ranked ids.
	Cache cache.Cache

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// JobTimeout bounds one recomputation (defaults to 30s).
	JobTimeout time.Duration

	// Logger is the provided slog logger
	Logger *slog.Logger
}

// Pool processes recompute jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	closeOnce sync.Once
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Ranker == nil {
		return nil, fmt.Errorf("worker pool requires a ranker")
	}
	if c.Cache == nil {
		return nil, fmt.Errorf("worker pool requires a cache")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.JobTimeout <= 0 {
		c.JobTimeout = defaultJobTimeout
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			"job_id", job.ID,
			"key", job.Key,
			"documents", len(job.Docs),
		)
		return true
	default:
		p.logger.Warn("job not queued, queue full, job dropped",
			"job_id", job.ID,
			"key", job.Key,
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

// processJob ranks the job's documents and stores the ranked ids.
func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
	defer cancel()

	start := time.Now()
	ranked, stats, err := p.config.Ranker.Rank(ctx, job.Docs, job.Mode, job.Order)
	if err != nil {
		p.logger.Error("recompute failed",
			"job_id", job.ID,
			"key", job.Key,
			"error", err,
		)
		return
	}

	value, err := json.Marshal(document.IDs(ranked))
	if err != nil {
		p.logger.Error("encoding ranking failed", "job_id", job.ID, "error", err)
		return
	}

	if err := p.config.Cache.Set(ctx, job.Key, value, job.TTL); err != nil {
		p.logger.Error("publishing ranking failed",
			"job_id", job.ID,
			"key", job.Key,
			"error", err,
		)
		return
	}

	p.logger.Info("ranking recomputed",
		"job_id", job.ID,
		"key", job.Key,
		"mode", string(job.Mode),
		"documents", len(ranked),
		"truncated", stats.Truncated,
		"duration", time.Since(start),
	)
}
