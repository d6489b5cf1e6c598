package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BerylCAtieno/document-analyzer-api/internal/analyzer"
	"github.com/BerylCAtieno/document-analyzer-api/internal/models"
	"github.com/BerylCAtieno/document-analyzer-api/internal/repository"
	"github.com/BerylCAtieno/document-analyzer-api/internal/utils"
)

// ErrQueueFull is returned when the analysis queue cannot accept more work.
var ErrQueueFull = errors.New("analysis queue is full")

// ErrShuttingDown is returned when work arrives after shutdown started.
var ErrShuttingDown = errors.New("analysis runner is shutting down")

// Job is one pending document analysis. The document text is captured at
// enqueue time since document content is immutable.
type Job struct {
	AnalysisID   string
	DocumentID   string
	DocumentText string
	EnqueuedAt   time.Time
}

// WorkerMetrics receives analysis pipeline observations.
type WorkerMetrics interface {
	AnalysisStarted()
	AnalysisFinished(duration time.Duration, err error)
	ObserveQueueLag(lag time.Duration)
}

// Runner drives documents from the in-progress placeholder to a terminal
// analysis state. It is a bounded queue drained by a fixed worker pool, so
// failures, backpressure and shutdown draining are all observable.
type Runner struct {
	analyses repository.AnalysisRepository
	analyzer analyzer.Analyzer
	logger   *utils.Logger
	metrics  WorkerMetrics
	timeout  time.Duration

	jobs chan Job
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewRunner(analyses repository.AnalysisRepository, a analyzer.Analyzer, logger *utils.Logger, metrics WorkerMetrics, queueSize int, timeout time.Duration) *Runner {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Runner{
		analyses: analyses,
		analyzer: a,
		logger:   logger,
		metrics:  metrics,
		timeout:  timeout,
		jobs:     make(chan Job, queueSize),
	}
}

// Start launches the worker pool.
func (r *Runner) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
}

// Enqueue schedules a job without blocking the request path. A full queue is
// a hard failure the caller must surface as a failed analysis.
func (r *Runner) Enqueue(job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrShuttingDown
	}

	select {
	case r.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops intake and drains queued jobs until ctx expires.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.jobs)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) worker() {
	defer r.wg.Done()
	for job := range r.jobs {
		r.process(job)
	}
}

func (r *Runner) process(job Job) {
	if r.metrics != nil {
		r.metrics.ObserveQueueLag(time.Since(job.EnqueuedAt))
		r.metrics.AnalysisStarted()
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	result, err := r.analyzer.AnalyzeDocument(ctx, job.DocumentText)

	if r.metrics != nil {
		r.metrics.AnalysisFinished(time.Since(start), err)
	}

	if err != nil {
		// Terminal failure: the error is persisted into the summary and
		// never re-raised. key_topics keeps its placeholder value.
		r.logger.Error("Document analysis failed",
			"analysis_id", job.AnalysisID,
			"document_id", job.DocumentID,
			"error", err)

		failureText := models.AnalysisFailedPrefix + err.Error()
		if updateErr := r.analyses.UpdateSummary(context.Background(), job.AnalysisID, failureText); updateErr != nil {
			r.logger.Error("Failed to persist analysis failure",
				"analysis_id", job.AnalysisID,
				"error", updateErr)
		}
		return
	}

	if err := r.analyses.UpdateResult(context.Background(), job.AnalysisID, result.Summary, result.KeyTopics); err != nil {
		r.logger.Error("Failed to persist analysis result",
			"analysis_id", job.AnalysisID,
			"error", err)
		return
	}

	r.logger.Info("Document analysis completed",
		"analysis_id", job.AnalysisID,
		"document_id", job.DocumentID,
		"duration", time.Since(start).String(),
		"topics", len(result.KeyTopics))
}
