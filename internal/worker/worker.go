// Package worker runs queued ingestion tasks with bounded retries.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-resume-screener/internal/domain"
	"go-resume-screener/pkg/logger"
	"go-resume-screener/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var errWorkerLost = errors.New("worker lost during the final attempt")

type Config struct {
	Concurrency  int
	PollInterval time.Duration
	StaleAfter   time.Duration
	Retry        domain.RetryPolicy
}

type Pool struct {
	tasks     domain.TaskRepository
	signal    domain.TaskSignal
	ingestion domain.IngestionUsecase
	cfg       Config
	log       *logger.Logger
	now       func() time.Time
}

func NewPool(tasks domain.TaskRepository, signal domain.TaskSignal, ingestion domain.IngestionUsecase, cfg Config, log *logger.Logger) *Pool {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 15 * time.Minute
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = domain.DefaultRetryPolicy()
	}
	return &Pool{
		tasks:     tasks,
		signal:    signal,
		ingestion: ingestion,
		cfg:       cfg,
		log:       log.With("component", "worker"),
		now:       time.Now,
	}
}

// Run blocks until ctx is cancelled and every loop has returned.
func (p *Pool) Run(ctx context.Context) error {
	p.log.Info("Starting ingestion worker pool", "concurrency", p.cfg.Concurrency)

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.runLoop(ctx, workerID)
		}(i + 1)
	}
	wg.Wait()
	return nil
}

func (p *Pool) runLoop(ctx context.Context, workerID int) {
	log := p.log.With("worker_id", workerID)
	for {
		if ctx.Err() != nil {
			log.Info("Worker loop stopped")
			return
		}

		claimed, err := p.RunOnce(ctx)
		if err != nil && ctx.Err() == nil {
			log.Warn("claim failed", "error", err)
		}
		if claimed {
			continue
		}

		// Idle: wait for a wake-up or the next poll tick.
		if _, err := p.signal.Wait(ctx, p.cfg.PollInterval); err != nil && ctx.Err() == nil {
			log.Debug("wake-up wait failed", "error", err)
			sleep(ctx, p.cfg.PollInterval)
		}
	}
}

// RunOnce claims and runs at most one task. It reports whether a task was
// claimed.
func (p *Pool) RunOnce(ctx context.Context) (bool, error) {
	task, err := p.tasks.ClaimNext(ctx, p.cfg.StaleAfter)
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, nil
	}
	p.handle(ctx, task)
	return true, nil
}

func (p *Pool) handle(ctx context.Context, task *domain.IngestionTask) {
	ctx, span := tracing.Tracer().Start(ctx, "worker.task")
	defer span.End()
	span.SetAttributes(
		attribute.String("task.id", task.ID),
		attribute.Int("task.attempt", task.Attempts),
	)

	log := p.log.With("task_id", task.ID, "attempt", task.Attempts)

	policy := p.cfg.Retry
	if task.MaxAttempts > 0 {
		policy.MaxAttempts = task.MaxAttempts
	}

	// A stale reclaim bumps attempts even when the lost run was the last one.
	if policy.MaxAttempts > 0 && task.Attempts > policy.MaxAttempts {
		log.Warn("abandoning task reclaimed after its final attempt")
		if err := p.tasks.MarkAbandoned(ctx, task.ID, errWorkerLost.Error()); err != nil {
			log.Error("failed to mark task abandoned", "error", err)
		}
		return
	}

	runErr := p.process(ctx, task.ID)
	if runErr == nil {
		if err := p.tasks.MarkSucceeded(ctx, task.ID); err != nil {
			log.Error("failed to mark task succeeded", "error", err)
		}
		return
	}

	span.RecordError(runErr)
	span.SetStatus(codes.Error, runErr.Error())

	if terminal(runErr) || policy.Exhausted(task.Attempts) {
		log.Warn("abandoning task", "error", runErr)
		if err := p.tasks.MarkAbandoned(ctx, task.ID, runErr.Error()); err != nil {
			log.Error("failed to mark task abandoned", "error", err)
		}
		return
	}

	delay := policy.Backoff(task.Attempts)
	log.Info("task will be retried", "error", runErr, "retry_in", delay.String())
	if err := p.tasks.MarkRetry(ctx, task.ID, p.now().Add(delay), runErr.Error()); err != nil {
		log.Error("failed to schedule retry", "error", err)
	}
}

// process runs the pipeline and turns a panic into an error.
func (p *Pool) process(ctx context.Context, taskID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("Task panic", "task_id", taskID, "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.ingestion.Process(ctx, taskID)
}

// terminal errors leave nothing to retry: the document is gone, either
// deleted outright or by indexing compensation.
func terminal(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrIndexingFailure)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
