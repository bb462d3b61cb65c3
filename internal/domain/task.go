package domain

import (
	"context"
	"time"
)

type TaskState string

const (
	TaskQueued    TaskState = "queued"
	TaskRunning   TaskState = "running"
	TaskRetrying  TaskState = "retrying"
	TaskSucceeded TaskState = "succeeded"
	TaskAbandoned TaskState = "abandoned"
)

// IngestionTask tracks one asynchronous pipeline run. Its id equals the
// RawDocument id.
type IngestionTask struct {
	ID          string    `json:"id"`
	State       TaskState `json:"state"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
	NextRunAt   time.Time `json:"next_run_at"`
	LastError   *string   `json:"last_error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RetryPolicy bounds how often a failed task is re-run. MaxAttempts counts the
// first run.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 4,
		BaseDelay:   10 * time.Second,
		MaxDelay:    5 * time.Minute,
	}
}

// Backoff returns the wait before the next run, given how many attempts have
// already been made (>= 1).
func (p RetryPolicy) Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	delay := p.BaseDelay
	for i := 1; i < attempts; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

func (p RetryPolicy) Exhausted(attempts int) bool {
	return attempts >= p.MaxAttempts
}

type TaskRepository interface {
	Enqueue(ctx context.Context, task *IngestionTask) error
	// ClaimNext marks the next runnable task as running and bumps its attempt
	// count. Returns (nil, nil) when nothing is runnable.
	ClaimNext(ctx context.Context, staleAfter time.Duration) (*IngestionTask, error)
	GetByID(ctx context.Context, id string) (*IngestionTask, error)
	MarkSucceeded(ctx context.Context, id string) error
	MarkRetry(ctx context.Context, id string, nextRunAt time.Time, lastErr string) error
	MarkAbandoned(ctx context.Context, id string, lastErr string) error
	Delete(ctx context.Context, id string) error
}

// TaskSignal wakes idle workers when a task is enqueued.
type TaskSignal interface {
	Notify(ctx context.Context, taskID string) error
	Wait(ctx context.Context, timeout time.Duration) (string, error)
}

type SubmitResult struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

type TaskStatus struct {
	TaskID      string    `json:"task_id"`
	Processed   bool      `json:"processed"`
	Error       *string   `json:"error,omitempty"`
	ResumeID    *int64    `json:"resume_id,omitempty"`
	CandidateID *int64    `json:"candidate_id,omitempty"`
	State       TaskState `json:"state,omitempty"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
}

type IngestionUsecase interface {
	Submit(ctx context.Context, filename string, data []byte) (*SubmitResult, error)
	Process(ctx context.Context, taskID string) error
	Status(ctx context.Context, taskID string) (*TaskStatus, error)
}
