package postgres

import (
	"context"
	"errors"
	"time"

	"go-resume-screener/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, state, attempts, max_attempts, next_run_at, last_error, created_at, updated_at`

type taskRepo struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) domain.TaskRepository {
	return &taskRepo{db: db}
}

func scanTask(row scanner) (*domain.IngestionTask, error) {
	var t domain.IngestionTask
	var state string
	if err := row.Scan(&t.ID, &state, &t.Attempts, &t.MaxAttempts, &t.NextRunAt, &t.LastError, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.State = domain.TaskState(state)
	return &t, nil
}

func (r *taskRepo) Enqueue(ctx context.Context, task *domain.IngestionTask) error {
	now := time.Now()
	if task.NextRunAt.IsZero() {
		task.NextRunAt = now
	}
	if task.State == "" {
		task.State = domain.TaskQueued
	}
	query := `INSERT INTO ingestion_tasks (id, state, attempts, max_attempts, next_run_at, created_at, updated_at)
              VALUES ($1, $2, 0, $3, $4, $5, $5)`
	if _, err := r.db.Exec(ctx, query, task.ID, string(task.State), task.MaxAttempts, task.NextRunAt, now); err != nil {
		return err
	}
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

// ClaimNext picks the oldest due task, or a running task whose worker has
// gone quiet for longer than staleAfter. SKIP LOCKED keeps concurrent workers
// from claiming the same row. A reclaimed task can come back with attempts
// past max_attempts; the worker abandons it without running.
func (r *taskRepo) ClaimNext(ctx context.Context, staleAfter time.Duration) (*domain.IngestionTask, error) {
	query := `
		UPDATE ingestion_tasks
		SET state = 'running', attempts = attempts + 1, updated_at = NOW()
		WHERE id = (
			SELECT id FROM ingestion_tasks
			WHERE (state IN ('queued', 'retrying') AND next_run_at <= NOW())
			   OR (state = 'running' AND updated_at < NOW() - make_interval(secs => $1))
			ORDER BY next_run_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + taskColumns

	task, err := scanTask(r.db.QueryRow(ctx, query, staleAfter.Seconds()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepo) GetByID(ctx context.Context, id string) (*domain.IngestionTask, error) {
	task, err := scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM ingestion_tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepo) MarkSucceeded(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE ingestion_tasks SET state = 'succeeded', last_error = NULL, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *taskRepo) MarkRetry(ctx context.Context, id string, nextRunAt time.Time, lastErr string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE ingestion_tasks SET state = 'retrying', next_run_at = $2, last_error = $3, updated_at = NOW() WHERE id = $1`,
		id, nextRunAt, lastErr)
	return err
}

func (r *taskRepo) MarkAbandoned(ctx context.Context, id string, lastErr string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE ingestion_tasks SET state = 'abandoned', last_error = $2, updated_at = NOW() WHERE id = $1`,
		id, lastErr)
	return err
}

func (r *taskRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM ingestion_tasks WHERE id = $1`, id)
	return err
}
