package postgres

import (
	"context"
	"errors"

	"go-resume-screener/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const jobColumns = `id, title, company, location, description, requirements, skills_required, experience_required, education_required, active, created_by, created_at, updated_at`

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

func scanJob(row scanner) (*domain.Job, error) {
	var (
		job       domain.Job
		skills    []string
		education []string
	)
	err := row.Scan(
		&job.ID, &job.Title, &job.Company, &job.Location, &job.Description, &job.Requirements,
		pq.Array(&skills), &job.ExperienceRequired, pq.Array(&education), &job.Active, &job.CreatedBy,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	job.SkillsRequired = skills
	job.EducationRequired = education
	return &job, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	query := `INSERT INTO jobs (title, company, location, description, requirements, skills_required, experience_required, education_required, active, created_by, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6::text[], $7, $8::text[], $9, $10, $11, $12) RETURNING id`
	return r.db.QueryRow(ctx, query,
		job.Title, job.Company, job.Location, job.Description, job.Requirements,
		pq.Array(nonNil(job.SkillsRequired)), job.ExperienceRequired, pq.Array(nonNil(job.EducationRequired)),
		job.Active, job.CreatedBy, job.CreatedAt, job.UpdatedAt,
	).Scan(&job.ID)
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

func (r *jobRepo) Fetch(ctx context.Context, limit, offset int, includeInactive bool) ([]domain.Job, int64, error) {
	where := ` WHERE active`
	if includeInactive {
		where = ``
	}
	query := `SELECT ` + jobColumns + ` FROM jobs` + where + ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`+where).Scan(&total); err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (r *jobRepo) Update(ctx context.Context, job *domain.Job) error {
	query := `UPDATE jobs SET title = $2, company = $3, location = $4, description = $5, requirements = $6,
                  skills_required = $7::text[], experience_required = $8, education_required = $9::text[],
                  active = $10, updated_at = $11
              WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		job.ID, job.Title, job.Company, job.Location, job.Description, job.Requirements,
		pq.Array(nonNil(job.SkillsRequired)), job.ExperienceRequired, pq.Array(nonNil(job.EducationRequired)),
		job.Active, job.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Deactivate is a soft delete; ranked results and listings skip inactive jobs.
func (r *jobRepo) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE jobs SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
