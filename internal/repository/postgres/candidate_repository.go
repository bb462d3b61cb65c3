package postgres

import (
	"context"
	"errors"
	"time"

	"go-resume-screener/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const candidateColumns = `id, name, email, phone, location, created_at, updated_at`

type candidateRepository struct {
	db *pgxpool.Pool
}

func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepository{db: db}
}

func scanCandidate(row scanner) (*domain.Candidate, error) {
	var c domain.Candidate
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Location, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *candidateRepository) Create(ctx context.Context, candidate *domain.Candidate) error {
	now := time.Now()
	query := `INSERT INTO candidates (name, email, phone, location, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`
	err := r.db.QueryRow(ctx, query,
		candidate.Name, candidate.Email, candidate.Phone, candidate.Location, now,
	).Scan(&candidate.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	candidate.CreatedAt = now
	candidate.UpdatedAt = now
	return nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id int64) (*domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`
	c, err := scanCandidate(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *candidateRepository) GetByEmail(ctx context.Context, email string) (*domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE email = $1`
	c, err := scanCandidate(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *candidateRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Candidate, error) {
	out := make(map[int64]*domain.Candidate, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = ANY($1::bigint[])`
	rows, err := r.db.Query(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out[c.ID] = c
	}
	return out, rows.Err()
}

func (r *candidateRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	return err
}
