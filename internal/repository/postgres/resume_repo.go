package postgres

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go-resume-screener/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const resumeColumns = `r.id, r.candidate_id, r.document_ref, r.filename, r.skills, r.experience_years, r.education, r.raw_text, r.active, r.created_at, r.updated_at`

type resumeRepo struct {
	db *pgxpool.Pool
}

func NewResumeRepository(db *pgxpool.Pool) domain.ResumeRepository {
	return &resumeRepo{db: db}
}

func scanResume(row scanner) (*domain.Resume, error) {
	var (
		res       domain.Resume
		skills    []string
		education []byte
	)
	err := row.Scan(
		&res.ID, &res.CandidateID, &res.DocumentRef, &res.Filename, pq.Array(&skills),
		&res.ExperienceYears, &education, &res.RawText, &res.Active, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.Skills = skills
	if len(education) > 0 {
		if err := json.Unmarshal(education, &res.Education); err != nil {
			return nil, err
		}
	}
	return &res, nil
}

// Upsert keys on document_ref so a retried ingestion task overwrites the row
// left by an earlier attempt instead of adding a second one.
func (r *resumeRepo) Upsert(ctx context.Context, resume *domain.Resume) error {
	education := resume.Education
	if education == nil {
		education = []domain.EducationEntry{}
	}
	eduJSON, err := json.Marshal(education)
	if err != nil {
		return err
	}
	skills := resume.Skills
	if skills == nil {
		skills = []string{}
	}

	now := time.Now()
	query := `
		INSERT INTO resumes (candidate_id, document_ref, filename, skills, experience_years, education, raw_text, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4::text[], $5, $6::jsonb, $7, TRUE, $8, $8)
		ON CONFLICT (document_ref) DO UPDATE SET
			candidate_id = EXCLUDED.candidate_id,
			filename = EXCLUDED.filename,
			skills = EXCLUDED.skills,
			experience_years = EXCLUDED.experience_years,
			education = EXCLUDED.education,
			raw_text = EXCLUDED.raw_text,
			updated_at = EXCLUDED.updated_at
		RETURNING id, active, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		resume.CandidateID, resume.DocumentRef, resume.Filename, pq.Array(skills),
		resume.ExperienceYears, string(eduJSON), resume.RawText, now,
	).Scan(&resume.ID, &resume.Active, &resume.CreatedAt, &resume.UpdatedAt)
}

func (r *resumeRepo) GetByIDs(ctx context.Context, ids []int64, activeOnly bool) (map[int64]*domain.Resume, error) {
	out := make(map[int64]*domain.Resume, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `SELECT ` + resumeColumns + ` FROM resumes r WHERE r.id = ANY($1::bigint[])`
	if activeOnly {
		query += ` AND r.active`
	}
	rows, err := r.db.Query(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out[res.ID] = res
	}
	return out, rows.Err()
}

func (r *resumeRepo) ListByCandidate(ctx context.Context, candidateID int64) ([]domain.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes r WHERE r.candidate_id = $1 ORDER BY r.created_at DESC`
	return r.list(ctx, query, candidateID)
}

func (r *resumeRepo) ListActive(ctx context.Context) ([]domain.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes r WHERE r.active ORDER BY r.id`
	return r.list(ctx, query)
}

// SearchText is a case-insensitive substring match over the extracted text.
func (r *resumeRepo) SearchText(ctx context.Context, q string, limit int) ([]domain.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes r
              WHERE r.active AND r.raw_text ILIKE '%' || $1 || '%'
              ORDER BY r.id LIMIT $2`
	return r.list(ctx, query, escapeLike(q), limit)
}

func (r *resumeRepo) list(ctx context.Context, query string, args ...any) ([]domain.Resume, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resumes []domain.Resume
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, *res)
	}
	return resumes, rows.Err()
}

func (r *resumeRepo) CountByCandidate(ctx context.Context, candidateID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM resumes WHERE candidate_id = $1`, candidateID).Scan(&n)
	return n, err
}

// SearchSkillsExact returns each candidate having an active resume whose skill
// set overlaps terms.
func (r *resumeRepo) SearchSkillsExact(ctx context.Context, terms []string, limit int) ([]domain.SkillMatch, error) {
	query := `
		SELECT DISTINCT ON (c.id)
			c.id, c.name, c.email, c.phone, c.location, c.created_at, c.updated_at, r.skills, 0::float8
		FROM resumes r
		JOIN candidates c ON c.id = r.candidate_id
		WHERE r.active AND r.skills && $1::text[]
		ORDER BY c.id, r.created_at DESC
		LIMIT $2`
	return r.skillMatches(ctx, query, pq.Array(terms), limit)
}

// SearchSkillsFuzzy ranks candidates by trigram similarity between their
// pipe-joined skills and the pipe-joined terms.
func (r *resumeRepo) SearchSkillsFuzzy(ctx context.Context, terms []string, threshold float64, limit int) ([]domain.SkillMatch, error) {
	query := `
		SELECT id, name, email, phone, location, created_at, updated_at, skills, sim FROM (
			SELECT DISTINCT ON (c.id)
				c.id, c.name, c.email, c.phone, c.location, c.created_at, c.updated_at, r.skills,
				similarity(array_to_string(r.skills, '|'), $1)::float8 AS sim
			FROM resumes r
			JOIN candidates c ON c.id = r.candidate_id
			WHERE r.active
			ORDER BY c.id, sim DESC
		) best
		WHERE sim > $2
		ORDER BY sim DESC, id
		LIMIT $3`
	return r.skillMatches(ctx, query, strings.Join(terms, "|"), threshold, limit)
}

func (r *resumeRepo) skillMatches(ctx context.Context, query string, args ...any) ([]domain.SkillMatch, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.SkillMatch
	for rows.Next() {
		var (
			m      domain.SkillMatch
			skills []string
		)
		if err := rows.Scan(
			&m.Candidate.ID, &m.Candidate.Name, &m.Candidate.Email, &m.Candidate.Phone, &m.Candidate.Location,
			&m.Candidate.CreatedAt, &m.Candidate.UpdatedAt, pq.Array(&skills), &m.Similarity,
		); err != nil {
			return nil, err
		}
		m.Skills = skills
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *resumeRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	return err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
