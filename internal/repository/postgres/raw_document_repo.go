package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-resume-screener/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rawDocumentRepo struct {
	db *pgxpool.Pool
}

func NewRawDocumentRepository(db *pgxpool.Pool) domain.RawDocumentRepository {
	return &rawDocumentRepo{db: db}
}

func (r *rawDocumentRepo) Create(ctx context.Context, doc *domain.RawDocument) error {
	now := time.Now()
	query := `INSERT INTO raw_documents (id, filename, raw_bytes, blob_key, processed, created_at, updated_at)
              VALUES ($1, $2, $3, $4, FALSE, $5, $5)`
	if _, err := r.db.Exec(ctx, query, doc.ID, doc.Filename, doc.RawBytes, doc.BlobKey, now); err != nil {
		return err
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now
	return nil
}

func (r *rawDocumentRepo) GetByID(ctx context.Context, id string) (*domain.RawDocument, error) {
	query := `SELECT id, filename, raw_bytes, blob_key, processed, error, extracted_profile, diagnostics,
                     resume_id, candidate_id, created_at, updated_at
              FROM raw_documents WHERE id = $1`

	var (
		doc         domain.RawDocument
		profileJSON []byte
		diagJSON    []byte
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&doc.ID, &doc.Filename, &doc.RawBytes, &doc.BlobKey, &doc.Processed, &doc.Error,
		&profileJSON, &diagJSON, &doc.ResumeID, &doc.CandidateID, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(profileJSON) > 0 {
		doc.ExtractedProfile = &domain.CandidateProfile{}
		if err := json.Unmarshal(profileJSON, doc.ExtractedProfile); err != nil {
			return nil, err
		}
	}
	if len(diagJSON) > 0 {
		doc.Diagnostics = &domain.Diagnostics{}
		if err := json.Unmarshal(diagJSON, doc.Diagnostics); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}

func (r *rawDocumentRepo) MarkProcessed(ctx context.Context, id string, result domain.ProcessingSuccess) error {
	profile, err := jsonOrNull(result.Profile)
	if err != nil {
		return err
	}
	query := `UPDATE raw_documents
              SET processed = TRUE, error = NULL, diagnostics = NULL, extracted_profile = $2::jsonb,
                  resume_id = $3, candidate_id = $4, updated_at = NOW()
              WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, profile, result.ResumeID, result.CandidateID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *rawDocumentRepo) MarkFailed(ctx context.Context, id string, failure domain.ProcessingFailure) error {
	profile, err := jsonOrNull(failure.Partial)
	if err != nil {
		return err
	}
	diagnostics, err := jsonOrNull(failure.Diagnostics)
	if err != nil {
		return err
	}
	query := `UPDATE raw_documents
              SET processed = FALSE, error = $2, extracted_profile = $3::jsonb, diagnostics = $4::jsonb, updated_at = NOW()
              WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, failure.Error, profile, diagnostics)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *rawDocumentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM raw_documents WHERE id = $1`, id)
	return err
}

// jsonOrNull marshals v, mapping a nil pointer to SQL NULL.
func jsonOrNull[T any](v *T) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}
