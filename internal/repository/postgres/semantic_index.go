package postgres

import (
	"context"
	"fmt"

	"go-resume-screener/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// semanticIndex stores resume embeddings in a pgvector column and answers
// cosine nearest-neighbor queries.
type semanticIndex struct {
	db       *pgxpool.Pool
	embedder domain.Embedder
}

func NewSemanticIndex(db *pgxpool.Pool, embedder domain.Embedder) domain.SemanticIndex {
	return &semanticIndex{db: db, embedder: embedder}
}

func (s *semanticIndex) Upsert(ctx context.Context, entry domain.IndexEntry) error {
	vec, err := s.embedder.Embed(ctx, entry.Text)
	if err != nil {
		return fmt.Errorf("embed resume %d: %w", entry.ResumeID, err)
	}
	query := `
		INSERT INTO resume_index (resume_id, candidate_id, content, embedding, updated_at)
		VALUES ($1, $2, $3, $4::vector, NOW())
		ON CONFLICT (resume_id) DO UPDATE SET
			candidate_id = EXCLUDED.candidate_id,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			updated_at = EXCLUDED.updated_at`
	_, err = s.db.Exec(ctx, query, entry.ResumeID, entry.CandidateID, entry.Text, pgvector.NewVector(vec))
	return err
}

// Query returns up to k neighbors ordered by ascending cosine distance.
func (s *semanticIndex) Query(ctx context.Context, text string, k int) ([]domain.Neighbor, error) {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	query := `
		SELECT resume_id, candidate_id, content, (embedding <=> $1::vector)::float8 AS distance
		FROM resume_index
		ORDER BY distance, resume_id
		LIMIT $2`
	rows, err := s.db.Query(ctx, query, pgvector.NewVector(vec), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var neighbors []domain.Neighbor
	for rows.Next() {
		var n domain.Neighbor
		if err := rows.Scan(&n.ResumeID, &n.CandidateID, &n.Text, &n.Distance); err != nil {
			return nil, err
		}
		neighbors = append(neighbors, n)
	}
	return neighbors, rows.Err()
}

func (s *semanticIndex) Delete(ctx context.Context, resumeID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM resume_index WHERE resume_id = $1`, resumeID)
	return err
}
