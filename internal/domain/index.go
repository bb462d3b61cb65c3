package domain

import "context"

// IndexEntry is the semantic-index record of one Resume.
type IndexEntry struct {
	ResumeID    int64
	CandidateID int64
	Text        string
}

// Neighbor is one nearest-neighbor hit. Distance is cosine distance, so
// 1 - Distance is the similarity score.
type Neighbor struct {
	ResumeID    int64
	CandidateID int64
	Distance    float64
	Text        string
}

type SemanticIndex interface {
	Upsert(ctx context.Context, entry IndexEntry) error
	Query(ctx context.Context, text string, k int) ([]Neighbor, error)
	Delete(ctx context.Context, resumeID int64) error
}
