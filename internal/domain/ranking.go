package domain

import "context"

type RankedCandidate struct {
	Score     float64   `json:"score"`
	Candidate Candidate `json:"candidate"`
	Resume    Resume    `json:"resume"`
}

type SearchSource string

const (
	SourceSemantic SearchSource = "semantic"
	SourceKeyword  SearchSource = "keyword"
)

type SearchHit struct {
	ResumeID    int64        `json:"resume_id"`
	CandidateID int64        `json:"candidate_id"`
	Score       float64      `json:"score"`
	Content     string       `json:"content,omitempty"`
	Source      SearchSource `json:"source"`
}

type RankingUsecase interface {
	Rank(ctx context.Context, jobID int64, limit int) ([]RankedCandidate, error)
	MatchScores(ctx context.Context, jobID int64, limit int) ([]RankedCandidate, error)
	SearchBySkills(ctx context.Context, terms []string) ([]SkillMatch, error)
	SearchText(ctx context.Context, query string, limit int) ([]SearchHit, error)
	HybridSearch(ctx context.Context, query string, limit int) ([]SearchHit, error)
	ExportRanking(ctx context.Context, jobID int64, limit int, format string) ([]byte, string, error)
}
