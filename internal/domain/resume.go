package domain

import (
	"context"
	"time"
)

type Resume struct {
	ID              int64            `json:"id"`
	CandidateID     int64            `json:"candidate_id"`
	DocumentRef     string           `json:"document_ref"`
	Filename        string           `json:"filename"`
	Skills          []string         `json:"skills"`
	ExperienceYears float64          `json:"experience_years"`
	Education       []EducationEntry `json:"education"`
	RawText         string           `json:"-"`
	Active          bool             `json:"active"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// SkillMatch is one row of the attribute-only skill search. Similarity is only
// set by the fuzzy pass.
type SkillMatch struct {
	Candidate  Candidate `json:"candidate"`
	Skills     []string  `json:"skills"`
	Similarity float64   `json:"similarity,omitempty"`
}

type ResumeRepository interface {
	// Upsert inserts the resume or, when a row for the same DocumentRef already
	// exists, overwrites it and reuses its id.
	Upsert(ctx context.Context, resume *Resume) error
	GetByIDs(ctx context.Context, ids []int64, activeOnly bool) (map[int64]*Resume, error)
	ListByCandidate(ctx context.Context, candidateID int64) ([]Resume, error)
	ListActive(ctx context.Context) ([]Resume, error)
	CountByCandidate(ctx context.Context, candidateID int64) (int, error)
	SearchText(ctx context.Context, query string, limit int) ([]Resume, error)
	SearchSkillsExact(ctx context.Context, terms []string, limit int) ([]SkillMatch, error)
	SearchSkillsFuzzy(ctx context.Context, terms []string, threshold float64, limit int) ([]SkillMatch, error)
	Delete(ctx context.Context, id int64) error
}
