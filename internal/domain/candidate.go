package domain

import (
	"context"
	"time"
)

type Candidate struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Location  *string   `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CandidateWithResumes is the detail view returned to recruiters.
type CandidateWithResumes struct {
	Candidate
	Resumes []Resume `json:"resumes"`
}

// ResolveAction reports whether identity resolution inserted a new Candidate.
type ResolveAction string

const (
	ResolveCreated ResolveAction = "created"
	ResolveUpdated ResolveAction = "updated"
)

type CandidateRepository interface {
	// Create returns ErrDuplicateEmail when the email is already taken.
	Create(ctx context.Context, candidate *Candidate) error
	GetByID(ctx context.Context, id int64) (*Candidate, error)
	// GetByEmail returns (nil, nil) when no candidate has the email.
	GetByEmail(ctx context.Context, email string) (*Candidate, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*Candidate, error)
	Delete(ctx context.Context, id int64) error
}

type IdentityResolver interface {
	Resolve(ctx context.Context, profile *CandidateProfile) (*Candidate, ResolveAction, error)
}

type CandidateUsecase interface {
	GetCandidate(ctx context.Context, id int64) (*CandidateWithResumes, error)
}
