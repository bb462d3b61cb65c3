package usecase

import (
	"context"
	"errors"
	"fmt"

	"go-resume-screener/internal/domain"
)

type identityResolver struct {
	candidates domain.CandidateRepository
}

func NewIdentityResolver(candidates domain.CandidateRepository) domain.IdentityResolver {
	return &identityResolver{candidates: candidates}
}

// Resolve finds the Candidate owning profile.Email or creates one. An existing
// Candidate is returned unchanged: contact details are first-write-wins.
func (r *identityResolver) Resolve(ctx context.Context, profile *domain.CandidateProfile) (*domain.Candidate, domain.ResolveAction, error) {
	existing, err := r.candidates.GetByEmail(ctx, profile.Email)
	if err != nil {
		return nil, "", fmt.Errorf("lookup candidate: %w", err)
	}
	if existing != nil {
		return existing, domain.ResolveUpdated, nil
	}

	candidate := &domain.Candidate{
		Name:     profile.Name,
		Email:    profile.Email,
		Phone:    profile.Phone,
		Location: profile.Location,
	}
	err = r.candidates.Create(ctx, candidate)
	if err == nil {
		return candidate, domain.ResolveCreated, nil
	}
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		return nil, "", fmt.Errorf("create candidate: %w", err)
	}

	// A concurrent task inserted the same email between lookup and insert.
	existing, err = r.candidates.GetByEmail(ctx, profile.Email)
	if err != nil {
		return nil, "", fmt.Errorf("lookup candidate: %w", err)
	}
	if existing == nil {
		return nil, "", fmt.Errorf("create candidate: %w", domain.ErrDuplicateEmail)
	}
	return existing, domain.ResolveUpdated, nil
}
