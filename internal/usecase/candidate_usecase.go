package usecase

import (
	"context"

	"go-resume-screener/internal/domain"
)

type candidateUsecase struct {
	candidates domain.CandidateRepository
	resumes    domain.ResumeRepository
}

func NewCandidateUsecase(candidates domain.CandidateRepository, resumes domain.ResumeRepository) domain.CandidateUsecase {
	return &candidateUsecase{
		candidates: candidates,
		resumes:    resumes,
	}
}

func (u *candidateUsecase) GetCandidate(ctx context.Context, id int64) (*domain.CandidateWithResumes, error) {
	candidate, err := u.candidates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resumes, err := u.resumes.ListByCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	if resumes == nil {
		resumes = []domain.Resume{}
	}
	return &domain.CandidateWithResumes{Candidate: *candidate, Resumes: resumes}, nil
}
