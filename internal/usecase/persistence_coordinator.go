package usecase

import (
	"context"
	"fmt"

	"go-resume-screener/internal/domain"
	"go-resume-screener/pkg/logger"
)

// CompensationMode selects how much is rolled back when indexing fails.
type CompensationMode string

const (
	// CompensationLeak deletes only the RawDocument; Candidate and Resume rows stay.
	CompensationLeak CompensationMode = "leak"
	// CompensationStrict also removes the Resume and, if this run created it
	// and it owns nothing else, the Candidate.
	CompensationStrict CompensationMode = "strict"
)

func ParseCompensationMode(s string) CompensationMode {
	if CompensationMode(s) == CompensationStrict {
		return CompensationStrict
	}
	return CompensationLeak
}

type CommitRequest struct {
	Profile    *domain.CandidateProfile
	Candidate  *domain.Candidate
	Action     domain.ResolveAction
	RawText    string
	DocumentID string
	Filename   string
}

type PersistenceCoordinator struct {
	resumes    domain.ResumeRepository
	candidates domain.CandidateRepository
	documents  domain.RawDocumentRepository
	index      domain.SemanticIndex
	mode       CompensationMode
	log        *logger.Logger
}

func NewPersistenceCoordinator(
	resumes domain.ResumeRepository,
	candidates domain.CandidateRepository,
	documents domain.RawDocumentRepository,
	index domain.SemanticIndex,
	mode CompensationMode,
	log *logger.Logger,
) *PersistenceCoordinator {
	return &PersistenceCoordinator{
		resumes:    resumes,
		candidates: candidates,
		documents:  documents,
		index:      index,
		mode:       mode,
		log:        log.With("component", "persistence"),
	}
}

// Commit writes the Resume, indexes it and marks the RawDocument processed.
// On indexing failure the RawDocument is deleted and ErrIndexingFailure is
// returned; the caller must not write a failure record afterwards.
func (p *PersistenceCoordinator) Commit(ctx context.Context, req CommitRequest) (*domain.Resume, error) {
	resume := &domain.Resume{
		CandidateID:     req.Candidate.ID,
		DocumentRef:     req.DocumentID,
		Filename:        req.Filename,
		Skills:          req.Profile.Skills,
		ExperienceYears: req.Profile.ExperienceYears,
		Education:       req.Profile.Education,
		RawText:         req.RawText,
	}
	if err := p.resumes.Upsert(ctx, resume); err != nil {
		return nil, fmt.Errorf("insert resume: %w", err)
	}

	entry := domain.IndexEntry{
		ResumeID:    resume.ID,
		CandidateID: resume.CandidateID,
		Text:        req.RawText,
	}
	if err := p.index.Upsert(ctx, entry); err != nil {
		p.compensate(ctx, req, resume)
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexingFailure, err)
	}

	err := p.documents.MarkProcessed(ctx, req.DocumentID, domain.ProcessingSuccess{
		ResumeID:    resume.ID,
		CandidateID: resume.CandidateID,
		Profile:     req.Profile,
	})
	if err != nil {
		return nil, fmt.Errorf("mark document processed: %w", err)
	}
	return resume, nil
}

// compensate is best effort; failures are logged, never returned.
func (p *PersistenceCoordinator) compensate(ctx context.Context, req CommitRequest, resume *domain.Resume) {
	log := p.log.With("document_id", req.DocumentID, "resume_id", resume.ID)

	if err := p.documents.Delete(ctx, req.DocumentID); err != nil {
		log.Error("compensating delete of raw document failed", "error", err)
	}
	if p.mode != CompensationStrict {
		log.Warn("indexing failed, relational rows kept", "candidate_id", resume.CandidateID)
		return
	}

	if err := p.index.Delete(ctx, resume.ID); err != nil {
		log.Error("compensating delete of index entry failed", "error", err)
	}
	if err := p.resumes.Delete(ctx, resume.ID); err != nil {
		log.Error("compensating delete of resume failed", "error", err)
		return
	}
	if req.Action != domain.ResolveCreated {
		return
	}
	n, err := p.resumes.CountByCandidate(ctx, resume.CandidateID)
	if err != nil {
		log.Error("count candidate resumes failed", "error", err)
		return
	}
	if n == 0 {
		if err := p.candidates.Delete(ctx, resume.CandidateID); err != nil {
			log.Error("compensating delete of candidate failed", "error", err)
		}
	}
}
