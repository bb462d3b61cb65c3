package usecase_test

import (
	"context"
	"time"

	"go-resume-screener/internal/domain"

	"github.com/stretchr/testify/mock"
)

// Mock Repositories
type MockCandidateRepo struct {
	mock.Mock
}

func (m *MockCandidateRepo) Create(ctx context.Context, c *domain.Candidate) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCandidateRepo) GetByID(ctx context.Context, id int64) (*domain.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepo) GetByEmail(ctx context.Context, email string) (*domain.Candidate, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Candidate, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockResumeRepo struct {
	mock.Mock
}

func (m *MockResumeRepo) Upsert(ctx context.Context, r *domain.Resume) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockResumeRepo) GetByIDs(ctx context.Context, ids []int64, activeOnly bool) (map[int64]*domain.Resume, error) {
	args := m.Called(ctx, ids, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*domain.Resume), args.Error(1)
}

func (m *MockResumeRepo) ListByCandidate(ctx context.Context, candidateID int64) ([]domain.Resume, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Resume), args.Error(1)
}

func (m *MockResumeRepo) ListActive(ctx context.Context) ([]domain.Resume, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Resume), args.Error(1)
}

func (m *MockResumeRepo) CountByCandidate(ctx context.Context, candidateID int64) (int, error) {
	args := m.Called(ctx, candidateID)
	return args.Int(0), args.Error(1)
}

func (m *MockResumeRepo) SearchText(ctx context.Context, query string, limit int) ([]domain.Resume, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Resume), args.Error(1)
}

func (m *MockResumeRepo) SearchSkillsExact(ctx context.Context, terms []string, limit int) ([]domain.SkillMatch, error) {
	args := m.Called(ctx, terms, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SkillMatch), args.Error(1)
}

func (m *MockResumeRepo) SearchSkillsFuzzy(ctx context.Context, terms []string, threshold float64, limit int) ([]domain.SkillMatch, error) {
	args := m.Called(ctx, terms, threshold, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SkillMatch), args.Error(1)
}

func (m *MockResumeRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockRawDocumentRepo struct {
	mock.Mock
}

func (m *MockRawDocumentRepo) Create(ctx context.Context, doc *domain.RawDocument) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockRawDocumentRepo) GetByID(ctx context.Context, id string) (*domain.RawDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RawDocument), args.Error(1)
}

func (m *MockRawDocumentRepo) MarkProcessed(ctx context.Context, id string, result domain.ProcessingSuccess) error {
	return m.Called(ctx, id, result).Error(0)
}

func (m *MockRawDocumentRepo) MarkFailed(ctx context.Context, id string, failure domain.ProcessingFailure) error {
	return m.Called(ctx, id, failure).Error(0)
}

func (m *MockRawDocumentRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockTaskRepo struct {
	mock.Mock
}

func (m *MockTaskRepo) Enqueue(ctx context.Context, task *domain.IngestionTask) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockTaskRepo) ClaimNext(ctx context.Context, staleAfter time.Duration) (*domain.IngestionTask, error) {
	args := m.Called(ctx, staleAfter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IngestionTask), args.Error(1)
}

func (m *MockTaskRepo) GetByID(ctx context.Context, id string) (*domain.IngestionTask, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IngestionTask), args.Error(1)
}

func (m *MockTaskRepo) MarkSucceeded(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTaskRepo) MarkRetry(ctx context.Context, id string, nextRunAt time.Time, lastErr string) error {
	return m.Called(ctx, id, nextRunAt, lastErr).Error(0)
}

func (m *MockTaskRepo) MarkAbandoned(ctx context.Context, id string, lastErr string) error {
	return m.Called(ctx, id, lastErr).Error(0)
}

func (m *MockTaskRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockSignal struct {
	mock.Mock
}

func (m *MockSignal) Notify(ctx context.Context, taskID string) error {
	return m.Called(ctx, taskID).Error(0)
}

func (m *MockSignal) Wait(ctx context.Context, timeout time.Duration) (string, error) {
	args := m.Called(ctx, timeout)
	return args.String(0), args.Error(1)
}

type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) Upsert(ctx context.Context, entry domain.IndexEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockIndex) Query(ctx context.Context, text string, k int) ([]domain.Neighbor, error) {
	args := m.Called(ctx, text, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Neighbor), args.Error(1)
}

func (m *MockIndex) Delete(ctx context.Context, resumeID int64) error {
	return m.Called(ctx, resumeID).Error(0)
}

type MockOracle struct {
	mock.Mock
}

func (m *MockOracle) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) Create(ctx context.Context, job *domain.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockJobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobRepo) Fetch(ctx context.Context, limit, offset int, includeInactive bool) ([]domain.Job, int64, error) {
	args := m.Called(ctx, limit, offset, includeInactive)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Job), args.Get(1).(int64), args.Error(2)
}

func (m *MockJobRepo) Update(ctx context.Context, job *domain.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockJobRepo) Deactivate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockSkillExtractor struct {
	mock.Mock
}

func (m *MockSkillExtractor) ExtractSkills(ctx context.Context, text string) ([]string, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockEntityExtractor struct {
	mock.Mock
}

func (m *MockEntityExtractor) Extract(ctx context.Context, text string) (*domain.CandidateProfile, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CandidateProfile), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, p *domain.CandidateProfile) (*domain.Candidate, domain.ResolveAction, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.Candidate), args.Get(1).(domain.ResolveAction), args.Error(2)
}

type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) ExtractFile(filename string, data []byte) (string, error) {
	args := m.Called(filename, data)
	return args.String(0), args.Error(1)
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
