package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go-resume-screener/internal/domain"
	"go-resume-screener/internal/usecase"
	"go-resume-screener/pkg/logger"
	"go-resume-screener/pkg/textextract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF")

type ingestionMocks struct {
	documents  *MockRawDocumentRepo
	tasks      *MockTaskRepo
	signal     *MockSignal
	text       *MockTextExtractor
	entities   *MockEntityExtractor
	resolver   *MockResolver
	resumes    *MockResumeRepo
	candidates *MockCandidateRepo
	index      *MockIndex
}

func newIngestion(cfg usecase.IngestionConfig) (domain.IngestionUsecase, ingestionMocks) {
	m := ingestionMocks{
		documents:  new(MockRawDocumentRepo),
		tasks:      new(MockTaskRepo),
		signal:     new(MockSignal),
		text:       new(MockTextExtractor),
		entities:   new(MockEntityExtractor),
		resolver:   new(MockResolver),
		resumes:    new(MockResumeRepo),
		candidates: new(MockCandidateRepo),
		index:      new(MockIndex),
	}
	coordinator := usecase.NewPersistenceCoordinator(m.resumes, m.candidates, m.documents, m.index, usecase.CompensationLeak, logger.Nop())
	uc := usecase.NewIngestionUsecase(usecase.IngestionDeps{
		Documents:   m.documents,
		Tasks:       m.tasks,
		Signal:      m.signal,
		Text:        m.text,
		Entities:    m.entities,
		Resolver:    m.resolver,
		Coordinator: coordinator,
	}, cfg, logger.Nop())
	return uc, m
}

func TestIngestionSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("Should store the document and enqueue a task with the same id", func(t *testing.T) {
		uc, m := newIngestion(usecase.IngestionConfig{})
		var docID string
		m.documents.On("Create", ctx, mock.MatchedBy(func(d *domain.RawDocument) bool {
			docID = d.ID
			return d.Filename == "jane.pdf" && len(d.RawBytes) == len(samplePDF) && !d.Processed
		})).Return(nil)
		m.tasks.On("Enqueue", ctx, mock.MatchedBy(func(task *domain.IngestionTask) bool {
			return task.ID == docID && task.MaxAttempts == 4
		})).Return(nil)
		m.signal.On("Notify", ctx, mock.Anything).Return(nil)

		res, err := uc.Submit(ctx, "jane.pdf", samplePDF)
		require.NoError(t, err)
		assert.Equal(t, docID, res.TaskID)
		assert.Equal(t, "processing", res.Status)
	})

	t.Run("Should reject unsupported formats synchronously", func(t *testing.T) {
		uc, m := newIngestion(usecase.IngestionConfig{})
		_, err := uc.Submit(ctx, "notes.txt", []byte("hello"))
		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
		m.documents.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should reject content that does not match the extension", func(t *testing.T) {
		uc, _ := newIngestion(usecase.IngestionConfig{})
		_, err := uc.Submit(ctx, "jane.pdf", []byte("MZ\x90\x00 not a pdf at all"))
		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	})

	t.Run("Should reject oversized files", func(t *testing.T) {
		uc, _ := newIngestion(usecase.IngestionConfig{MaxUploadSize: 10})
		_, err := uc.Submit(ctx, "jane.pdf", samplePDF)
		assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	})

	t.Run("Should remove the document when enqueue fails", func(t *testing.T) {
		uc, m := newIngestion(usecase.IngestionConfig{})
		m.documents.On("Create", ctx, mock.Anything).Return(nil)
		m.tasks.On("Enqueue", ctx, mock.Anything).Return(errors.New("db down"))
		m.documents.On("Delete", ctx, mock.Anything).Return(nil)

		_, err := uc.Submit(ctx, "jane.pdf", samplePDF)
		assert.Error(t, err)
		m.documents.AssertCalled(t, "Delete", ctx, mock.Anything)
	})

	t.Run("Should succeed when the wake-up signal fails", func(t *testing.T) {
		uc, m := newIngestion(usecase.IngestionConfig{})
		m.documents.On("Create", ctx, mock.Anything).Return(nil)
		m.tasks.On("Enqueue", ctx, mock.Anything).Return(nil)
		m.signal.On("Notify", ctx, mock.Anything).Return(errors.New("redis down"))

		_, err := uc.Submit(ctx, "jane.pdf", samplePDF)
		assert.NoError(t, err)
	})
}

func TestIngestionProcess(t *testing.T) {
	ctx := context.Background()
	doc := func() *domain.RawDocument {
		return &domain.RawDocument{ID: "doc-1", Filename: "jane.pdf", RawBytes: samplePDF}
	}
	profile := &domain.CandidateProfile{Name: "Jane", Email: "jane@example.com", Skills: []string{"go"}}
	candidate := &domain.Candidate{ID: 3, Name: "Jane", Email: "jane@example.com"}

	t.Run("Should run the pipeline and mark the document processed", func(t *testing.T) {
		uc, m := newIngestion(usecase.IngestionConfig{})
		m.documents.On("GetByID", mock.Anything, "doc-1").Return(doc(), nil)
		m.text.On("ExtractFile", "jane.pdf", samplePDF).Return("Jane resume", nil)
		m.entities.On("Extract", mock.Anything, "Jane resume").Return(profile, nil)
		m.resolver.On("Resolve", mock.Anything, profile).Return(candidate, domain.ResolveCreated, nil)
		m.resumes.On("Upsert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Resume).ID = 11
		}).Return(nil)
		m.index.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		m.documents.On("MarkProcessed", mock.Anything, "doc-1", mock.Anything).Return(nil)

		require.NoError(t, uc.Process(ctx, "doc-1"))
		m.documents.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should skip documents that are already processed", func(t *testing.T) {
		uc, m := newIngestion(usecase.IngestionConfig{})
		d := doc()
		d.Processed = true
		m.documents.On("GetByID", mock.Anything, "doc-1").Return(d, nil)

		require.NoError(t, uc.Process(ctx, "doc-1"))
		m.text.AssertNotCalled(t, "ExtractFile", mock.Anything, mock.Anything)
	})

	t.Run("Should record extraction diagnostics and the partial profile", func(t *testing.T) {
		uc, m := newIngestion(usecase.IngestionConfig{})
		partial := &domain.CandidateProfile{Name: "Jane"}
		extErr := &domain.ExtractionError{
			Kind:         domain.ErrMissingRequiredFields,
			Message:      "name and email are required",
			RawResponse:  `{"name": "Jane"}`,
			RepairedJSON: `{"name": "Jane"}`,
			Partial:      partial,
		}
		m.documents.On("GetByID", mock.Anything, "doc-1").Return(doc(), nil)
		m.text.On("ExtractFile", "jane.pdf", samplePDF).Return("Jane resume", nil)
		m.entities.On("Extract", mock.Anything, "Jane resume").Return(nil, extErr)
		m.documents.On("MarkFailed", mock.Anything, "doc-1", mock.MatchedBy(func(f domain.ProcessingFailure) bool {
			return f.Partial == partial && f.Diagnostics != nil && f.Diagnostics.RawResponse == `{"name": "Jane"}` && f.Error != ""
		})).Return(nil)

		err := uc.Process(ctx, "doc-1")
		assert.ErrorIs(t, err, domain.ErrMissingRequiredFields)
		m.documents.AssertExpectations(t)
	})

	t.Run("Should translate text extraction errors", func(t *testing.T) {
		uc, m := newIngestion(usecase.IngestionConfig{})
		m.documents.On("GetByID", mock.Anything, "doc-1").Return(doc(), nil)
		m.text.On("ExtractFile", "jane.pdf", samplePDF).Return("", textextract.ErrExtractionFailure)
		m.documents.On("MarkFailed", mock.Anything, "doc-1", mock.MatchedBy(func(f domain.ProcessingFailure) bool {
			return f.Partial == nil && f.Diagnostics == nil
		})).Return(nil)

		err := uc.Process(ctx, "doc-1")
		assert.ErrorIs(t, err, domain.ErrExtractionFailure)
	})

	t.Run("Should leave no failure record after compensation", func(t *testing.T) {
		uc, m := newIngestion(usecase.IngestionConfig{})
		m.documents.On("GetByID", mock.Anything, "doc-1").Return(doc(), nil).Once()
		m.text.On("ExtractFile", "jane.pdf", samplePDF).Return("Jane resume", nil)
		m.entities.On("Extract", mock.Anything, "Jane resume").Return(profile, nil)
		m.resolver.On("Resolve", mock.Anything, profile).Return(candidate, domain.ResolveCreated, nil)
		m.resumes.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		m.index.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("index down"))
		m.documents.On("Delete", mock.Anything, "doc-1").Return(nil)

		err := uc.Process(ctx, "doc-1")
		assert.ErrorIs(t, err, domain.ErrIndexingFailure)
		m.documents.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything)
		m.documents.AssertCalled(t, "Delete", mock.Anything, "doc-1")

		m.documents.On("GetByID", mock.Anything, "doc-1").Return(nil, domain.ErrNotFound)
		_, err = uc.Status(ctx, "doc-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Should report a missing document as not found", func(t *testing.T) {
		uc, m := newIngestion(usecase.IngestionConfig{})
		m.documents.On("GetByID", mock.Anything, "gone").Return(nil, domain.ErrNotFound)

		assert.ErrorIs(t, uc.Process(ctx, "gone"), domain.ErrNotFound)
	})
}

func TestIngestionStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Should merge document outcome with task progress", func(t *testing.T) {
		uc, m := newIngestion(usecase.IngestionConfig{})
		resumeID, candidateID := int64(11), int64(3)
		m.documents.On("GetByID", ctx, "doc-1").Return(&domain.RawDocument{
			ID: "doc-1", Processed: true, ResumeID: &resumeID, CandidateID: &candidateID,
		}, nil)
		m.tasks.On("GetByID", ctx, "doc-1").Return(&domain.IngestionTask{
			ID: "doc-1", State: domain.TaskSucceeded, Attempts: 2, MaxAttempts: 4,
		}, nil)

		status, err := uc.Status(ctx, "doc-1")
		require.NoError(t, err)
		assert.True(t, status.Processed)
		assert.Equal(t, &resumeID, status.ResumeID)
		assert.Equal(t, domain.TaskSucceeded, status.State)
		assert.Equal(t, 2, status.Attempts)
	})

	t.Run("Should tolerate a missing task row", func(t *testing.T) {
		uc, m := newIngestion(usecase.IngestionConfig{})
		m.documents.On("GetByID", ctx, "doc-1").Return(&domain.RawDocument{ID: "doc-1", Error: strPtr("boom")}, nil)
		m.tasks.On("GetByID", ctx, "doc-1").Return(nil, domain.ErrNotFound)

		status, err := uc.Status(ctx, "doc-1")
		require.NoError(t, err)
		assert.False(t, status.Processed)
		assert.Equal(t, "boom", *status.Error)
	})
}
