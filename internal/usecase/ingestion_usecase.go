package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go-resume-screener/internal/domain"
	"go-resume-screener/pkg/logger"
	"go-resume-screener/pkg/security"
	"go-resume-screener/pkg/textextract"
	"go-resume-screener/pkg/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultMaxUploadSize = 5 << 20

// TextExtractor is satisfied by *textextract.Extractor.
type TextExtractor interface {
	ExtractFile(filename string, data []byte) (string, error)
}

type IngestionConfig struct {
	MaxUploadSize int64
	Retry         domain.RetryPolicy
}

type IngestionDeps struct {
	Documents   domain.RawDocumentRepository
	Tasks       domain.TaskRepository
	Signal      domain.TaskSignal
	Blobs       domain.BlobStore // optional
	Text        TextExtractor
	Entities    domain.EntityExtractor
	Resolver    domain.IdentityResolver
	Coordinator *PersistenceCoordinator
}

type ingestionUsecase struct {
	IngestionDeps
	cfg   IngestionConfig
	log   *logger.Logger
	audit *security.AuditLogger
}

func NewIngestionUsecase(deps IngestionDeps, cfg IngestionConfig, log *logger.Logger) domain.IngestionUsecase {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = domain.DefaultRetryPolicy()
	}
	return &ingestionUsecase{
		IngestionDeps: deps,
		cfg:           cfg,
		log:           log.With("component", "ingestion"),
		audit:         security.NewAuditLogger(log),
	}
}

func (u *ingestionUsecase) Submit(ctx context.Context, filename string, data []byte) (*domain.SubmitResult, error) {
	if _, err := textextract.FormatFromFilename(filename); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filename)
	}
	if int64(len(data)) > u.cfg.MaxUploadSize {
		return nil, domain.ErrFileTooLarge
	}
	contentType := http.DetectContentType(data)
	if res := security.ValidateFile(filename, data, contentType); !res.Valid {
		u.audit.Log(ctx, security.SecurityEvent{
			Event:   security.EventValidationFailed,
			Details: map[string]interface{}{"filename": filename, "content_type": contentType, "reason": res.Error},
		})
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, res.Error)
	}

	id := uuid.NewString()
	doc := &domain.RawDocument{ID: id, Filename: filename}
	if u.Blobs != nil {
		if err := u.Blobs.Put(ctx, id, data, contentType); err != nil {
			return nil, fmt.Errorf("store document bytes: %w", err)
		}
		doc.BlobKey = &id
	} else {
		doc.RawBytes = data
	}

	if err := u.Documents.Create(ctx, doc); err != nil {
		u.dropBlob(ctx, doc)
		return nil, fmt.Errorf("create raw document: %w", err)
	}

	task := &domain.IngestionTask{ID: id, MaxAttempts: u.cfg.Retry.MaxAttempts}
	if err := u.Tasks.Enqueue(ctx, task); err != nil {
		if delErr := u.Documents.Delete(ctx, id); delErr != nil {
			u.log.Error("failed to remove document after enqueue error", "document_id", id, "error", delErr)
		}
		u.dropBlob(ctx, doc)
		return nil, fmt.Errorf("enqueue task: %w", err)
	}

	if err := u.Signal.Notify(ctx, id); err != nil {
		u.log.Warn("worker wake-up failed, task will be picked up on the next poll", "task_id", id, "error", err)
	}

	u.log.Info("resume submitted", "task_id", id, "filename", filename, "size", len(data))
	return &domain.SubmitResult{TaskID: id, Status: "processing"}, nil
}

func (u *ingestionUsecase) dropBlob(ctx context.Context, doc *domain.RawDocument) {
	if u.Blobs == nil || doc.BlobKey == nil {
		return
	}
	if err := u.Blobs.Delete(ctx, *doc.BlobKey); err != nil {
		u.log.Warn("failed to remove orphaned blob", "blob_key", *doc.BlobKey, "error", err)
	}
}

// Process runs the pipeline once for a task. Failures are recorded on the
// RawDocument before being returned, except when the document no longer
// exists.
func (u *ingestionUsecase) Process(ctx context.Context, taskID string) (err error) {
	ctx, span := tracing.Tracer().Start(ctx, "ingestion.process")
	span.SetAttributes(attribute.String("task.id", taskID))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	doc, err := u.Documents.GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("load raw document: %w", err)
	}
	if doc.Processed {
		return nil
	}

	data := doc.RawBytes
	if doc.BlobKey != nil && u.Blobs != nil {
		data, err = u.Blobs.Get(ctx, *doc.BlobKey)
		if err != nil {
			return u.fail(ctx, taskID, fmt.Errorf("load document bytes: %w", err), nil)
		}
	}

	text, err := u.Text.ExtractFile(doc.Filename, data)
	if err != nil {
		kind := domain.ErrExtractionFailure
		if errors.Is(err, textextract.ErrUnsupportedFormat) {
			kind = domain.ErrUnsupportedFormat
		}
		return u.fail(ctx, taskID, fmt.Errorf("%w: %v", kind, err), nil)
	}

	profile, err := u.Entities.Extract(ctx, text)
	if err != nil {
		return u.fail(ctx, taskID, err, profile)
	}

	candidate, action, err := u.Resolver.Resolve(ctx, profile)
	if err != nil {
		return u.fail(ctx, taskID, err, profile)
	}

	resume, err := u.Coordinator.Commit(ctx, CommitRequest{
		Profile:    profile,
		Candidate:  candidate,
		Action:     action,
		RawText:    text,
		DocumentID: taskID,
		Filename:   doc.Filename,
	})
	if err != nil {
		if errors.Is(err, domain.ErrIndexingFailure) {
			return err
		}
		return u.fail(ctx, taskID, err, profile)
	}

	u.log.Info("resume processed",
		"task_id", taskID,
		"candidate_id", candidate.ID,
		"resume_id", resume.ID,
		"action", string(action),
	)
	return nil
}

func (u *ingestionUsecase) fail(ctx context.Context, taskID string, cause error, partial *domain.CandidateProfile) error {
	failure := domain.ProcessingFailure{Error: cause.Error(), Partial: partial}

	var extErr *domain.ExtractionError
	if errors.As(cause, &extErr) {
		if failure.Partial == nil {
			failure.Partial = extErr.Partial
		}
		if extErr.RawResponse != "" || extErr.RepairedJSON != "" {
			failure.Diagnostics = &domain.Diagnostics{
				RawResponse:  extErr.RawResponse,
				RepairedJSON: extErr.RepairedJSON,
			}
		}
	}

	if err := u.Documents.MarkFailed(ctx, taskID, failure); err != nil {
		u.log.Error("failed to record processing failure", "task_id", taskID, "error", err)
	}
	u.log.Warn("resume processing failed", "task_id", taskID, "error", cause)
	return cause
}

func (u *ingestionUsecase) Status(ctx context.Context, taskID string) (*domain.TaskStatus, error) {
	doc, err := u.Documents.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	status := &domain.TaskStatus{
		TaskID:      doc.ID,
		Processed:   doc.Processed,
		Error:       doc.Error,
		ResumeID:    doc.ResumeID,
		CandidateID: doc.CandidateID,
	}

	task, err := u.Tasks.GetByID(ctx, taskID)
	switch {
	case err == nil:
		status.State = task.State
		status.Attempts = task.Attempts
		status.MaxAttempts = task.MaxAttempts
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, err
	}
	return status, nil
}
