package domain

import (
	"context"
	"time"
)

// RawDocument is the uploaded file plus its processing outcome. Its id doubles
// as the ingestion task id.
type RawDocument struct {
	ID               string            `json:"id"`
	Filename         string            `json:"filename"`
	RawBytes         []byte            `json:"-"`
	BlobKey          *string           `json:"-"`
	Processed        bool              `json:"processed"`
	Error            *string           `json:"error,omitempty"`
	ExtractedProfile *CandidateProfile `json:"extracted_profile,omitempty"`
	Diagnostics      *Diagnostics      `json:"diagnostics,omitempty"`
	ResumeID         *int64            `json:"resume_id,omitempty"`
	CandidateID      *int64            `json:"candidate_id,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Diagnostics keeps what the oracle actually said so a failed extraction can be
// inspected later.
type Diagnostics struct {
	RawResponse  string `json:"raw_response,omitempty"`
	RepairedJSON string `json:"repaired_json,omitempty"`
}

// ProcessingFailure is written onto a RawDocument when a pipeline run fails.
type ProcessingFailure struct {
	Error       string
	Partial     *CandidateProfile
	Diagnostics *Diagnostics
}

// ProcessingSuccess is written onto a RawDocument once its Resume is indexed.
type ProcessingSuccess struct {
	ResumeID    int64
	CandidateID int64
	Profile     *CandidateProfile
}

type RawDocumentRepository interface {
	Create(ctx context.Context, doc *RawDocument) error
	GetByID(ctx context.Context, id string) (*RawDocument, error)
	MarkProcessed(ctx context.Context, id string, result ProcessingSuccess) error
	MarkFailed(ctx context.Context, id string, failure ProcessingFailure) error
	Delete(ctx context.Context, id string) error
}

// BlobStore holds raw document bytes outside the database.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
