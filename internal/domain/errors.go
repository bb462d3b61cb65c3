package domain

import "errors"

// Pipeline errors. Components wrap these with fmt.Errorf("...: %w", ...) so
// callers can branch with errors.Is.
var (
	ErrNotFound              = errors.New("resource not found")
	ErrUnsupportedFormat     = errors.New("unsupported document format")
	ErrExtractionFailure     = errors.New("extraction failed")
	ErrEmptyContent          = errors.New("document has no text content")
	ErrMissingRequiredFields = errors.New("missing required fields")
	ErrOracleParseFailure    = errors.New("oracle response could not be parsed")
	ErrIndexingFailure       = errors.New("semantic indexing failed")
	ErrEmptyQuery            = errors.New("empty ranking query")
	ErrDuplicateEmail        = errors.New("candidate email already exists")
	ErrFileTooLarge          = errors.New("file exceeds maximum upload size")
)
