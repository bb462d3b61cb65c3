package apperror

import (
	"net/http"
	"strings"
)

// AppError is an error with a client-safe message and HTTP status. Details,
// when set, are rendered as the "error" field of the response envelope.
type AppError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	Err     error    `json:"-"`
}

func (e *AppError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

// Validation is a 400 listing one message per failed field.
func Validation(details []string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: "Validation failed", Details: details}
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, message, nil)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}
