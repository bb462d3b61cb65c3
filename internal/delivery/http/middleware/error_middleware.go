package middleware

import (
	"errors"
	"net/http"

	"go-resume-screener/internal/delivery/http/response"
	"go-resume-screener/internal/domain"
	"go-resume-screener/pkg/apperror"
	"go-resume-screener/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// AppErrors keep their code; domain sentinels map to their HTTP status;
// anything else is logged and reported as a generic 500.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				log.Error("request failed", "path", c.FullPath(), "error", err)
			}
			var details interface{}
			if len(appErr.Details) > 0 {
				details = appErr.Details
			}
			response.Error(c, appErr.Code, appErr.Message, details)
			return
		}

		if code, msg, ok := domainStatus(err); ok {
			response.Error(c, code, msg, nil)
			return
		}

		// Never expose internal error details to clients.
		log.Error("internal server error", "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}

func domainStatus(err error) (int, string, bool) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Resource not found", true
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "Unsupported file format. Only PDF and DOCX are accepted", true
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "File exceeds the maximum upload size", true
	case errors.Is(err, domain.ErrEmptyQuery):
		return http.StatusBadRequest, "Query must not be empty", true
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "Candidate email already exists", true
	}
	return 0, "", false
}
