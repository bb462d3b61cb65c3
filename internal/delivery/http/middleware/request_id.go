package middleware

import (
	"go-resume-screener/internal/delivery/http/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses a caller-supplied X-Request-ID or generates one, stores it
// under response.RequestIDKey for the envelope and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(response.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
