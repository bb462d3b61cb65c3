package response

import (
	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key the RequestID middleware writes.
const RequestIDKey = "RequestID"

// Response standardizes the API JSON response
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Page wraps one page of a listing.
type Page struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// RequestID returns the id assigned to the current request, or "".
func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: RequestID(c),
	})
}

// Paginated sends a 200 with a Page as data.
func Paginated(c *gin.Context, code int, message string, items interface{}, total int64, page, pageSize int) {
	Success(c, code, message, Page{Items: items, Total: total, Page: page, PageSize: pageSize})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string, err interface{}) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     err,
		RequestID: RequestID(c),
	})
}
