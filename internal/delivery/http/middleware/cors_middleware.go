package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the configured frontend origins. Cross-origin
// requests from anywhere else are answered with 403; requests without an
// Origin header pass through.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return cors.New(cors.Config{
		AllowOriginFunc:  func(origin string) bool { return allowed[origin] },
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Content-Length", "Accept", "Origin", "Cache-Control", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	})
}
