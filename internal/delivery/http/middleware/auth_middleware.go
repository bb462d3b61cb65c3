package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-resume-screener/config"
	"go-resume-screener/internal/delivery/http/response"
	"go-resume-screener/internal/domain"
	"go-resume-screener/pkg/auth"
	"go-resume-screener/pkg/logger"
	"go-resume-screener/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware verifies the bearer token (header or auth_token cookie) and
// stores the subject, email and locally registered role on the context. A
// valid token for a user who has not synced yet passes with an empty role;
// RequireRole rejects such requests on gated routes.
func AuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config, authUC domain.AuthUsecase, log *logger.Logger) gin.HandlerFunc {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			if cfg.JWTSecret == "" {
				return nil, fmt.Errorf("HS256 token received but JWT_SECRET is not configured")
			}
			return []byte(cfg.JWTSecret), nil
		case *jwt.SigningMethodRSA:
			if jwksProvider == nil {
				return nil, fmt.Errorf("RS256 token received but JWKS_URL is not configured")
			}
			return jwksProvider.KeyFunc(token)
		}
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	audit := security.NewAuditLogger(log)

	return func(c *gin.Context) {
		var tokenString string
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else if cookie, err := c.Cookie("auth_token"); err == nil {
			tokenString = cookie
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, keyFunc)
		if err != nil || !token.Valid {
			audit.Log(c.Request.Context(), security.SecurityEvent{
				Event:     security.EventUnauthorizedAccess,
				IP:        c.ClientIP(),
				RequestID: response.RequestID(c),
				Details:   map[string]interface{}{"reason": fmt.Sprint(err), "path": c.FullPath()},
			})
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}
		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if sub == "" {
			response.Error(c, http.StatusUnauthorized, "Token has no subject", nil)
			c.Abort()
			return
		}

		// The role comes from the local users table, never from the token.
		var role string
		user, err := authUC.GetCurrentUser(c.Request.Context(), sub)
		switch {
		case err == nil:
			role = user.Role
		case errors.Is(err, domain.ErrNotFound):
		default:
			log.Error("user lookup failed", "error", err)
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), sub)
		c.Set(string(domain.KeyUserEmail), email)
		c.Set(string(domain.KeyUserRole), role)

		c.Next()
	}
}

// RequireRole lets the request through only when the caller's registered
// role is one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(string(domain.KeyUserRole))
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		if role == "" {
			response.Error(c, http.StatusForbidden, "Account not registered. Call /auth/sync first", nil)
		} else {
			response.Error(c, http.StatusForbidden, "Insufficient permissions", nil)
		}
		c.Abort()
	}
}
