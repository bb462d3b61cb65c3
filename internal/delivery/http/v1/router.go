package v1

import (
	"context"
	"net/http"
	"time"

	"go-resume-screener/config"
	"go-resume-screener/internal/delivery/http/middleware"
	"go-resume-screener/internal/delivery/http/response"
	"go-resume-screener/internal/domain"
	"go-resume-screener/pkg/auth"
	"go-resume-screener/pkg/logger"
	"go-resume-screener/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type HealthChecker interface {
	Check(ctx context.Context) map[string]string
}

type RouterDeps struct {
	AuthUC        domain.AuthUsecase
	JobUC         domain.JobUsecase
	CandidateUC   domain.CandidateUsecase
	IngestionUC   domain.IngestionUsecase
	RankingUC     domain.RankingUsecase
	HealthUC      HealthChecker
	JWKSProvider  *auth.Provider
	Config        *config.Config
	Redis         *goredis.Client // optional
	UploadLimiter *security.UploadLimiter
	Logger        *logger.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	log := deps.Logger
	cfg := deps.Config

	// CORS must be first so preflights short-circuit.
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins()))
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(otelgin.Middleware("go-resume-screener"))
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	r.Use(middleware.ErrorHandler(log))

	v1 := r.Group("/v1")
	v1.Use(middleware.RateLimitMiddleware(deps.Redis, log, middleware.DefaultRateLimitConfig(
		cfg.RateLimitGlobalThreshold,
		time.Duration(cfg.RateLimitWindowSeconds)*time.Second,
	)))

	v1.GET("/health", func(c *gin.Context) {
		status := deps.HealthUC.Check(c.Request.Context())
		if status["status"] != "ok" {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, cfg, deps.AuthUC, log))
	{
		NewAuthHandler(protected, deps.AuthUC)

		registered := protected.Group("", middleware.RequireRole(domain.RoleCandidate, domain.RoleRecruiter))
		NewResumeHandler(registered, deps.IngestionUC, cfg.MaxUploadSize, middleware.UploadRateLimit(deps.UploadLimiter, log))
		NewJobHandler(registered, deps.JobUC, deps.RankingUC, middleware.RequireRole(domain.RoleRecruiter))

		recruiters := protected.Group("", middleware.RequireRole(domain.RoleRecruiter))
		NewCandidateHandler(recruiters, deps.CandidateUC, deps.RankingUC)
		NewSearchHandler(recruiters, deps.RankingUC)
	}

	return r
}
