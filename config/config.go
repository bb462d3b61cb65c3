package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	DBUrl       string
	LogMode     string
	FrontendURL string
	// Auth
	JWTSecret string
	JWKSURL   string
	// Redis
	RedisURL      string
	RedisPassword string
	// Rate limiting
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int
	UploadRatePerMinute      int
	MaxUploadSize            int64
	// Language model
	LLMProvider        string
	LLMModel           string
	LLMTimeout         time.Duration
	LLMRatePerSecond   float64
	GeminiAPIKey       string
	OllamaHost         string
	EmbeddingModel     string
	EmbeddingDim       int
	ExtractionMaxChars int
	// Ingestion
	WorkerConcurrency  int
	WorkerPollInterval time.Duration
	WorkerStaleAfter   time.Duration
	IngestMaxAttempts  int
	IngestRetryBase    time.Duration
	IngestRetryMax     time.Duration
	CompensationMode   string
	// Object storage. Bytes stay inline in Postgres when S3Bucket is empty.
	S3Bucket          string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Endpoint        string
	S3Prefix          string
	// Tracing
	OtelEnabled  bool
	OtelEndpoint string
	OtelInsecure bool
}

var defaults = map[string]interface{}{
	"PORT":                        "8080",
	"LOG_MODE":                    "production",
	"FRONTEND_URL":                "http://localhost:3000",
	"RATE_LIMIT_WINDOW_SECONDS":   60,
	"RATE_LIMIT_GLOBAL_THRESHOLD": 100,
	"UPLOAD_RATE_PER_MINUTE":      10,
	"MAX_UPLOAD_SIZE":             5 << 20,
	"LLM_PROVIDER":                "ollama",
	"LLM_MODEL":                   "llama3",
	"LLM_TIMEOUT":                 "300s",
	"LLM_RATE_PER_SECOND":         0,
	"OLLAMA_HOST":                 "http://localhost:11434",
	"EMBEDDING_MODEL":             "nomic-embed-text",
	"EMBEDDING_DIM":               768,
	"EXTRACTION_MAX_CHARS":        4000,
	"WORKER_CONCURRENCY":          2,
	"WORKER_POLL_INTERVAL":        "2s",
	"WORKER_STALE_AFTER":          "15m",
	"INGEST_MAX_ATTEMPTS":         4,
	"INGEST_RETRY_BASE":           "10s",
	"INGEST_RETRY_MAX":            "5m",
	"COMPENSATION_MODE":           "leak",
	"S3_REGION":                   "us-east-1",
	"S3_PREFIX":                   "resumes",
	"OTEL_ENABLED":                false,
	"OTEL_INSECURE":               false,
}

// New returns a viper instance that reads the environment (and a local .env
// file when present) with the service defaults applied. cmd/api binds its
// flags onto the same instance before calling Load.
func New() *viper.Viper {
	// Only effective locally; production has no .env file.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

func LoadConfig() (*Config, error) {
	return Load(New())
}

func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:        v.GetString("PORT"),
		DBUrl:       v.GetString("DATABASE_URL"),
		LogMode:     v.GetString("LOG_MODE"),
		FrontendURL: strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWKSURL:   v.GetString("JWKS_URL"),

		RedisURL:      v.GetString("REDIS_URL"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		RateLimitWindowSeconds:   v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		RateLimitGlobalThreshold: v.GetInt("RATE_LIMIT_GLOBAL_THRESHOLD"),
		UploadRatePerMinute:      v.GetInt("UPLOAD_RATE_PER_MINUTE"),
		MaxUploadSize:            v.GetInt64("MAX_UPLOAD_SIZE"),

		LLMProvider:        strings.ToLower(v.GetString("LLM_PROVIDER")),
		LLMModel:           v.GetString("LLM_MODEL"),
		LLMTimeout:         v.GetDuration("LLM_TIMEOUT"),
		LLMRatePerSecond:   v.GetFloat64("LLM_RATE_PER_SECOND"),
		GeminiAPIKey:       v.GetString("GEMINI_API_KEY"),
		OllamaHost:         strings.TrimRight(v.GetString("OLLAMA_HOST"), "/"),
		EmbeddingModel:     v.GetString("EMBEDDING_MODEL"),
		EmbeddingDim:       v.GetInt("EMBEDDING_DIM"),
		ExtractionMaxChars: v.GetInt("EXTRACTION_MAX_CHARS"),

		WorkerConcurrency:  v.GetInt("WORKER_CONCURRENCY"),
		WorkerPollInterval: v.GetDuration("WORKER_POLL_INTERVAL"),
		WorkerStaleAfter:   v.GetDuration("WORKER_STALE_AFTER"),
		IngestMaxAttempts:  v.GetInt("INGEST_MAX_ATTEMPTS"),
		IngestRetryBase:    v.GetDuration("INGEST_RETRY_BASE"),
		IngestRetryMax:     v.GetDuration("INGEST_RETRY_MAX"),
		CompensationMode:   strings.ToLower(v.GetString("COMPENSATION_MODE")),

		S3Bucket:          v.GetString("S3_BUCKET"),
		S3Region:          v.GetString("S3_REGION"),
		S3AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
		S3Endpoint:        v.GetString("S3_ENDPOINT"),
		S3Prefix:          v.GetString("S3_PREFIX"),

		OtelEnabled:  v.GetBool("OTEL_ENABLED"),
		OtelEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelInsecure: v.GetBool("OTEL_INSECURE"),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting falls back to memory and workers poll.")
	}
	if cfg.JWTSecret == "" && cfg.JWKSURL == "" {
		log.Println("WARNING: neither JWT_SECRET nor JWKS_URL is set. All protected routes will reject requests.")
	}

	return cfg, nil
}

// AllowedOrigins splits FRONTEND_URL on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.LogMode == "production"
}
