package config_test

import (
	"testing"
	"time"

	"go-resume-screener/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should apply defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/screener")

		cfg, err := config.LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "ollama", cfg.LLMProvider)
		assert.Equal(t, 768, cfg.EmbeddingDim)
		assert.Equal(t, int64(5<<20), cfg.MaxUploadSize)
		assert.Equal(t, 2*time.Second, cfg.WorkerPollInterval)
		assert.Equal(t, 5*time.Minute, cfg.IngestRetryMax)
		assert.Equal(t, 4, cfg.IngestMaxAttempts)
		assert.Equal(t, "leak", cfg.CompensationMode)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("Should read overrides from the environment", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("LOG_MODE", "development")
		t.Setenv("LLM_PROVIDER", "Gemini")
		t.Setenv("COMPENSATION_MODE", "STRICT")
		t.Setenv("WORKER_CONCURRENCY", "6")
		t.Setenv("INGEST_RETRY_BASE", "1s")
		t.Setenv("OLLAMA_HOST", "http://ollama:11434/")

		cfg, err := config.LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, "gemini", cfg.LLMProvider)
		assert.Equal(t, "strict", cfg.CompensationMode)
		assert.Equal(t, 6, cfg.WorkerConcurrency)
		assert.Equal(t, time.Second, cfg.IngestRetryBase)
		assert.Equal(t, "http://ollama:11434", cfg.OllamaHost)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("Should let values set on the viper instance win", func(t *testing.T) {
		t.Setenv("PORT", "9090")

		v := config.New()
		v.Set("PORT", "7070")

		cfg, err := config.Load(v)
		require.NoError(t, err)
		assert.Equal(t, "7070", cfg.Port)
	})
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &config.Config{FrontendURL: " https://app.example.com/, ,http://localhost:3000"}

	assert.Equal(t, []string{"https://app.example.com", "http://localhost:3000"}, cfg.AllowedOrigins())
	assert.Nil(t, (&config.Config{}).AllowedOrigins())
}
