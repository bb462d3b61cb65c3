package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVs(t *testing.T) {
	t.Run("Should redact secret-like keys", func(t *testing.T) {
		out := sanitizeKVs([]interface{}{"api_key", "abc", "task_id", "t-1", "Candidate_Email", "a@b.c"})
		assert.Equal(t, []interface{}{"api_key", "[REDACTED]", "task_id", "t-1", "Candidate_Email", "[REDACTED]"}, out)
	})

	t.Run("Should keep a dangling key", func(t *testing.T) {
		out := sanitizeKVs([]interface{}{"task_id", "t-1", "orphan"})
		assert.Equal(t, []interface{}{"task_id", "t-1", "orphan"}, out)
	})
}
