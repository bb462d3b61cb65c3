package validation_test

import (
	"testing"

	"go-resume-screener/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title          string   `validate:"required,max=10,no_emoji"`
	SkillsRequired []string `validate:"dive,skill"`
	Years          float64  `validate:"gte=0"`
}

func TestValidator(t *testing.T) {
	v := validation.New()

	t.Run("Should accept a valid struct", func(t *testing.T) {
		assert.NoError(t, v.Struct(sample{Title: "Go dev", SkillsRequired: []string{"go"}}))
	})

	t.Run("Should format every failed field", func(t *testing.T) {
		err := v.Struct(sample{Title: "", SkillsRequired: []string{"  "}, Years: -1})
		require.Error(t, err)
		msgs := validation.FormatValidationErrors(err)
		assert.Contains(t, msgs, "Title is required")
		assert.Contains(t, msgs, "Required skills entries must be non-empty and at most 100 characters")
		assert.Contains(t, msgs, "Years must be 0 or more")
	})

	t.Run("Should reject emoji", func(t *testing.T) {
		err := v.Struct(sample{Title: "Dev 🚀"})
		require.Error(t, err)
		assert.Equal(t, []string{"Title must not contain emoji or special symbols"}, validation.FormatValidationErrors(err))
	})
}
