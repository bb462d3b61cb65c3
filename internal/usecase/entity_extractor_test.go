package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go-resume-screener/internal/domain"
	"go-resume-screener/internal/usecase"
	"go-resume-screener/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type oracleFunc func(ctx context.Context, prompt string) (string, error)

func (f oracleFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func newExtractor(oracle domain.Oracle) domain.EntityExtractor {
	return usecase.NewEntityExtractor(oracle, usecase.EntityExtractorConfig{}, logger.Nop())
}

func extractionKind(t *testing.T, err error) *domain.ExtractionError {
	t.Helper()
	var extErr *domain.ExtractionError
	require.True(t, errors.As(err, &extErr), "expected *ExtractionError, got %T", err)
	return extErr
}

func TestEntityExtractor(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject blank input without calling the oracle", func(t *testing.T) {
		oracle := new(MockOracle)
		_, err := newExtractor(oracle).Extract(ctx, "  \n\t ")
		assert.ErrorIs(t, err, domain.ErrEmptyContent)
		oracle.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("Should repair and normalize a messy response", func(t *testing.T) {
		oracle := new(MockOracle)
		raw := "Sure! Here is the JSON:\n```json\n" +
			"{'name': 'Jane Doe', 'email': 'jane@example.com', 'phone': 5551234567, " +
			"'skills': [' Python ', 'SQL', 'python',], 'experience_years': ['acme', 'globex', 'initech'], " +
			"'education': ['BSc Computer Science', {'degree': 'MSc', 'institute': 'MIT'}], 'remote': True,}\n```"
		oracle.On("Complete", mock.Anything, mock.Anything).Return(raw, nil)

		profile, err := newExtractor(oracle).Extract(ctx, "Jane Doe resume text")
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", profile.Name)
		assert.Equal(t, "jane@example.com", profile.Email)
		require.NotNil(t, profile.Phone)
		assert.Equal(t, "5551234567", *profile.Phone)
		assert.Equal(t, []string{"python", "sql", "python"}, profile.Skills)
		assert.Equal(t, 3.0, profile.ExperienceYears)
		assert.Equal(t, []domain.EducationEntry{
			{Degree: "BSc Computer Science"},
			{Degree: "MSc", Institute: "MIT"},
		}, profile.Education)
	})

	t.Run("Should keep diagnostics when no JSON is present", func(t *testing.T) {
		oracle := new(MockOracle)
		oracle.On("Complete", mock.Anything, mock.Anything).Return("I could not read this resume.", nil)

		_, err := newExtractor(oracle).Extract(ctx, "some text")
		assert.ErrorIs(t, err, domain.ErrOracleParseFailure)
		extErr := extractionKind(t, err)
		assert.Equal(t, "I could not read this resume.", extErr.RawResponse)
	})

	t.Run("Should keep the repaired attempt when parsing fails", func(t *testing.T) {
		oracle := new(MockOracle)
		oracle.On("Complete", mock.Anything, mock.Anything).Return(`{"name": "Jane" "email" ::: }`, nil)

		_, err := newExtractor(oracle).Extract(ctx, "some text")
		assert.ErrorIs(t, err, domain.ErrOracleParseFailure)
		extErr := extractionKind(t, err)
		assert.NotEmpty(t, extErr.RepairedJSON)
	})

	t.Run("Should report missing required fields with the partial profile", func(t *testing.T) {
		oracle := new(MockOracle)
		oracle.On("Complete", mock.Anything, mock.Anything).
			Return(`{"name": "Jane Doe", "email": "", "skills": ["Go"], "experience_years": 2}`, nil)

		_, err := newExtractor(oracle).Extract(ctx, "some text")
		assert.ErrorIs(t, err, domain.ErrMissingRequiredFields)
		extErr := extractionKind(t, err)
		require.NotNil(t, extErr.Partial)
		assert.Equal(t, "Jane Doe", extErr.Partial.Name)
		assert.Equal(t, []string{"go"}, extErr.Partial.Skills)
	})

	t.Run("Should map oracle errors to extraction failure", func(t *testing.T) {
		oracle := new(MockOracle)
		oracle.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

		_, err := newExtractor(oracle).Extract(ctx, "some text")
		assert.ErrorIs(t, err, domain.ErrExtractionFailure)
	})

	t.Run("Should bound the oracle call with a timeout", func(t *testing.T) {
		blocking := oracleFunc(func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})
		ext := usecase.NewEntityExtractor(blocking, usecase.EntityExtractorConfig{Timeout: 20 * time.Millisecond}, logger.Nop())

		_, err := ext.Extract(ctx, "some text")
		assert.ErrorIs(t, err, domain.ErrExtractionFailure)
		assert.Contains(t, err.Error(), "timed out")
	})

	t.Run("Should sanitize and truncate the resume before prompting", func(t *testing.T) {
		var prompt string
		capture := oracleFunc(func(_ context.Context, p string) (string, error) {
			prompt = p
			return `{"name": "A", "email": "a@b.c"}`, nil
		})
		ext := usecase.NewEntityExtractor(capture, usecase.EntityExtractorConfig{MaxChars: 40}, logger.Nop())

		text := "“Quoted”\tC:\\path\x00\x07 end" + strings.Repeat("x", 100)
		_, err := ext.Extract(ctx, text)
		require.NoError(t, err)

		resume := prompt[strings.Index(prompt, "Resume content: ")+len("Resume content: "):]
		assert.Equal(t, `"Quoted" C:path end`+strings.Repeat("x", 18), resume)
	})
}

func TestEntityExtractorSkillNormalization(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name   string
		skills string
		want   []string
	}{
		{"mixed case and padding", `[" Go ", "PostgreSQL", "", "Kubernetes"]`, []string{"go", "postgresql", "kubernetes"}},
		{"already normalized", `["go", "postgresql", "kubernetes"]`, []string{"go", "postgresql", "kubernetes"}},
		{"duplicates kept", `["C++", "c++ "]`, []string{"c++", "c++"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reply := func(skills string) domain.Oracle {
				return oracleFunc(func(context.Context, string) (string, error) {
					return `{"name": "Jane", "email": "jane@example.com", "skills": ` + skills + `}`, nil
				})
			}

			first, err := newExtractor(reply(tc.skills)).Extract(ctx, "resume")
			require.NoError(t, err)
			assert.Equal(t, tc.want, first.Skills)

			quoted := make([]string, len(first.Skills))
			for i, s := range first.Skills {
				quoted[i] = `"` + s + `"`
			}
			second, err := newExtractor(reply("[" + strings.Join(quoted, ", ") + "]")).Extract(ctx, "resume")
			require.NoError(t, err)
			assert.Equal(t, first.Skills, second.Skills)
		})
	}
}

func TestEntityExtractorOverEscapedValues(t *testing.T) {
	oracle := oracleFunc(func(context.Context, string) (string, error) {
		return `{"name": \"Jane Doe\", "email": "jane@x.com", "summary": \"Senior dev\"}`, nil
	})
	profile, err := newExtractor(oracle).Extract(context.Background(), "resume")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", profile.Name)
	assert.Equal(t, "jane@x.com", profile.Email)
}

func TestEntityExtractorExperienceCoercion(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want float64
	}{
		{"negative number clamps to zero", `-3`, 0},
		{"numeric string is parsed", `"4.5"`, 4.5},
		{"free text defaults to zero", `"several"`, 0},
		{"missing defaults to zero", `null`, 0},
		{"plain number", `7`, 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			oracle := new(MockOracle)
			oracle.On("Complete", mock.Anything, mock.Anything).
				Return(`{"name": "A", "email": "a@b.c", "experience_years": `+tc.raw+`}`, nil)

			profile, err := newExtractor(oracle).Extract(context.Background(), "text")
			require.NoError(t, err)
			assert.Equal(t, tc.want, profile.ExperienceYears)
		})
	}
}

func TestSkillExtractor(t *testing.T) {
	ctx := context.Background()

	t.Run("Should parse and normalize a fenced array", func(t *testing.T) {
		oracle := new(MockOracle)
		oracle.On("Complete", mock.Anything, mock.Anything).Return("```json\n['Go', ' PostgreSQL ', 'Kubernetes',]\n```", nil)

		skills, err := usecase.NewSkillExtractor(oracle, time.Second).ExtractSkills(ctx, "Backend role")
		require.NoError(t, err)
		assert.Equal(t, []string{"go", "postgresql", "kubernetes"}, skills)
	})

	t.Run("Should truncate long descriptions", func(t *testing.T) {
		var prompt string
		capture := oracleFunc(func(_ context.Context, p string) (string, error) {
			prompt = p
			return `["go"]`, nil
		})
		_, err := usecase.NewSkillExtractor(capture, time.Second).ExtractSkills(ctx, strings.Repeat("Z", 5000))
		require.NoError(t, err)
		assert.Equal(t, 3000, strings.Count(prompt, "Z"))
	})

	t.Run("Should fail when no array is returned", func(t *testing.T) {
		oracle := new(MockOracle)
		oracle.On("Complete", mock.Anything, mock.Anything).Return("none", nil)

		_, err := usecase.NewSkillExtractor(oracle, time.Second).ExtractSkills(ctx, "text")
		assert.ErrorIs(t, err, domain.ErrOracleParseFailure)
	})
}
