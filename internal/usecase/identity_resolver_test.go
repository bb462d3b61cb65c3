package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go-resume-screener/internal/domain"
	"go-resume-screener/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestIdentityResolver(t *testing.T) {
	ctx := context.Background()
	profile := &domain.CandidateProfile{Name: "Jane Doe", Email: "jane@example.com", Phone: strPtr("555")}

	t.Run("Should create a candidate for an unseen email", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		repo.On("GetByEmail", ctx, "jane@example.com").Return(nil, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(c *domain.Candidate) bool {
			return c.Name == "Jane Doe" && c.Email == "jane@example.com" && *c.Phone == "555"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Candidate).ID = 1
		}).Return(nil)

		cand, action, err := usecase.NewIdentityResolver(repo).Resolve(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, domain.ResolveCreated, action)
		assert.Equal(t, int64(1), cand.ID)
	})

	t.Run("Should reuse an existing candidate unchanged", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		existing := &domain.Candidate{ID: 7, Name: "J. Doe", Email: "jane@example.com"}
		repo.On("GetByEmail", ctx, "jane@example.com").Return(existing, nil)

		cand, action, err := usecase.NewIdentityResolver(repo).Resolve(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, domain.ResolveUpdated, action)
		assert.Equal(t, "J. Doe", cand.Name)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should fall back to the winner of a concurrent insert", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		winner := &domain.Candidate{ID: 9, Name: "Jane Doe", Email: "jane@example.com"}
		repo.On("GetByEmail", ctx, "jane@example.com").Return(nil, nil).Once()
		repo.On("Create", ctx, mock.Anything).Return(domain.ErrDuplicateEmail)
		repo.On("GetByEmail", ctx, "jane@example.com").Return(winner, nil).Once()

		cand, action, err := usecase.NewIdentityResolver(repo).Resolve(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, domain.ResolveUpdated, action)
		assert.Equal(t, int64(9), cand.ID)
	})

	t.Run("Should surface store errors", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		repo.On("GetByEmail", ctx, "jane@example.com").Return(nil, errors.New("db down"))

		_, _, err := usecase.NewIdentityResolver(repo).Resolve(ctx, profile)
		assert.Error(t, err)
	})
}
