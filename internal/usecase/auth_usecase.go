package usecase

import (
	"context"
	"errors"
	"time"

	"go-resume-screener/internal/domain"
	"go-resume-screener/pkg/apperror"
)

type authUsecase struct {
	userRepo domain.UserRepository
}

func NewAuthUsecase(userRepo domain.UserRepository) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo}
}

func (u *authUsecase) EnsureUserExists(ctx context.Context, user *domain.User) error {
	if user.Role != "" && !domain.IsValidRole(user.Role) {
		return apperror.BadRequest("role must be candidate or recruiter")
	}

	existing, err := u.userRepo.GetByID(ctx, user.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	// If exists, sync the role when a different one was supplied
	if existing != nil {
		if user.Role != "" && existing.Role != user.Role {
			existing.Role = user.Role
			existing.UpdatedAt = time.Now()
			return u.userRepo.Update(ctx, existing)
		}
		return nil
	}

	if user.Role == "" {
		user.Role = domain.RoleCandidate
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	return u.userRepo.Create(ctx, user)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	return u.userRepo.GetByID(ctx, id)
}
