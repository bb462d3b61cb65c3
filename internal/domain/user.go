package domain

import (
	"context"
	"time"
)

const (
	RoleCandidate = "candidate"
	RoleRecruiter = "recruiter"
)

// CtxKey names the gin context values set by the auth middleware.
type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeyUserRole  CtxKey = "Role"
)

// IsValidRole reports whether role is one a user may register with.
func IsValidRole(role string) bool {
	return role == RoleCandidate || role == RoleRecruiter
}

type User struct {
	ID        string    `json:"id"` // identity provider subject
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
}

type AuthUsecase interface {
	EnsureUserExists(ctx context.Context, user *User) error
	GetCurrentUser(ctx context.Context, id string) (*User, error)
}
