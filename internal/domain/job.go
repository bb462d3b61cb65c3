package domain

import (
	"context"
	"time"
)

type Job struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title" validate:"required,max=200,no_emoji"`
	Company            *string   `json:"company,omitempty"`
	Location           *string   `json:"location,omitempty"`
	Description        string    `json:"description" validate:"max=20000"`
	Requirements       *string   `json:"requirements,omitempty"`
	SkillsRequired     []string  `json:"skills_required" validate:"dive,skill"`
	ExperienceRequired *float64  `json:"experience_required,omitempty" validate:"omitempty,gte=0"`
	EducationRequired  []string  `json:"education_required"`
	Active             bool      `json:"active"`
	CreatedBy          string    `json:"created_by"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// JobUpdate carries a partial update. Nil fields are left unchanged.
type JobUpdate struct {
	Title              *string
	Company            *string
	Location           *string
	Description        *string
	Requirements       *string
	SkillsRequired     []string
	ExperienceRequired *float64
	EducationRequired  []string
	Active             *bool
}

type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id int64) (*Job, error)
	Fetch(ctx context.Context, limit, offset int, includeInactive bool) ([]Job, int64, error)
	Update(ctx context.Context, job *Job) error
	Deactivate(ctx context.Context, id int64) error
}

type JobUsecase interface {
	CreateJob(ctx context.Context, userID string, job *Job) error
	GetJobDetails(ctx context.Context, id int64) (*Job, error)
	ListJobs(ctx context.Context, page, pageSize int, includeInactive bool) ([]Job, int64, error)
	UpdateJob(ctx context.Context, id int64, update JobUpdate) (*Job, error)
	DeleteJob(ctx context.Context, id int64) error
}
