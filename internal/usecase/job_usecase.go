package usecase

import (
	"context"
	"strings"
	"time"

	"go-resume-screener/internal/domain"
	"go-resume-screener/pkg/apperror"
	"go-resume-screener/pkg/logger"
	"go-resume-screener/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type jobUsecase struct {
	jobRepo  domain.JobRepository
	skills   domain.SkillExtractor
	validate *validator.Validate
	log      *logger.Logger
}

func NewJobUsecase(jobRepo domain.JobRepository, skills domain.SkillExtractor, validate *validator.Validate, log *logger.Logger) domain.JobUsecase {
	return &jobUsecase{
		jobRepo:  jobRepo,
		skills:   skills,
		validate: validate,
		log:      log.With("component", "jobs"),
	}
}

func (u *jobUsecase) CreateJob(ctx context.Context, userID string, job *domain.Job) error {
	job.Title = strings.TrimSpace(job.Title)
	explicit := len(job.SkillsRequired) > 0
	job.SkillsRequired = normalizeSkills(job.SkillsRequired)
	if err := u.validate.Struct(job); err != nil {
		return apperror.Validation(validation.FormatValidationErrors(err))
	}

	if !explicit {
		job.SkillsRequired = u.extractSkills(ctx, job)
	}

	job.Active = true
	job.CreatedBy = userID
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt

	return u.jobRepo.Create(ctx, job)
}

// extractSkills asks the oracle for the skills a job describes. An oracle
// failure leaves the list empty rather than failing the write.
func (u *jobUsecase) extractSkills(ctx context.Context, job *domain.Job) []string {
	text := job.Description
	if job.Requirements != nil {
		text += " " + *job.Requirements
	}
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	skills, err := u.skills.ExtractSkills(ctx, text)
	if err != nil {
		u.log.Warn("skill extraction failed", "job_title", job.Title, "error", err)
		return []string{}
	}
	return skills
}

func (u *jobUsecase) GetJobDetails(ctx context.Context, id int64) (*domain.Job, error) {
	return u.jobRepo.GetByID(ctx, id)
}

func (u *jobUsecase) ListJobs(ctx context.Context, page, pageSize int, includeInactive bool) ([]domain.Job, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	return u.jobRepo.Fetch(ctx, pageSize, offset, includeInactive)
}

func (u *jobUsecase) UpdateJob(ctx context.Context, id int64, update domain.JobUpdate) (*domain.Job, error) {
	job, err := u.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		job.Title = strings.TrimSpace(*update.Title)
	}
	if update.Company != nil {
		job.Company = update.Company
	}
	if update.Location != nil {
		job.Location = update.Location
	}
	if update.Description != nil {
		job.Description = *update.Description
	}
	if update.Requirements != nil {
		job.Requirements = update.Requirements
	}
	if update.ExperienceRequired != nil {
		job.ExperienceRequired = update.ExperienceRequired
	}
	if update.EducationRequired != nil {
		job.EducationRequired = update.EducationRequired
	}
	if update.Active != nil {
		job.Active = *update.Active
	}
	if update.SkillsRequired != nil {
		job.SkillsRequired = normalizeSkills(update.SkillsRequired)
	}

	if err := u.validate.Struct(job); err != nil {
		return nil, apperror.Validation(validation.FormatValidationErrors(err))
	}

	textChanged := update.Description != nil || update.Requirements != nil
	if update.SkillsRequired == nil && textChanged {
		if skills := u.extractSkills(ctx, job); len(skills) > 0 {
			job.SkillsRequired = skills
		}
	}

	job.UpdatedAt = time.Now()
	if err := u.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// DeleteJob deactivates the job; it stays readable by id.
func (u *jobUsecase) DeleteJob(ctx context.Context, id int64) error {
	return u.jobRepo.Deactivate(ctx, id)
}
