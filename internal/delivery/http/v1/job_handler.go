package v1

import (
	"context"
	"net/http"
	"strings"

	"go-resume-screener/internal/delivery/http/response"
	"go-resume-screener/internal/domain"
	"go-resume-screener/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobUC     domain.JobUsecase
	rankingUC domain.RankingUsecase
}

// NewJobHandler mounts the job catalogue on r. recruiterOnly guards writes,
// inactive listings and ranking.
func NewJobHandler(r *gin.RouterGroup, jobUC domain.JobUsecase, rankingUC domain.RankingUsecase, recruiterOnly gin.HandlerFunc) {
	handler := &JobHandler{jobUC: jobUC, rankingUC: rankingUC}

	jobs := r.Group("/jobs")
	{
		jobs.GET("", handler.List)
		jobs.GET("/:id", handler.GetDetails)
	}

	manage := r.Group("/jobs", recruiterOnly)
	{
		manage.POST("", handler.Create)
		manage.PUT("/:id", handler.Update)
		manage.DELETE("/:id", handler.Delete)
		manage.GET("/:id/rank", handler.Rank)
		manage.GET("/:id/match-scores", handler.MatchScores)
		manage.GET("/:id/rank/export", handler.ExportRanking)
	}
}

type CreateJobRequest struct {
	Title              string   `json:"title" binding:"required"`
	Company            *string  `json:"company"`
	Location           *string  `json:"location"`
	Description        string   `json:"description"`
	Requirements       *string  `json:"requirements"`
	SkillsRequired     []string `json:"skills_required"`
	ExperienceRequired *float64 `json:"experience_required"`
	EducationRequired  []string `json:"education_required"`
}

// UpdateJobRequest is a partial update: omitted fields are left unchanged.
type UpdateJobRequest struct {
	Title              *string  `json:"title"`
	Company            *string  `json:"company"`
	Location           *string  `json:"location"`
	Description        *string  `json:"description"`
	Requirements       *string  `json:"requirements"`
	SkillsRequired     []string `json:"skills_required"`
	ExperienceRequired *float64 `json:"experience_required"`
	EducationRequired  []string `json:"education_required"`
	Active             *bool    `json:"active"`
}

// Create godoc
// @Summary      Create a job
// @Description  Create a job posting. Required skills are extracted from the description when none are given.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        job  body      CreateJobRequest  true  "Job JSON"
// @Success      201  {object}  response.Response{data=domain.Job}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /jobs [post]
// @Security     BearerAuth
func (h *JobHandler) Create(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	job := &domain.Job{
		Title:              req.Title,
		Company:            req.Company,
		Location:           req.Location,
		Description:        req.Description,
		Requirements:       req.Requirements,
		SkillsRequired:     req.SkillsRequired,
		ExperienceRequired: req.ExperienceRequired,
		EducationRequired:  req.EducationRequired,
	}

	userID := c.GetString(string(domain.KeyUserID))
	if err := h.jobUC.CreateJob(c.Request.Context(), userID, job); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Job created", job)
}

// List godoc
// @Summary      List jobs
// @Description  Paginated job list, newest first. Recruiters may pass include_inactive=true.
// @Tags         jobs
// @Produce      json
// @Param        page              query     int   false  "Page number"
// @Param        page_size         query     int   false  "Page size (max 100)"
// @Param        include_inactive  query     bool  false  "Include deactivated jobs (recruiters only)"
// @Success      200               {object}  response.Response{data=response.Page}
// @Router       /jobs [get]
// @Security     BearerAuth
func (h *JobHandler) List(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		c.Error(err)
		return
	}
	pageSize, err := queryInt(c, "page_size", 10)
	if err != nil {
		c.Error(err)
		return
	}
	includeInactive := c.Query("include_inactive") == "true" &&
		c.GetString(string(domain.KeyUserRole)) == domain.RoleRecruiter

	jobs, total, err := h.jobUC.ListJobs(c.Request.Context(), page, pageSize, includeInactive)
	if err != nil {
		c.Error(err)
		return
	}

	response.Paginated(c, http.StatusOK, "Job list", jobs, total, page, pageSize)
}

// GetDetails godoc
// @Summary      Get job details
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [get]
// @Security     BearerAuth
func (h *JobHandler) GetDetails(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}

	job, err := h.jobUC.GetJobDetails(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	// Deactivated jobs are only visible to recruiters.
	if !job.Active && c.GetString(string(domain.KeyUserRole)) != domain.RoleRecruiter {
		c.Error(apperror.NotFound("Job not found"))
		return
	}

	response.Success(c, http.StatusOK, "Job details", job)
}

// Update godoc
// @Summary      Update a job
// @Description  Partial update. Changing the description or requirements re-extracts skills unless skills_required is given.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id   path      int               true  "Job ID"
// @Param        job  body      UpdateJobRequest  true  "Fields to change"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [put]
// @Security     BearerAuth
func (h *JobHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	job, err := h.jobUC.UpdateJob(c.Request.Context(), id, domain.JobUpdate{
		Title:              req.Title,
		Company:            req.Company,
		Location:           req.Location,
		Description:        req.Description,
		Requirements:       req.Requirements,
		SkillsRequired:     req.SkillsRequired,
		ExperienceRequired: req.ExperienceRequired,
		EducationRequired:  req.EducationRequired,
		Active:             req.Active,
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job updated", job)
}

// Delete godoc
// @Summary      Deactivate a job
// @Description  Soft delete: the job stops appearing in listings but keeps its history.
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [delete]
// @Security     BearerAuth
func (h *JobHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.jobUC.DeleteJob(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job deactivated", nil)
}

// Rank godoc
// @Summary      Rank candidates for a job
// @Description  Semantic ranking of active resumes against the job text
// @Tags         ranking
// @Produce      json
// @Param        id     path      int  true   "Job ID"
// @Param        limit  query     int  false  "Max results (default 10, max 100)"
// @Success      200    {object}  response.Response{data=[]domain.RankedCandidate}
// @Failure      400    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /jobs/{id}/rank [get]
// @Security     BearerAuth
func (h *JobHandler) Rank(c *gin.Context) {
	h.rank(c, h.rankingUC.Rank, "Ranked candidates")
}

// MatchScores godoc
// @Summary      Attribute match scores for a job
// @Description  Weighted skills (0.5), experience (0.3) and education (0.2) score of every active resume
// @Tags         ranking
// @Produce      json
// @Param        id     path      int  true   "Job ID"
// @Param        limit  query     int  false  "Max results (default 10, max 100)"
// @Success      200    {object}  response.Response{data=[]domain.RankedCandidate}
// @Failure      404    {object}  response.Response
// @Router       /jobs/{id}/match-scores [get]
// @Security     BearerAuth
func (h *JobHandler) MatchScores(c *gin.Context) {
	h.rank(c, h.rankingUC.MatchScores, "Match scores")
}

type rankFunc func(ctx context.Context, jobID int64, limit int) ([]domain.RankedCandidate, error)

func (h *JobHandler) rank(c *gin.Context, fn rankFunc, msg string) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		c.Error(err)
		return
	}

	ranked, err := fn(c.Request.Context(), id, limit)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, msg, ranked)
}

// ExportRanking godoc
// @Summary      Export the ranking of a job
// @Description  Download the semantic ranking as an Excel workbook or CSV
// @Tags         ranking
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      text/csv
// @Param        id      path      int     true   "Job ID"
// @Param        limit   query     int     false  "Max rows (default 10, max 100)"
// @Param        format  query     string  false  "xlsx (default) or csv"
// @Success      200     {file}    file
// @Failure      400     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /jobs/{id}/rank/export [get]
// @Security     BearerAuth
func (h *JobHandler) ExportRanking(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		c.Error(err)
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", "xlsx"))

	data, filename, err := h.rankingUC.ExportRanking(c.Request.Context(), id, limit, format)
	if err != nil {
		c.Error(err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == "csv" {
		contentType = "text/csv"
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
