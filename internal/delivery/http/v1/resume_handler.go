package v1

import (
	"errors"
	"io"
	"net/http"

	"go-resume-screener/internal/delivery/http/response"
	"go-resume-screener/internal/domain"
	"go-resume-screener/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// multipart framing allowance on top of the file itself
const multipartOverhead = 1 << 20

type ResumeHandler struct {
	ingestionUC   domain.IngestionUsecase
	maxUploadSize int64
}

func NewResumeHandler(r *gin.RouterGroup, ingestionUC domain.IngestionUsecase, maxUploadSize int64, uploadLimit gin.HandlerFunc) {
	handler := &ResumeHandler{ingestionUC: ingestionUC, maxUploadSize: maxUploadSize}

	resumes := r.Group("/resumes")
	{
		resumes.POST("", uploadLimit, handler.Upload)
		resumes.GET("/tasks/:id", handler.TaskStatus)
	}
}

// Upload godoc
// @Summary      Upload a resume
// @Description  Accepts a PDF or DOCX resume and queues it for extraction. Poll the returned task id for the result.
// @Tags         resumes
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Resume file (.pdf or .docx)"
// @Success      202   {object}  response.Response{data=domain.SubmitResult}
// @Failure      400   {object}  response.Response
// @Failure      413   {object}  response.Response
// @Failure      415   {object}  response.Response
// @Failure      429   {object}  response.Response
// @Router       /resumes [post]
// @Security     BearerAuth
func (h *ResumeHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Error(domain.ErrFileTooLarge)
			return
		}
		c.Error(apperror.BadRequest("file is required"))
		return
	}
	if fileHeader.Size > h.maxUploadSize {
		c.Error(domain.ErrFileTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.BadRequest("could not read uploaded file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		c.Error(apperror.BadRequest("could not read uploaded file"))
		return
	}

	result, err := h.ingestionUC.Submit(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusAccepted, "Resume queued for processing", result)
}

// TaskStatus godoc
// @Summary      Get ingestion task status
// @Description  Reports whether the uploaded resume has been processed, and the resulting ids or error.
// @Tags         resumes
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response{data=domain.TaskStatus}
// @Failure      404  {object}  response.Response
// @Router       /resumes/tasks/{id} [get]
// @Security     BearerAuth
func (h *ResumeHandler) TaskStatus(c *gin.Context) {
	status, err := h.ingestionUC.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Task status", status)
}
