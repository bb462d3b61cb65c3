package v1

import (
	"net/http"

	"go-resume-screener/internal/delivery/http/response"
	"go-resume-screener/internal/domain"
	"go-resume-screener/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC domain.AuthUsecase
}

func NewAuthHandler(r *gin.RouterGroup, authUC domain.AuthUsecase) {
	handler := &AuthHandler{authUC: authUC}

	auth := r.Group("/auth")
	{
		auth.POST("/sync", handler.SyncProfile)
		auth.GET("/me", handler.Me)
	}
}

type SyncRequest struct {
	Role string `json:"role" binding:"omitempty,oneof=candidate recruiter"`
}

// SyncProfile godoc
// @Summary      Register or update the caller
// @Description  Creates the local user for the token subject, or updates its role. New users default to candidate.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      SyncRequest  false  "Requested role"
// @Success      200      {object}  response.Response{data=domain.User}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /auth/sync [post]
// @Security     BearerAuth
func (h *AuthHandler) SyncProfile(c *gin.Context) {
	var req SyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.BadRequest(err.Error()))
			return
		}
	}

	user := &domain.User{
		ID:    c.GetString(string(domain.KeyUserID)),
		Email: c.GetString(string(domain.KeyUserEmail)),
		Role:  req.Role,
	}
	if user.Email == "" {
		c.Error(apperror.BadRequest("token carries no email claim"))
		return
	}

	if err := h.authUC.EnsureUserExists(c.Request.Context(), user); err != nil {
		c.Error(err)
		return
	}

	current, err := h.authUC.GetCurrentUser(c.Request.Context(), user.ID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile synced", current)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUC.GetCurrentUser(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "User details", user)
}
