package v1

import (
	"net/http"

	"go-resume-screener/internal/delivery/http/response"
	"go-resume-screener/internal/domain"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	candidateUC domain.CandidateUsecase
	rankingUC   domain.RankingUsecase
}

func NewCandidateHandler(r *gin.RouterGroup, candidateUC domain.CandidateUsecase, rankingUC domain.RankingUsecase) {
	handler := &CandidateHandler{candidateUC: candidateUC, rankingUC: rankingUC}

	candidates := r.Group("/candidates")
	{
		candidates.GET("/search", handler.SearchBySkills)
		candidates.GET("/:id", handler.GetDetails)
	}
}

// SearchBySkills godoc
// @Summary      Search candidates by skills
// @Description  Candidates whose active resume lists any of the skills. Falls back to trigram similarity when nothing matches exactly.
// @Tags         candidates
// @Produce      json
// @Param        skills  query     string  true  "Comma separated skills"
// @Success      200     {object}  response.Response{data=[]domain.SkillMatch}
// @Failure      400     {object}  response.Response
// @Failure      403     {object}  response.Response
// @Router       /candidates/search [get]
// @Security     BearerAuth
func (h *CandidateHandler) SearchBySkills(c *gin.Context) {
	matches, err := h.rankingUC.SearchBySkills(c.Request.Context(), splitList(c.Query("skills")))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Candidate search results", gin.H{
		"candidates": matches,
		"total":      len(matches),
	})
}

// GetDetails godoc
// @Summary      Get candidate details
// @Description  A candidate with all of their resumes
// @Tags         candidates
// @Produce      json
// @Param        id   path      int  true  "Candidate ID"
// @Success      200  {object}  response.Response{data=domain.CandidateWithResumes}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id} [get]
// @Security     BearerAuth
func (h *CandidateHandler) GetDetails(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}

	candidate, err := h.candidateUC.GetCandidate(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Candidate details", candidate)
}
