package v1

import (
	"net/http"

	"go-resume-screener/internal/delivery/http/response"
	"go-resume-screener/internal/domain"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	rankingUC domain.RankingUsecase
}

func NewSearchHandler(r *gin.RouterGroup, rankingUC domain.RankingUsecase) {
	handler := &SearchHandler{rankingUC: rankingUC}

	search := r.Group("/search")
	{
		search.GET("/semantic", handler.Semantic)
		search.GET("/hybrid", handler.Hybrid)
	}
}

// Semantic godoc
// @Summary      Semantic resume search
// @Description  Nearest resumes to the query text, scored 1 - cosine distance
// @Tags         search
// @Produce      json
// @Param        query  query     string  true   "Free text query"
// @Param        limit  query     int     false  "Max results (default 10, max 100)"
// @Success      200    {object}  response.Response{data=[]domain.SearchHit}
// @Failure      400    {object}  response.Response
// @Router       /search/semantic [get]
// @Security     BearerAuth
func (h *SearchHandler) Semantic(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		c.Error(err)
		return
	}

	hits, err := h.rankingUC.SearchText(c.Request.Context(), c.Query("query"), limit)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Semantic search results", hits)
}

// Hybrid godoc
// @Summary      Hybrid resume search
// @Description  Semantic hits first, then keyword matches on resume text not already returned
// @Tags         search
// @Produce      json
// @Param        query  query     string  true   "Free text query"
// @Param        limit  query     int     false  "Max results (default 10, max 100)"
// @Success      200    {object}  response.Response{data=[]domain.SearchHit}
// @Failure      400    {object}  response.Response
// @Router       /search/hybrid [get]
// @Security     BearerAuth
func (h *SearchHandler) Hybrid(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		c.Error(err)
		return
	}

	hits, err := h.rankingUC.HybridSearch(c.Request.Context(), c.Query("query"), limit)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Hybrid search results", hits)
}
