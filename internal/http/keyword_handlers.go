package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-builders/satchat-backend/internal/common/middleware"
	"github.com/open-builders/satchat-backend/internal/domain/keyword"
	keywordsvc "github.com/open-builders/satchat-backend/internal/service/keyword"
)

type KeywordHandlers struct {
	keywords *keywordsvc.Service
}

func NewKeywordHandlers(keywords *keywordsvc.Service) *KeywordHandlers {
	return &KeywordHandlers{keywords: keywords}
}

func (h *KeywordHandlers) RegisterPublicRoutes(router gin.IRoutes) {
	router.GET("/keywords", h.list)
}

func (h *KeywordHandlers) RegisterAdminRoutes(router gin.IRoutes) {
	router.GET("/keywords", h.list)
	router.PUT("/keywords/:keyword", h.upsert)
	router.DELETE("/keywords/:keyword", h.delete)
}

// @Summary List reward keywords
// @Description Rules in the order their multipliers are applied.
// @Tags keywords
// @Produce json
// @Success 200 {object} KeywordsResponse
// @Router /api/v1/keywords [get]
func (h *KeywordHandlers) list(c *gin.Context) {
	rules, err := h.keywords.List(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	if rules == nil {
		rules = []keyword.Rule{}
	}
	c.JSON(http.StatusOK, KeywordsResponse{Items: rules})
}

// @Summary Create or update a keyword
// @Tags admin
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param keyword path string true "Keyword"
// @Param request body UpsertKeywordRequest true "Multiplier"
// @Success 200 {object} keyword.Rule
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /api/v1/admin/keywords/{keyword} [put]
func (h *KeywordHandlers) upsert(c *gin.Context) {
	var req UpsertKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, bindError(err, "multiplier"))
		return
	}
	rule, err := h.keywords.Upsert(c.Request.Context(), c.Param("keyword"), req.Multiplier)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// @Summary Delete a keyword
// @Tags admin
// @Security TelegramInitData
// @Param keyword path string true "Keyword"
// @Success 204
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /api/v1/admin/keywords/{keyword} [delete]
func (h *KeywordHandlers) delete(c *gin.Context) {
	if err := h.keywords.Delete(c.Request.Context(), c.Param("keyword")); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
