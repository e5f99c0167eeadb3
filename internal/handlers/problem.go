package handlers

import (
	"codequest/internal/common"
	"codequest/internal/middlewares"
	"codequest/internal/models"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CatalogReader interface {
	ListProblemsWithStatus(ctx context.Context, userID, category string) ([]models.ProblemWithStatus, error)
	GetProblemWithStatus(ctx context.Context, userID, slug string) (*models.ProblemWithStatus, error)
	GetHackathons(ctx context.Context) ([]models.Hackathon, error)
}

type ProblemHandler struct {
	catalog CatalogReader
}

func NewProblemHandler(catalog CatalogReader) *ProblemHandler {
	return &ProblemHandler{catalog: catalog}
}

// GetProblems lists the catalog with the caller's solved flags.
func (h *ProblemHandler) GetProblems(c *gin.Context) {
	userID, _ := middlewares.CurrentUserID(c)

	problems, err := h.catalog.ListProblemsWithStatus(c.Request.Context(), userID, c.Query("category"))
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, problems)
}

func (h *ProblemHandler) GetProblemBySlug(c *gin.Context) {
	userID, _ := middlewares.CurrentUserID(c)

	problem, err := h.catalog.GetProblemWithStatus(c.Request.Context(), userID, c.Param("slug"))
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, problem)
}

func (h *ProblemHandler) RegisterRoutes(router *gin.RouterGroup, optionalAuth gin.HandlerFunc) {
	problemGroup := router.Group("/problems", optionalAuth)
	{
		problemGroup.GET("", h.GetProblems)
		problemGroup.GET("/:slug", h.GetProblemBySlug)
	}
}
