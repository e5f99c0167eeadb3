package handlers

import (
	"codequest/internal/common"
	"codequest/internal/middlewares"
	"codequest/internal/models"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ProgressReader interface {
	GetOrInitializeProgress(ctx context.Context, userID string) (*models.UserProgress, error)
}

type UserHandler struct {
	progress ProgressReader
}

func NewUserHandler(progress ProgressReader) *UserHandler {
	return &UserHandler{progress: progress}
}

// GetStats returns the caller's progress, creating it on first visit.
func (h *UserHandler) GetStats(c *gin.Context) {
	userID, _ := middlewares.CurrentUserID(c)

	stats, err := h.progress.GetOrInitializeProgress(c.Request.Context(), userID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	userGroup := router.Group("/user", auth)
	{
		userGroup.GET("/stats", h.GetStats)
	}
}
