package handlers

import (
	"codequest/internal/common"
	"codequest/internal/middlewares"
	"codequest/internal/models"
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Submitter interface {
	Submit(ctx context.Context, userID string, problemID int, req models.SubmitCodeRequest) (*models.SubmitCodeResponse, error)
	ListSubmissions(ctx context.Context, userID string, problemID int) ([]models.Submission, error)
}

type SubmissionHandler struct {
	submissions Submitter
}

func NewSubmissionHandler(submissions Submitter) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// CreateSubmission evaluates the posted code and records the attempt.
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	problemID, ok := problemIDParam(c)
	if !ok {
		return
	}

	var req models.SubmitCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, bindingError(err))
		return
	}

	userID, _ := middlewares.CurrentUserID(c)
	resp, err := h.submissions.Submit(c.Request.Context(), userID, problemID, req)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetUserSubmissions returns the caller's history for one problem, newest
// first.
func (h *SubmissionHandler) GetUserSubmissions(c *gin.Context) {
	problemID, ok := problemIDParam(c)
	if !ok {
		return
	}

	userID, _ := middlewares.CurrentUserID(c)
	submissions, err := h.submissions.ListSubmissions(c.Request.Context(), userID, problemID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

// problemIDParam reads the :slug segment shared with the problem routes as a
// numeric problem id.
func problemIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("slug"))
	if err != nil || id <= 0 {
		common.RespondError(c, common.NewValidationError("id", "Invalid problem ID"))
		return 0, false
	}
	return id, true
}

// RegisterRoutes mounts under /problems; gin requires the wildcard name to
// match the one used by the problem routes.
func (h *SubmissionHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	submissionGroup := router.Group("/problems/:slug", auth)
	{
		submissionGroup.POST("/submit", h.CreateSubmission)
		submissionGroup.GET("/submissions", h.GetUserSubmissions)
	}
}
