package common

import (
	"codequest/internal/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// RespondError writes err as {"message": ...}. Server-side failures are logged
// and replaced by a generic message.
func RespondError(c *gin.Context, err error) {
	status := HTTPStatusFromError(err)

	if status >= http.StatusInternalServerError {
		logger.Log.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err))

		message := "Internal server error"
		if status == http.StatusServiceUnavailable {
			message = "Service temporarily unavailable"
		}
		c.AbortWithStatusJSON(status, ErrorResponse{Message: message})
		return
	}

	body := ErrorResponse{Message: err.Error()}
	var validationErr *ValidationError
	var notFoundErr *NotFoundError
	switch {
	case errors.As(err, &validationErr):
		body.Message = validationErr.Message
		body.Field = validationErr.Field
	case errors.As(err, &notFoundErr):
		body.Message = notFoundErr.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

func RespondMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Message: message})
}
