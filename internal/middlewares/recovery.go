package middlewares

import (
	"codequest/internal/common"
	"codequest/internal/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandlerMiddleware turns a handler panic into a 500 {message} body.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			if err, ok := recovered.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(recovered)
			}

			userID, _ := CurrentUserID(c)
			logger.Log.Error("Recovered from handler panic",
				zap.Any("panic", recovered),
				zap.String("request_id", RequestIDFrom(c)),
				zap.String("route", c.FullPath()),
				zap.String("method", c.Request.Method),
				zap.String("user_id", userID),
				zap.Stack("stack"),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			common.RespondMessage(c, http.StatusInternalServerError, "Internal server error")
		}()
		c.Next()
	}
}
