package middlewares

import (
	"codequest/internal/common"
	"codequest/internal/services"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	userContextKey  = "userID"
	accessTokenName = "access_token"
)

// AuthMiddleware rejects requests without a valid access token and stores
// the token subject as the user id.
func AuthMiddleware(tokenService *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			common.RespondMessage(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := tokenService.ValidateToken(tokenString)
		if err != nil {
			common.RespondMessage(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		c.Set(userContextKey, claims.Subject)
		c.Next()
	}
}

// OptionalAuthMiddleware sets the user id when a valid token is present and
// lets the request through either way.
func OptionalAuthMiddleware(tokenService *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := tokenService.ValidateToken(tokenString)
		if err == nil && claims != nil {
			c.Set(userContextKey, claims.Subject)
		}

		c.Next()
	}
}

// CurrentUserID returns the authenticated user id, if any.
func CurrentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(userContextKey)
	return userID, userID != ""
}

// extractToken prefers the access_token cookie and falls back to a Bearer
// header.
func extractToken(c *gin.Context) string {
	if token, err := c.Cookie(accessTokenName); err == nil && strings.TrimSpace(token) != "" {
		return strings.TrimSpace(token)
	}

	header := c.GetHeader("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}
