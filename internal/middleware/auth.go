package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kindalike/backend/internal/auth"
	"github.com/kindalike/backend/pkg/utils"
)

// Context keys set by RequireAuth.
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

// RequireAuth validates the bearer token and stores the authenticated user's
// id and username on the request context. Requests without a valid token are
// rejected with 401.
func RequireAuth(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization header required", nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header", nil)
			c.Abort()
			return
		}

		claims, err := issuer.Validate(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				utils.ErrorResponse(c, http.StatusUnauthorized, "Token has expired", nil)
			} else {
				utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid authentication credentials", nil)
			}
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}

// CurrentUserID reads the authenticated user id set by RequireAuth.
func CurrentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	userID, ok := value.(uint)
	return userID, ok
}
