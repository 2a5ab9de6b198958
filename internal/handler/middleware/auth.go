package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"hotel-booking/internal/domain/user"
	"hotel-booking/internal/handler/httperr"
	"hotel-booking/internal/pkg/cookie"
	"hotel-booking/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserIDKey   = "user_id"
	ctxUserRoleKey = "user_role"

	bearerPrefix = "Bearer "
)

// AuthMiddleware guards the staff dashboard routes. Guest-facing booking and
// payment endpoints are mounted without it.
type AuthMiddleware struct {
	tokens usecase.TokenValidator
}

func NewAuthMiddleware(tokens usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth accepts the access token from its cookie or, for API clients,
// from an Authorization bearer header.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Access token required", nil)
			return
		}

		userID, role, err := m.tokens.ValidateToken(token)
		if err != nil {
			slog.Warn("rejected access token", "path", c.FullPath(), "error", err.Error())
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid or expired token", nil)
			return
		}

		c.Set(ctxUserIDKey, userID)
		c.Set(ctxUserRoleKey, role)
		c.Next()
	}
}

// RequireRoleAtLeast must run after RequireAuth.
func (m *AuthMiddleware) RequireRoleAtLeast(minRole user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		switch {
		case !ok:
			httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		case !role.Satisfies(minRole):
			httperr.AbortWithError(c, http.StatusForbidden, nil, "Insufficient permissions", nil)
		default:
			c.Next()
		}
	}
}

func accessToken(c *gin.Context) string {
	if token := cookie.GetAccessToken(c); token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func GetUserRole(c *gin.Context) (user.Role, bool) {
	v, ok := c.Get(ctxUserRoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(user.Role)
	return role, ok
}
