package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parishdesk/parish_backend/config"
	"github.com/parishdesk/parish_backend/models"
	"github.com/parishdesk/parish_backend/utils"
	"gorm.io/gorm"
)

const TokenHeader = "token"

// SessionMiddleware resolves the token header into the request context.
// Requests without a token pass through anonymous. getDB is read per request
// because the server accepts traffic before the pool is connected.
func SessionMiddleware(getDB func() *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get(TokenHeader)
		if token == "" {
			c.Next()
			return
		}
		user, err := models.ResolveSession(c.Request.Context(), getDB(), token)
		if err != nil {
			if !errors.Is(err, models.ErrSessionRequired) && !errors.Is(err, models.ErrUserDisabled) {
				config.LogError(config.GetLogger(), "middlewares", "SessionMiddleware", "resolve session", nil, err)
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		isAdmin, err := models.IsAdminRole(c.Request.Context(), getDB(), user.RoleId)
		if err != nil {
			config.LogError(config.GetLogger(), "middlewares", "SessionMiddleware", "admin role lookup", user.RoleId, err)
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUsernameInContext(ctx, user.Username)
		ctx = utils.SetUserIdInContext(ctx, user.ID)
		ctx = utils.SetRoleIdInContext(ctx, user.RoleId)
		ctx = utils.SetIsAdminInContext(ctx, isAdmin)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireSession rejects anonymous requests. With enforce false it is a no-op,
// which is how local setups without redis run.
func RequireSession(enforce bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enforce {
			c.Next()
			return
		}
		if userId, ok := utils.GetUserIdFromContext(c.Request.Context()); !ok || userId == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin only lets sessions of the admin role through.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !utils.GetIsAdminFromContext(c.Request.Context()) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}
