package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/naasdev/naas/internal/auth"
	"github.com/naasdev/naas/internal/config"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/types"
)

// AuthenticateMiddleware is a middleware that authenticates requests based on either:
// 1. API key in the x-api-key header (or configured header name)
// 2. JWT token in the Authorization header as a Bearer token
// It sets the user ID and auth method in the request context for downstream handlers
func AuthenticateMiddleware(cfg *config.Configuration, tokens *auth.TokenService, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if apiKey := c.GetHeader(cfg.Auth.APIKey.Header); apiKey != "" {
			userID, valid := auth.ValidateAPIKey(cfg, apiKey)
			if !valid || userID == "" {
				logger.Debugw("invalid api key", "request_id", types.GetRequestID(ctx))
				unauthorized(c, "Invalid API key")
				return
			}

			ctx = types.SetUserID(ctx, userID)
			ctx = types.SetAuthMethod(ctx, types.AuthMethodAPIKey)
			c.Request = c.Request.WithContext(ctx)
			c.Next()
			return
		}

		authHeader := c.GetHeader(types.HeaderAuthorization)
		if authHeader == "" {
			unauthorized(c, "Unauthorized")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			unauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			logger.Debugw("failed to validate token", "error", err)
			unauthorized(c, "Invalid token")
			return
		}

		ctx = types.SetUserID(ctx, claims.UserID)
		ctx = types.SetAuthMethod(ctx, types.AuthMethodJWT)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ierr.ErrorResponse{
		Success: false,
		Error:   ierr.ErrorDetail{Display: message},
	})
}
