package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/naasdev/naas/internal/config"
	"github.com/naasdev/naas/internal/types"
)

// CORSMiddleware handles CORS headers
func CORSMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	allowedHeaders := strings.Join([]string{
		"Content-Type",
		types.HeaderAuthorization,
		types.HeaderRequestID,
		cfg.Auth.APIKey.Header,
	}, ", ")

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
		c.Writer.Header().Set("Access-Control-Expose-Headers", types.HeaderRequestID)
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
