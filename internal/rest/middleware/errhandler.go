package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/types"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// The status comes from the sentinel the error is marked with.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := ierr.HTTPStatusFromErr(err)

		if status >= http.StatusInternalServerError {
			log.Errorw("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", status,
				"request_id", types.GetRequestID(c.Request.Context()),
				"error", err,
			)
		}

		resp := ierr.NewErrorResponse(err)
		if status >= http.StatusInternalServerError {
			// internal causes stay in the logs
			resp.Error.InternalError = ""
		}
		c.JSON(status, resp)
	}
}
