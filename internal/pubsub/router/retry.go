package router

import (
	"net"

	"github.com/cockroachdb/errors"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/logger"
)

// shouldRetry reports whether a failed message is worth another delivery attempt
func shouldRetry(logger *logger.Logger, err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		logger.Debugw("retrying due to network timeout", "error", netErr)
		return true
	}

	// business errors will fail the same way again
	if ierr.IsValidation(err) ||
		ierr.IsNotFound(err) ||
		ierr.IsPermissionDenied(err) ||
		ierr.IsInvalidOperation(err) {
		return false
	}

	return true
}
