package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/procare-io/srportal/internal/database"
	"github.com/procare-io/srportal/internal/middleware"
	"github.com/procare-io/srportal/internal/service"
)

// statusFor maps a service error kind to its HTTP status.
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindInvalid:
		return http.StatusBadRequest
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	case service.KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"detail", "error"}. Unclassified errors are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if kind := service.KindOf(err); kind != 0 {
		status := statusFor(kind)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
		}
		middleware.AbortWithError(c, status, service.MessageOf(err))
		return
	}

	if database.IsConnectionError(err) {
		logger.Warn("database unavailable", zap.String("request_id", middleware.GetRequestID(c)), zap.Error(err))
		middleware.AbortWithError(c, http.StatusServiceUnavailable, "Service temporarily unavailable")
		return
	}

	logger.Error("request failed",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	middleware.AbortWithError(c, http.StatusInternalServerError, "Internal server error")
}

// badRequest answers a body or query that failed to bind.
func badRequest(c *gin.Context, err error) {
	middleware.AbortWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
}
