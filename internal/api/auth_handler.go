package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/procare-io/srportal/internal/auth"
	"github.com/procare-io/srportal/internal/middleware"
	"github.com/procare-io/srportal/internal/models"
)

type AuthHandler struct {
	authService *auth.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *auth.AuthService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		var locked *auth.LockedError
		switch {
		case errors.As(err, &locked):
			c.Header("Retry-After", strconv.Itoa(int(locked.RetryAfter.Seconds())+1))
			middleware.AbortWithError(c, http.StatusTooManyRequests, locked.Error())
		case errors.Is(err, auth.ErrInvalidCredentials):
			middleware.AbortWithError(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, auth.ErrUserInactive):
			middleware.AbortWithError(c, http.StatusForbidden, err.Error())
		default:
			respondError(c, h.logger, err)
		}
		return
	}

	c.JSON(http.StatusOK, response)
}

// Me returns the caller's current profile.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		middleware.AbortWithError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	profile, err := h.authService.Me(c.Request.Context(), claims)
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		middleware.AbortWithError(c, http.StatusUnauthorized, "Could not validate credentials")
		return
	case errors.Is(err, auth.ErrUserInactive):
		middleware.AbortWithError(c, http.StatusForbidden, err.Error())
		return
	case err != nil:
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
