package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/procare-io/srportal/internal/middleware"
	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/service"
)

// IntakeHandler serves the wizard: submission plus item and customer checks.
type IntakeHandler struct {
	intake     *service.IntakeService
	validation *service.ValidationService
	logger     *zap.Logger
}

func NewIntakeHandler(intake *service.IntakeService, validation *service.ValidationService, logger *zap.Logger) *IntakeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntakeHandler{intake: intake, validation: validation, logger: logger}
}

func (h *IntakeHandler) Submit(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		middleware.AbortWithError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var sub models.IntakeSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		badRequest(c, err)
		return
	}
	if sub.LanguageCode == "" {
		sub.LanguageCode = middleware.GetLanguage(c)
	}

	resp, err := h.intake.Submit(c.Request.Context(), claims, &sub)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *IntakeHandler) ValidateItem(c *gin.Context) {
	var req models.ItemValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.validation.ValidateItem(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ValidateCustomer answers 200 with found=false for unknown emails.
func (h *IntakeHandler) ValidateCustomer(c *gin.Context) {
	result, err := h.validation.ValidateCustomer(c.Request.Context(), c.Query("email"), c.Query("country_code"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
