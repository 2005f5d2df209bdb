package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/procare-io/srportal/internal/middleware"
	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/service"
)

// LookupHandler serves search dropdowns and reference data.
type LookupHandler struct {
	lookups    *service.LookupService
	pickupDays int
	logger     *zap.Logger
}

func NewLookupHandler(lookups *service.LookupService, pickupDays int, logger *zap.Logger) *LookupHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LookupHandler{lookups: lookups, pickupDays: pickupDays, logger: logger}
}

func (h *LookupHandler) search(c *gin.Context, fn func(context.Context, string) ([]models.LookupItem, error)) {
	items, err := fn(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if items == nil {
		items = []models.LookupItem{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *LookupHandler) Serials(c *gin.Context) { h.search(c, h.lookups.SearchSerials) }
func (h *LookupHandler) Lots(c *gin.Context)    { h.search(c, h.lookups.SearchLots) }
func (h *LookupHandler) Items(c *gin.Context)   { h.search(c, h.lookups.SearchItems) }

func (h *LookupHandler) Customers(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		middleware.AbortWithError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	matches, err := h.lookups.SearchCustomers(c.Request.Context(), claims, c.Query("q"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if matches == nil {
		matches = []models.CustomerMatch{}
	}
	c.JSON(http.StatusOK, matches)
}

// IssueReasons returns main reasons mapped to their sub reasons.
func (h *LookupHandler) IssueReasons(c *gin.Context) {
	lang := c.Query("language_code")
	if lang == "" {
		lang = middleware.GetLanguage(c)
	}
	reasons, err := h.lookups.IssueReasons(c.Request.Context(), lang)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reasons)
}

func (h *LookupHandler) Countries(c *gin.Context) {
	countries, err := h.lookups.Countries(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, countries)
}

func (h *LookupHandler) Languages(c *gin.Context) {
	langs, err := h.lookups.Languages(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, langs)
}

// Legal returns the country's legal documents. ?format=html adds rendered
// markdown.
func (h *LookupHandler) Legal(c *gin.Context) {
	lang := c.Query("language_code")
	if lang == "" {
		lang = middleware.GetLanguage(c)
	}
	docs, err := h.lookups.LegalDocuments(c.Request.Context(), c.Param("code"), lang, c.Query("format") == "html")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if docs == nil {
		docs = []models.LegalDocument{}
	}
	c.JSON(http.StatusOK, docs)
}

func (h *LookupHandler) RepairabilityStatuses(c *gin.Context) {
	statuses, err := h.lookups.RepairabilityStatuses(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

func (h *LookupHandler) PickupWindow(c *gin.Context) {
	days := h.pickupDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, "days must be a number")
			return
		}
		days = n
	}
	window, err := h.lookups.PickupWindow(c.Query("country_code"), days)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, window)
}
