package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/procare-io/srportal/internal/auth"
	"github.com/procare-io/srportal/internal/middleware"
	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RequestHandler struct {
	requests *service.RequestService
	logger   *zap.Logger
	now      func() time.Time
}

func NewRequestHandler(requests *service.RequestService, logger *zap.Logger) *RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestHandler{requests: requests, logger: logger, now: time.Now}
}

func (h *RequestHandler) List(c *gin.Context) {
	claims, filter, ok := h.listParams(c)
	if !ok {
		return
	}
	list, err := h.requests.List(c.Request.Context(), claims, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if list == nil {
		list = []models.ServiceRequest{}
	}
	c.JSON(http.StatusOK, list)
}

// Export streams the filtered list as an xlsx workbook.
func (h *RequestHandler) Export(c *gin.Context) {
	claims, filter, ok := h.listParams(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	n, err := h.requests.ExportXLSX(c.Request.Context(), claims, filter, &buf)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	name := fmt.Sprintf("service-requests-%s.xlsx", h.now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("X-Total-Count", strconv.Itoa(n))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *RequestHandler) Get(c *gin.Context) {
	claims, id, ok := requestParams(c)
	if !ok {
		return
	}
	req, err := h.requests.Get(c.Request.Context(), claims, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) Activity(c *gin.Context) {
	claims, id, ok := requestParams(c)
	if !ok {
		return
	}
	log, err := h.requests.Activity(c.Request.Context(), claims, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if log == nil {
		log = []models.ActivityLog{}
	}
	c.JSON(http.StatusOK, log)
}

// UpdateStatus accepts {"status": ...} or the legacy ?new_status= query.
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	claims, id, ok := requestParams(c)
	if !ok {
		return
	}

	var body models.StatusUpdate
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err)
			return
		}
	}
	if body.Status == "" {
		body.Status = models.RequestStatus(c.Query("new_status"))
	}
	if body.Status == "" {
		middleware.AbortWithError(c, http.StatusBadRequest, "status is required")
		return
	}

	resp, err := h.requests.UpdateStatus(c.Request.Context(), claims, id, body.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RequestHandler) listParams(c *gin.Context) (*auth.Claims, models.RequestFilter, bool) {
	var filter models.RequestFilter
	claims, ok := middleware.GetClaims(c)
	if !ok {
		middleware.AbortWithError(c, http.StatusUnauthorized, "Not authenticated")
		return nil, filter, false
	}
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, err)
		return nil, filter, false
	}
	return claims, filter, true
}

// requestParams returns the caller and the :id path parameter.
func requestParams(c *gin.Context) (*auth.Claims, int64, bool) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		middleware.AbortWithError(c, http.StatusUnauthorized, "Not authenticated")
		return nil, 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.AbortWithError(c, http.StatusBadRequest, "Invalid request id")
		return nil, 0, false
	}
	return claims, id, true
}
