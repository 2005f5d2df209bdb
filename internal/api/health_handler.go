package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck probes one dependency. A nil check is reported as "unknown".
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	version  string
	database HealthCheck
	storage  HealthCheck
	timeout  time.Duration
}

func NewHealthHandler(version string, database, storage HealthCheck) *HealthHandler {
	return &HealthHandler{version: version, database: database, storage: storage, timeout: 3 * time.Second}
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "Service Request Portal API",
		"version": h.version,
		"auth":    "JWT",
	})
}

// Health always answers 200; a failing dependency shows up as
// "error: ..." and status "degraded".
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	db := probe(ctx, h.database)
	blob := probe(ctx, h.storage)
	status := "ok"
	if db != "ok" || blob != "ok" {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       status,
		"api":          "ok",
		"database":     db,
		"blob_storage": blob,
		"version":      h.version,
	})
}

func probe(ctx context.Context, check HealthCheck) string {
	if check == nil {
		return "unknown"
	}
	if err := check(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
