// Package api exposes the portal services over HTTP with gin.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/procare-io/srportal/internal/auth"
	"github.com/procare-io/srportal/internal/config"
	"github.com/procare-io/srportal/internal/middleware"
	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/service"
)

// Deps is everything the router wires into handlers. RateLimiter,
// HTTPMetrics and Gatherer are optional.
type Deps struct {
	Config      *config.Config
	Logger      *zap.Logger
	Auth        *auth.AuthService
	RBAC        *auth.RBAC
	Intake      *service.IntakeService
	Validation  *service.ValidationService
	Requests    *service.RequestService
	Lookups     *service.LookupService
	Attachments *service.AttachmentService
	RateLimiter *middleware.RateLimiter
	HTTPMetrics *middleware.HTTPMetrics
	Gatherer    prometheus.Gatherer
	DBCheck     HealthCheck
	BlobCheck   HealthCheck
	Languages   []string
}

// NewRouter builds the gin engine with every portal route.
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg == nil {
		cfg = config.Get()
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rbac := d.RBAC
	if rbac == nil {
		rbac = auth.NewRBAC()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	if maxSize := cfg.Storage.Attachments.MaxSize; maxSize > 0 {
		r.MaxMultipartMemory = maxSize
	}

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger, cfg.RateLimiting.ExcludePaths...))
	r.Use(middleware.Recovery(logger))
	if cfg.Server.CORS.Enabled {
		r.Use(middleware.CORS(cfg.Server.CORS))
	}
	if d.HTTPMetrics != nil {
		r.Use(d.HTTPMetrics.Handler())
	}
	if d.RateLimiter != nil && cfg.RateLimiting.Enabled {
		r.Use(d.RateLimiter.Handler())
	}
	r.Use(middleware.Language(d.Languages...))

	r.NoRoute(func(c *gin.Context) {
		middleware.AbortWithError(c, http.StatusNotFound, "Not Found")
	})
	r.NoMethod(func(c *gin.Context) {
		middleware.AbortWithError(c, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	health := NewHealthHandler(cfg.App.Version, d.DBCheck, d.BlobCheck)
	r.GET("/", health.Root)
	r.GET("/health", health.Health)
	if cfg.Metrics.Enabled && d.Gatherer != nil {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	authHandler := NewAuthHandler(d.Auth, logger)
	intakeHandler := NewIntakeHandler(d.Intake, d.Validation, logger)
	requestHandler := NewRequestHandler(d.Requests, logger)
	lookupHandler := NewLookupHandler(d.Lookups, cfg.Request.PickupDays, logger)
	fileHandler := NewFileHandler(d.Attachments, logger)
	authMiddleware := middleware.NewAuthMiddleware(d.Auth.JWT(), rbac)

	apiGroup := r.Group("/api")
	apiGroup.POST("/login", authHandler.Login)
	// signed links carry their own credential
	apiGroup.GET("/files/:token", fileHandler.Serve)

	protected := apiGroup.Group("", authMiddleware.RequireAuth())
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.GET("/countries", lookupHandler.Countries)
		protected.GET("/countries/:code/languages", lookupHandler.Languages)
		protected.GET("/countries/:code/legal", lookupHandler.Legal)

		protected.POST("/validate/item", intakeHandler.ValidateItem)
		protected.GET("/validate/customer", intakeHandler.ValidateCustomer)

		intake := protected.Group("/intake")
		intake.POST("/submit", authMiddleware.RequirePermission(auth.PermissionRequestCreate), intakeHandler.Submit)
		intake.GET("/issue-reasons", lookupHandler.IssueReasons)
		intake.GET("/repairability-statuses", lookupHandler.RepairabilityStatuses)
		intake.GET("/pickup-window", lookupHandler.PickupWindow)

		lookups := protected.Group("/lookups")
		lookups.GET("/serial", lookupHandler.Serials)
		lookups.GET("/lot", lookupHandler.Lots)
		lookups.GET("/item", lookupHandler.Items)
		lookups.GET("/customers", lookupHandler.Customers)
		lookups.GET("/reasons", lookupHandler.IssueReasons)

		requests := protected.Group("/requests")
		requests.GET("", requestHandler.List)
		requests.GET("/export.xlsx", authMiddleware.RequirePermission(auth.PermissionRequestExport), requestHandler.Export)
		requests.GET("/:id", requestHandler.Get)
		requests.GET("/:id/activity", requestHandler.Activity)
		requests.PATCH("/:id/status", authMiddleware.RequireRole(models.RoleSalesTech, models.RoleAdmin), requestHandler.UpdateStatus)

		protected.POST("/upload", fileHandler.Upload)
		protected.GET("/download/:id/:file", fileHandler.DownloadLink)
	}

	return r
}
