// Package server assembles the API process from configuration: storage,
// cache, events, HTTP router and background tasks.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/procare-io/srportal/internal/api"
	"github.com/procare-io/srportal/internal/auth"
	"github.com/procare-io/srportal/internal/cache"
	"github.com/procare-io/srportal/internal/config"
	"github.com/procare-io/srportal/internal/database"
	"github.com/procare-io/srportal/internal/demo"
	"github.com/procare-io/srportal/internal/events"
	"github.com/procare-io/srportal/internal/middleware"
	"github.com/procare-io/srportal/internal/repository"
	"github.com/procare-io/srportal/internal/repository/memory"
	"github.com/procare-io/srportal/internal/requestcode"
	"github.com/procare-io/srportal/internal/runner"
	"github.com/procare-io/srportal/internal/runner/tasks"
	"github.com/procare-io/srportal/internal/service"
	"github.com/procare-io/srportal/internal/storage"
)

// SupportedLanguages are the UI languages the portal serves.
var SupportedLanguages = []string{"en", "de", "fr", "es"}

// Server owns every long-lived resource of the API process.
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	handler  http.Handler
	runner   *runner.Runner
	closers  []func() error
	dbCheck  api.HealthCheck
	lookups  *service.LookupService
}

// New wires the server. Resources opened before a failure are released.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (s *Server, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s = &Server{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	s.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store, qb, err := s.openStore(ctx)
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, redisClient.Close)
	}

	cacheMetrics := cache.NewMetrics(s.registry)
	var c cache.Cache
	if redisClient != nil {
		c = cache.NewRedisCache(redisClient, cfg.Redis.Cache.Prefix, cfg.Redis.Cache.TTL, cacheMetrics)
	} else {
		c = cache.NewLocalCache(1000, cfg.Redis.Cache.TTL, cacheMetrics)
	}

	codes, err := requestcode.Resolve(cfg.Request.CodeFormat, cfg.Request.CodePrefix, cfg.Request.CodeStart,
		counterStore(cfg.Request.CounterStore, qb, redisClient, cfg.Redis.Cache.Prefix))
	if err != nil {
		return nil, err
	}

	publisher, err := s.openPublisher()
	if err != nil {
		return nil, err
	}

	backend, err := storage.NewFilesystemBackend(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("attachment storage: %w", err)
	}

	metrics := service.NewMetrics(s.registry)
	rbac := auth.NewRBAC()
	jwt := auth.NewJWTManager(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.AccessTokenTTL)
	loginLimiter := auth.NewLoginRateLimiter(cfg.Auth.Login.MaxAttempts, cfg.Auth.Login.Window,
		cfg.Auth.Login.Lockout, 8*cfg.Auth.Login.Lockout)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimiting)

	s.lookups = service.NewLookupService(store, rbac, c, cfg.Redis.Cache.TTL, logger)
	deps := api.Deps{
		Config:     cfg,
		Logger:     logger,
		Auth:       auth.NewAuthService(store.Users, jwt, loginLimiter, logger),
		RBAC:       rbac,
		Intake:     service.NewIntakeService(store, codes, publisher, metrics, logger),
		Validation: service.NewValidationService(store.Items, store.Customers),
		Requests:   service.NewRequestService(store, rbac, publisher, metrics, logger),
		Lookups:    s.lookups,
		Attachments: service.NewAttachmentService(store, backend, jwt, rbac, service.AttachmentOptions{
			Policy:    storage.NewPolicy(cfg.Storage),
			BaseURL:   cfg.Server.BaseURL(),
			Publisher: publisher,
			Metrics:   metrics,
			Logger:    logger,
		}),
		RateLimiter: rateLimiter,
		HTTPMetrics: middleware.NewHTTPMetrics(s.registry),
		Gatherer:    s.registry,
		DBCheck:     s.dbCheck,
		BlobCheck:   backend.HealthCheck,
		Languages:   SupportedLanguages,
	}
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(deps)

	s.handler = router
	if cfg.Metrics.OpenTelemetry.Enabled {
		s.handler = otelhttp.NewHandler(router, cfg.Metrics.OpenTelemetry.ServiceName)
	}

	if cfg.Runner.Enabled {
		registry := runner.NewTaskRegistry()
		registry.Register(tasks.NewCacheWarmTask(s.lookups, cfg.Runner.CacheWarmCron, SupportedLanguages...))
		registry.Register(tasks.NewPruneTask("login-limiter-cleanup", "@every 5m", loginLimiter.Cleanup, logger))
		registry.Register(tasks.NewPruneTask("rate-limiter-prune", "@every 10m", rateLimiter.Prune, logger))
		s.runner = runner.NewRunner(registry, logger)
	}

	return s, nil
}

// openStore selects the repositories for the configured driver.
func (s *Server) openStore(ctx context.Context) (*repository.Store, *database.QueryBuilder, error) {
	cfg := s.cfg
	cost := cfg.Auth.Password.BcryptCost

	if cfg.Database.Driver == database.DriverMemory || cfg.Database.Driver == "" {
		store, err := memory.NewStore(demo.Default(), cost)
		if err != nil {
			return nil, nil, err
		}
		s.dbCheck = func(context.Context) error { return nil }
		s.logger.Info("using in-memory demo store")
		return store, nil, nil
	}

	qb, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	s.closers = append(s.closers, qb.Close)
	s.dbCheck = qb.PingContext

	if cfg.Database.AutoMigrate {
		applied, err := database.Migrate(ctx, qb)
		if err != nil {
			return nil, nil, err
		}
		if applied > 0 {
			s.logger.Info("applied migrations", zap.Int("count", applied))
		}
	}

	store := repository.NewSQLStore(qb)
	if cfg.App.DemoData {
		if err := SeedIfEmpty(ctx, qb, store, cost); err != nil {
			return nil, nil, err
		}
	}
	s.logger.Info("using SQL store", zap.String("driver", qb.Driver()))
	return store, qb, nil
}

// SeedIfEmpty loads the demo dataset unless its first account already exists.
func SeedIfEmpty(ctx context.Context, qb *database.QueryBuilder, store *repository.Store, bcryptCost int) error {
	data := demo.Default()
	if len(data.Users) == 0 {
		return nil
	}
	_, err := store.Users.GetByEmail(ctx, data.Users[0].Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return repository.Seed(ctx, qb, data, bcryptCost)
}

func (s *Server) openPublisher() (events.Publisher, error) {
	if !s.cfg.Events.Enabled {
		return events.Nop{}, nil
	}
	p, err := events.NewNATSPublisher(s.cfg.Events, s.logger)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, p.Close)
	return p, nil
}

// counterStore picks where request code sequences live. "auto" prefers
// Redis, then SQL, then process memory.
func counterStore(kind string, qb *database.QueryBuilder, rc *redis.Client, prefix string) requestcode.CounterStore {
	switch kind {
	case "redis":
		if rc != nil {
			return requestcode.NewRedisStore(rc, prefix)
		}
	case "sql":
		if qb != nil {
			return requestcode.NewSQLStore(qb)
		}
	case "memory":
		return requestcode.NewMemoryStore()
	}
	switch {
	case rc != nil:
		return requestcode.NewRedisStore(rc, prefix)
	case qb != nil:
		return requestcode.NewSQLStore(qb)
	}
	return requestcode.NewMemoryStore()
}

// Handler returns the instrumented HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) Registry() *prometheus.Registry { return s.registry }

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	cfg := s.cfg
	srv := &http.Server{
		Addr:              cfg.Server.GetServerAddr(),
		Handler:           s.handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	if s.runner != nil {
		if err := s.lookups.WarmCache(ctx, SupportedLanguages...); err != nil {
			s.logger.Warn("initial cache warm failed", zap.Error(err))
		}
		if err := s.runner.Start(ctx); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", srv.Addr), zap.String("public_url", cfg.Server.BaseURL()))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if s.runner != nil {
			s.runner.Stop(shutdownCtx)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// Close releases connections in reverse order of opening.
func (s *Server) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("close failed", zap.Error(err))
		}
	}
	s.closers = nil
}
