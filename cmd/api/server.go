package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"docrepo/docs"
	"docrepo/internal/auth"
	"docrepo/internal/config"
	"docrepo/internal/database"
	"docrepo/internal/database/migration"
	handlers "docrepo/internal/http/handler"
	"docrepo/internal/http/middleware"
	"docrepo/internal/ident"
	"docrepo/internal/otel"
	"docrepo/internal/repository/postgres"
	"docrepo/internal/service"
	"docrepo/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// server owns every long-lived resource of the serve command.
type server struct {
	log      *zap.Logger
	app      *fiber.App
	addr     string
	db       *sql.DB
	cache    *redis.Client
	shutdown otel.ShutdownFunc
}

func newServer(ctx context.Context, cfg *config.AppConfig, loc *time.Location, log *zap.Logger) (*server, error) {
	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	s := &server{log: log, addr: ":" + cfg.Port, shutdown: shutdownTracing}

	s.db, err = database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := migration.EnsureMigrated(ctx, s.db, log, cfg.Database.Host); err != nil {
		s.Close()
		return nil, err
	}
	gdb, err := database.NewGorm(s.db)
	if err != nil {
		s.Close()
		return nil, err
	}

	store, err := newBlobStore(log, cfg.Storage)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("init blob store: %w", err)
	}

	s.cache = auth.NewRedis(ctx, cfg.Redis, log)

	ids := ident.New()
	registryRepo := postgres.NewRegistryGorm(gdb)
	registrySvc := service.NewRegistryService(log, registryRepo, ids)
	docSvc := service.NewDocumentService(
		log,
		store,
		postgres.NewDocumentPostgres(s.db),
		registrySvc,
		storage.Layout{Root: cfg.Storage.Root},
		ids,
	)
	authn := auth.NewAuthenticator(log, registryRepo, s.cache, time.Duration(cfg.Redis.AuthCacheTTLSec)*time.Second)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "docrepo",
		BodyLimit:             cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler:          handlers.ErrorHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(cors.New(cors.Config{
		AllowHeaders: strings.Join([]string{
			fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAccept,
			auth.ClientIDHeader, auth.AccessKeyHeader, middleware.RequestIDHeader,
		}, ","),
		ExposeHeaders: strings.Join([]string{
			fiber.HeaderContentDisposition, middleware.RequestIDHeader, "X-Document-Version",
		}, ","),
	}))
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, handlers.Dependencies{
		DB:        s.db,
		Metrics:   reg,
		Auth:      authn.Middleware(),
		Documents: docSvc,
		Registry:  registrySvc,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	s.app = app
	log.Info("server configured",
		zap.String("addr", s.addr),
		zap.String("app_host", cfg.AppHost),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.String("timezone", loc.String()),
		zap.Bool("auth_cache", s.cache != nil),
	)
	return s, nil
}

// newBlobStore selects the blob backend named by cfg.Backend.
func newBlobStore(log *zap.Logger, cfg config.StorageConfig) (storage.BlobStore, error) {
	switch cfg.Backend {
	case config.StorageBackendFS:
		return storage.NewFileStore(log, afero.NewOsFs()), nil
	case config.StorageBackendMinIO:
		return storage.NewMinIO(log, cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.addr))
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		s.log.Error("http shutdown failed", zap.Error(err))
	}
	return nil
}

// Close releases the resources acquired by newServer. It is safe on a partially built server.
func (s *server) Close() {
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.log.Warn("redis close failed", zap.Error(err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Warn("database close failed", zap.Error(err))
		}
	}
	if s.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.shutdown(ctx); err != nil {
			s.log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}
}
