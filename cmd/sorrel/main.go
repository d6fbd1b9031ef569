package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Ramsey-B/sorrel/config"
	"github.com/Ramsey-B/sorrel/internal/repositories/factrequest"
	"github.com/Ramsey-B/sorrel/internal/repositories/pipelinerun"
	"github.com/Ramsey-B/sorrel/pkg/database"
	"github.com/Ramsey-B/sorrel/pkg/ingest"
	"github.com/Ramsey-B/sorrel/pkg/middleware"
	"github.com/Ramsey-B/sorrel/pkg/refresh"
	"github.com/Ramsey-B/sorrel/pkg/routes/facts"
	"github.com/Ramsey-B/sorrel/pkg/routes/health"
	"github.com/Ramsey-B/sorrel/pkg/routes/runs"
	"github.com/Ramsey-B/sorrel/pkg/startup"
	"github.com/Ramsey-B/sorrel/pkg/tracing"
)

// version is stamped by the build
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}

	ingestCfg, err := cfg.IngestConfig()
	if err != nil {
		logger.WithError(err).Error("Invalid ingest configuration")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.TracingConfig())
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.WithError(err).Warn("Failed to shut tracing down cleanly")
		}
	}()

	var db *database.DatabaseInstance

	boot := startup.New(logger, cfg.StartupMaxAttempts)
	boot.AddDependency(&startup.FuncDependency{
		Name: "database",
		StartFunc: func(ctx context.Context) error {
			var err error
			db, err = database.Connect(ctx, cfg.DatabaseConfig(), logger)
			return err
		},
		StopFunc: func(ctx context.Context) error {
			if db != nil {
				return db.Close()
			}
			return nil
		},
	})
	boot.AddDependency(&startup.FuncDependency{
		Name:  "migrations",
		Needs: []string{"database"},
		StartFunc: func(ctx context.Context) error {
			return database.NewMigrationService(logger, cfg.MigrationConfig()).Run(db.DB, cfg.DatabaseName)
		},
	})

	if err := boot.Start(ctx); err != nil {
		logger.WithError(err).Error("Startup failed")
		os.Exit(1)
	}
	defer boot.Stop(context.Background())

	loader := ingest.NewLoader(ingestCfg, logger)
	factRepo := factrequest.NewRepository(db, logger)
	runRepo := pipelinerun.NewRepository(db, logger)

	refreshCfg := cfg.RefreshConfig()
	// the reporting window is resolved in the same zone the extract's
	// timestamps are parsed in
	refreshCfg.Now = func() time.Time { return time.Now().In(ingestCfg.Location) }
	svc := refresh.NewService(refreshCfg, loader, factRepo, runRepo, logger)

	if cfg.RunMode == "once" {
		if _, err := svc.Execute(ctx, refresh.TriggerOnce); err != nil {
			logger.WithError(err).Error("Refresh run failed")
			boot.Stop(context.Background())
			os.Exit(1)
		}
		return
	}

	checker := health.NewChecker(db, cfg.SourcePath, version)
	e := buildServer(cfg, logger, checker, svc, factRepo, runRepo)

	if cfg.SchedulerEnabled {
		sched := refresh.NewScheduler(svc, cfg.RefreshInterval, logger)
		go func() {
			if err := sched.Start(ctx); err != nil {
				logger.WithError(err).Error("Refresh scheduler exited with error")
			}
		}()
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Infof("Starting %s on %s", cfg.AppName, addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server stopped unexpectedly")
			stop()
		}
	}()

	checker.SetReady(true)

	<-ctx.Done()

	logger.Info("Shutting down...")
	checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown error")
	}
}

func buildLogger(cfg *config.Config) (ectologger.Logger, error) {
	if cfg.PrettyLogs {
		zl, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		return zapadapter.NewZapEctoLogger(zl, nil), nil
	}

	zapCfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	zl, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return zapadapter.NewZapEctoLogger(zl, nil), nil
}

func buildServer(
	cfg *config.Config,
	logger ectologger.Logger,
	checker *health.Checker,
	svc *refresh.Service,
	factRepo *factrequest.Repository,
	runRepo *pipelinerun.Repository,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

	checker.RegisterRoutes(e)

	api := e.Group("/api/v1")
	runs.NewHandler(runRepo, svc).Register(api.Group("/runs"))
	facts.NewHandler(factRepo).Register(api.Group("/facts"))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
