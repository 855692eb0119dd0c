package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rntrp/reefspect/internal/api"
	"github.com/rntrp/reefspect/internal/audit"
	"github.com/rntrp/reefspect/internal/config"
	"github.com/rntrp/reefspect/internal/engine"
	"github.com/rntrp/reefspect/internal/lifecycle"
	"github.com/rntrp/reefspect/internal/scan"
	"github.com/rntrp/reefspect/internal/staging"
	"github.com/rntrp/reefspect/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := "reefspect.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("failed to load configuration", "path", configPath, "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)
	logger.Info("reefspect is starting",
		"version", Version,
		"buildTime", BuildTime,
		"config", configPath)

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Error("failed to create directories", "error", err)
		os.Exit(1)
	}

	// The engine handle and its metadata are loaded once and shared
	// read-only by every request for the process lifetime.
	eng, err := engine.NewClamdEngine(cfg.Engine.ClamdAddress, cfg.Engine.SignatureCount)
	if err != nil {
		logger.Error("failed to connect to clamd", "address", cfg.Engine.ClamdAddress, "error", err)
		os.Exit(1)
	}
	info := eng.Metadata()
	logger.Info("scan engine ready",
		"avVersion", info.Version,
		"dbVersion", info.DatabaseVersion,
		"dbSignatureCount", info.SignatureCount,
		"dbDate", info.DatabaseDate)

	store, err := staging.NewStore(cfg.Staging.Dir)
	if err != nil {
		logger.Error("failed to initialize staging store", "error", err)
		os.Exit(1)
	}

	var journal api.Journal
	if cfg.Audit.Enabled {
		js, err := audit.NewStore(cfg.Audit.Path)
		if err != nil {
			logger.Error("failed to open scan journal", "path", cfg.Audit.Path, "error", err)
			os.Exit(1)
		}
		defer js.Close()
		journal = js
		logger.Info("scan journal enabled", "path", cfg.Audit.Path)
	}

	token := lifecycle.NewToken()
	handlers := api.NewHandlers(&api.Dependencies{
		Pipeline:       scan.NewPipeline(store, eng, logger),
		Journal:        journal,
		Token:          token,
		EnableShutdown: cfg.Server.EnableShutdownEndpoint,
		Version:        Version,
		Logger:         logger,
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = api.ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Logging.EnableRequestLogging {
				return true
			}
			return c.Request().URL.Path == "/health"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, handlers)
	web.RegisterStaticRoutes(e)

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()
	logger.Info("listening", "addr", cfg.GetServerAddr())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case <-token.Done():
		logger.Info("shutdown requested via endpoint")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
