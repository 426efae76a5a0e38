package main

// @title           Library Books API
// @version         1.0
// @description     CRUD and title search over the library book catalog.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/library-api/internal/config"
	"github.com/snnyvrz/library-api/internal/db"
	"github.com/snnyvrz/library-api/internal/logger"
	"github.com/snnyvrz/library-api/internal/repository"
	"github.com/snnyvrz/library-api/internal/router"
	"github.com/snnyvrz/library-api/internal/service"
	"go.uber.org/zap"
)

const appVersion = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to load configuration", zap.Error(err))
		return 1
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to initialize logger", zap.Error(err))
		return 1
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("configuration loaded",
		zap.String("gin_mode", cfg.GinMode),
		zap.String("port", cfg.Port),
		zap.String("db_driver", cfg.DBDriver),
		zap.Strings("cors_allowed_origins", cfg.CORSAllowedOrigins),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.String("env_file", cfg.EnvFileLoaded),
	)

	gin.SetMode(cfg.GinMode)

	database, err := db.ConnectWithRetry(cfg, log)
	if err != nil {
		log.Error("database unavailable", zap.Error(err))
		return 1
	}
	defer func() {
		if err := db.Close(database); err != nil {
			log.Warn("closing database", zap.Error(err))
		}
	}()

	if err := db.Migrate(database); err != nil {
		log.Error("migration failed", zap.Error(err))
		return 1
	}

	bookService := service.NewBookService(repository.NewGormBookRepository(database), log)

	engine := router.New(router.Deps{
		Config:    cfg,
		Logger:    log,
		DB:        database,
		Books:     bookService,
		StartTime: startTime,
		Version:   appVersion,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      engine,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			return 1
		}
	case sig := <-shutdown:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
			return 1
		}
	}

	log.Info("server stopped")
	return 0
}
