// @title Merit API
// @version 1.0
// @description Role-based student behaviour tracking service.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rowad-platform/merit-api/internal/handler"
	"github.com/rowad-platform/merit-api/internal/repository"
	"github.com/rowad-platform/merit-api/internal/router"
	"github.com/rowad-platform/merit-api/internal/service"
	"github.com/rowad-platform/merit-api/pkg/cache"
	"github.com/rowad-platform/merit-api/pkg/config"
	"github.com/rowad-platform/merit-api/pkg/database"
	"github.com/rowad-platform/merit-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrations(cfg, log, os.Args[2:])
		return
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	defer db.Close()

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(client)
			defer cacheRepo.Close()
		}
	}

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	behaviorRepo := repository.NewBehaviorRepository(db)

	validate := service.NewValidator()
	metrics := service.NewMetricsService()

	var cacheService *service.CacheService
	if cacheRepo != nil {
		cacheService = service.NewCacheService(cacheRepo, metrics, log, cfg.Cache.StatisticsTTL)
	}

	authService := service.NewAuthService(userRepo, studentRepo, validate, log, service.AuthConfig{
		Secret:      cfg.JWT.Secret,
		Expiration:  cfg.JWT.Expiration,
		EmailDomain: cfg.Students.EmailDomain,
	})
	studentService := service.NewStudentService(studentRepo, userRepo, cacheService, validate, log, service.StudentConfig{
		EmailDomain:     cfg.Students.EmailDomain,
		DefaultPassword: cfg.Students.DefaultPassword,
	})
	behaviorService := service.NewBehaviorService(behaviorRepo, cacheService, validate, log)
	reportService := service.NewReportService(studentRepo, behaviorRepo, cacheService, log)
	importService := service.NewImportService(studentService, log)

	engine := router.New(router.Dependencies{
		Config:          cfg,
		Logger:          log,
		DB:              db,
		Auth:            authService,
		Metrics:         metrics,
		AuthHandler:     handler.NewAuthHandler(authService),
		StudentHandler:  handler.NewStudentHandler(studentService),
		BehaviorHandler: handler.NewBehaviorHandler(behaviorService),
		ReportHandler:   handler.NewReportHandler(reportService),
		ImportHandler:   handler.NewImportHandler(importService, cfg.Import.MaxFileSizeBytes),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server listening", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func runMigrations(cfg *config.Config, log *zap.Logger, args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	down := fs.Bool("down", false, "roll back all migrations instead of applying them")
	if err := fs.Parse(args); err != nil {
		log.Fatal("parse migrate flags", zap.Error(err))
	}

	migrator := database.NewMigrator(cfg.Database)
	if *down {
		if err := migrator.Down(); err != nil {
			log.Fatal("rollback failed", zap.Error(err))
		}
		log.Info("migrations rolled back")
		return
	}
	if err := migrator.Up(); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	log.Info("migrations applied")
}
