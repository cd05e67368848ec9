package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"ctfboard/docs"
	"ctfboard/internal/auth"
	"ctfboard/internal/cache"
	"ctfboard/internal/config"
	"ctfboard/internal/db"
	"ctfboard/internal/generator"
	"ctfboard/internal/handler"
	"ctfboard/internal/logger"
	"ctfboard/internal/repository"
	"ctfboard/internal/router"
	"ctfboard/internal/service"
	"ctfboard/internal/view"
)

// @title CTF Board
// @version 1.0
// @description Challenge hosting platform: generated and community challenges, flag submission and admin review.
// @BasePath /
// @securityDefinitions.apikey SessionCookie
// @in header
// @name ctf_session
// @description Session cookie set by POST /login.
func main() {
	cfg := config.Load()

	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel))

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		slog.Error("database init", "error", err)
		os.Exit(1)
	}

	if cfg.ResetDB {
		slog.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			slog.Error("reset database", "error", err)
			os.Exit(1)
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		slog.Error("auto-migrate", "error", err)
		os.Exit(1)
	}

	redisClient, err := db.NewRedis(context.Background(), cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		slog.Error("redis init", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	cacheClient := cache.New(redisClient)

	if err := os.MkdirAll(cfg.ChallengesDir, 0o755); err != nil {
		slog.Error("create challenges dir", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	generatedRepo := repository.NewGeneratedRepository(cfg.ChallengesDir)
	customRepo := repository.NewCustomChallengeRepository(gormDB)
	fileRepo := repository.NewChallengeFileRepository(gormDB)
	roleRepo := repository.NewUserRoleRepository(gormDB)
	uploads := repository.NewUploadStore(cfg.UploadDir, config.MaxUploadSize)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.SessionSecret)
	sessions := auth.NewRedisSessionStore(redisClient)
	policy := auth.NewRolePolicy(cfg.AdminUsernames)

	// Initialize services
	identityService := service.NewIdentityService(roleRepo, policy, sessions, jwtService)
	catalogService := service.NewCatalogService(generatedRepo, customRepo, cacheClient)
	flagService := service.NewFlagService(generatedRepo, customRepo, sessions)
	reviewService := service.NewReviewService(customRepo, cacheClient)
	fileService := service.NewFileService(generatedRepo, customRepo, fileRepo)
	submissionService := service.NewSubmissionService(customRepo, uploads)

	// Initialize handlers
	pages := handler.NewPages(sessions)
	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(identityService, pages, cfg.CookieSecure),
		Dashboard: handler.NewDashboardHandler(catalogService, pages),
		Challenge: handler.NewChallengeHandler(catalogService, flagService, pages),
		File:      handler.NewFileHandler(fileService, pages),
		Custom:    handler.NewCustomHandler(submissionService, pages),
		Review:    handler.NewReviewHandler(reviewService, pages),
		Generate:  handler.NewGenerateHandler(generator.New(cfg.ChallengesDir), pages),
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = view.NewRenderer()

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}
	router.Register(e, cfg, jwtService, sessions, handlers)

	slog.Info("starting server", "port", cfg.ServerPort, "db_driver", cfg.DBDriver, "challenges_dir", cfg.ChallengesDir)

	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
}
