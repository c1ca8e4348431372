package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zhandos04/library-management-system/database"
	"github.com/Zhandos04/library-management-system/internal/cache"
	"github.com/Zhandos04/library-management-system/internal/config"
	"github.com/Zhandos04/library-management-system/internal/gemini"
	"github.com/Zhandos04/library-management-system/internal/handler"
	"github.com/Zhandos04/library-management-system/internal/middleware"
	"github.com/Zhandos04/library-management-system/internal/repository"
	"github.com/Zhandos04/library-management-system/internal/service"
	"github.com/Zhandos04/library-management-system/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	// Report cache is best-effort: the API serves fresh queries when
	// Redis is unreachable.
	reportCache, err := cache.NewReportCache(cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL)
	if err != nil {
		logger.Warn("report cache unavailable, reports will not be cached", "error", err)
		reportCache = nil
	}

	imageStore, err := storage.NewLocalImageStore(cfg.ImageDataPath, cfg.ImageBaseURL)
	if err != nil {
		logger.Error("image storage setup failed", "error", err)
		os.Exit(1)
	}

	var descriptionGen service.DescriptionGenerator
	if cfg.GeminiAPIKey != "" {
		descriptionGen = gemini.NewClient(cfg.GeminiAPIURL, cfg.GeminiAPIKey)
	}

	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	bookRepo := repository.NewBookRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	reportRepo := repository.NewReportRepository(db)

	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg)
	bookService := service.NewBookService(bookRepo, imageStore, descriptionGen, logger)
	memberService := service.NewMemberService(memberRepo)
	loanService := service.NewLoanService(loanRepo, memberRepo, cfg, logger)
	reportService := service.NewReportService(reportRepo, reportCache, logger)

	authHandler := handler.NewAuthHandler(authService, int64(cfg.AccessTokenTTL.Seconds()))
	bookHandler := handler.NewBookHandler(bookService)
	memberHandler := handler.NewMemberHandler(memberService, loanService)
	loanHandler := handler.NewLoanHandler(loanService)
	reportHandler := handler.NewReportHandler(reportService)
	adminHandler := handler.NewAdminHandler(loanService, reportService, authService)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(50, 100))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Book covers are served straight off disk under their public prefix.
	r.Static(cfg.ImageBaseURL, cfg.ImageDataPath)

	api := r.Group("/api")

	authHandler.RegisterRoutes(api.Group("/auth"))

	// Book browsing is public; mutations sit behind the librarian gate
	// inside the handler's route registration.
	publicBooks := api.Group("/books")
	authedBooks := api.Group("/books", middleware.AuthMiddleware(authService))
	bookHandler.RegisterRoutes(publicBooks, authedBooks)

	authed := api.Group("", middleware.AuthMiddleware(authService))
	memberHandler.RegisterRoutes(authed.Group("/members"))
	loanHandler.RegisterRoutes(authed.Group("/loans"))
	reportHandler.RegisterRoutes(authed.Group("/reports", middleware.RequireLibrarian()))
	adminHandler.RegisterRoutes(authed.Group("/admin", middleware.RequireAdmin()))

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
	if reportCache != nil {
		reportCache.Close()
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
