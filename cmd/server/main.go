// @title			ImagiBox API
// @version		1.0
// @description	Children's illustrated story generation service.
//
// @host		localhost:8080
// @BasePath	/api/v1
//
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description				Type "Bearer" followed by a space and the JWT token.
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "imagibox-server/docs"
	"imagibox-server/internal/ai"
	"imagibox-server/internal/config"
	"imagibox-server/internal/database"
	"imagibox-server/internal/handler"
	"imagibox-server/internal/imaging"
	"imagibox-server/internal/logger"
	"imagibox-server/internal/safety"
	"imagibox-server/internal/service"
	"imagibox-server/pkg/taskmanager"
)

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	encoding := "json"
	if cfg.Env == "development" {
		encoding = "console"
	}
	log, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: encoding,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	log.Info("Starting imagibox-server", zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- PostgreSQL ---
	pool, err := database.NewPool(ctx, database.PostgresConfig{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pool.Close()
	log.Info("Connected to PostgreSQL")

	databaseURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.DBUser, url.QueryEscape(cfg.DBPassword), cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	if err := database.Migrate(databaseURL, log); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// --- Redis ---
	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis")

	// --- Repositories ---
	storyRepo := database.NewPgStoryRepository(pool, log)
	chapterRepo := database.NewPgChapterRepository(pool, log)
	moodTagRepo := database.NewPgMoodTagRepository(pool, log)
	userRepo := database.NewPgUserRepository(pool, log)
	quotaLedger := database.NewRedisQuotaLedger(redisClient, log)

	// --- Pipeline collaborators ---
	gate, err := safety.NewGate(cfg.GetExtraBlockedTerms(), log)
	if err != nil {
		log.Fatal("Failed to build content safety gate", zap.Error(err))
	}

	textGen, err := ai.New(ai.Config{
		APIKey:    cfg.AIAPIKey,
		BaseURL:   cfg.AIBaseURL,
		ModelName: cfg.AIModel,
		Timeout:   int(cfg.AITimeout.Seconds()),
	})
	if err != nil {
		log.Fatal("Failed to create language model client", zap.Error(err))
	}

	blobStore, err := imaging.NewLocalBlobStore(cfg.ImageSavePath, cfg.ImagePublicURL, log)
	if err != nil {
		log.Fatal("Failed to create blob store", zap.Error(err))
	}
	imageModel := imaging.NewHTTPImageModelClient(cfg.ImageModelURL, cfg.ImageModelTimeout, log)
	synthesizer := imaging.NewSynthesizer(textGen, imageModel, blobStore, cfg.ImageFolder, log)

	tasks := taskmanager.New(taskmanager.Config{MaxTasks: cfg.MaxImageTasks})
	// Waiters collect their own tasks; the sweep only reaps tasks whose
	// waiter timed out before the image finished.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				tasks.Cleanup(30 * time.Minute)
			case <-ctx.Done():
				return
			}
		}
	}()

	deps := service.StoryServiceDeps{
		Stories:            storyRepo,
		Chapters:           chapterRepo,
		MoodTags:           moodTagRepo,
		Users:              userRepo,
		Quota:              quotaLedger,
		TextGen:            textGen,
		Images:             synthesizer,
		Gate:               gate,
		Tasks:              tasks,
		ImageWaitTimeout:   cfg.ImageWaitTimeout,
		ContextTokenBudget: cfg.ContextTokenBudget,
		Metrics:            service.NewMetrics(),
	}
	if counter, err := ai.NewTokenCounter(cfg.AIModel); err != nil {
		log.Warn("Token counter unavailable, continuation context will not be trimmed", zap.Error(err))
	} else {
		deps.Tokens = counter
	}

	// --- Services and HTTP ---
	storySvc := service.NewStoryService(deps, log)
	authSvc := service.NewAuthService(userRepo, service.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		PasswordPepper: cfg.PasswordPepper,
		AccessTokenTTL: cfg.AccessTokenTTL,
	}, log)
	analyticsSvc := service.NewAnalyticsService(storyRepo, moodTagRepo, userRepo, log)

	// Per-IP throttle for register/login, backed by the shared Redis client.
	rateLimitStore := handler.NewRedisRateLimitStore(redisClient, time.Minute, uint(cfg.AuthRateLimitPerMinute))

	h := handler.New(authSvc, storySvc, analyticsSvc, log)
	router := h.NewRouter(handler.RouterConfig{
		Env:            cfg.Env,
		AllowedOrigins: cfg.GetAllowedOrigins(),
		StaticImageDir: cfg.ImageSavePath,
		AuthRateLimit:  handler.AuthRateLimiter(rateLimitStore, log),
	})

	// Generation requests block on the language model, so the write
	// timeout is generous.
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := tasks.Shutdown(shutdownCtx); err != nil {
		log.Warn("Image tasks did not finish before shutdown deadline", zap.Error(err))
	}

	log.Info("Server stopped")
}
