package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ftgifting/backoffice/internal/app"
	"github.com/ftgifting/backoffice/internal/auth"
	"github.com/ftgifting/backoffice/internal/blob"
	"github.com/ftgifting/backoffice/internal/clients"
	"github.com/ftgifting/backoffice/internal/documents"
	"github.com/ftgifting/backoffice/internal/mail"
	"github.com/ftgifting/backoffice/internal/observability"
	"github.com/ftgifting/backoffice/internal/platform/cache"
	"github.com/ftgifting/backoffice/internal/platform/db"
	"github.com/ftgifting/backoffice/internal/profiles"
	"github.com/ftgifting/backoffice/internal/ratelimit"
	"github.com/ftgifting/backoffice/internal/shared"
	"github.com/ftgifting/backoffice/jobs"
	"github.com/ftgifting/backoffice/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	tokenStore := auth.NewTokenStore(redisClient, cfg.SessionTTL)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokenStore)
	authHandler := auth.NewHandler(logger, authService)

	idempotencyStore := shared.NewIdempotencyStore(pool)

	clientRepo := clients.NewRepository(pool)
	clientService := clients.NewService(clientRepo)
	clientHandler := clients.NewHandler(logger, clientService)

	documentRepo := documents.NewFallback(documents.NewRepository(pool), redisClient, jobClient, logger)
	numbering := documents.NewNumbering(documentRepo, logger)
	documentService := documents.NewService(documentRepo, numbering, clientRepo, idempotencyStore, logger)
	documentHandler := documents.NewHandler(logger, documentService)

	profileRepo := profiles.NewRepository(pool)
	profileService := profiles.NewService(profileRepo, logger)

	var blobClient *blob.Client
	if cfg.BlobURL != "" {
		blobClient = blob.NewClient(cfg.BlobURL)
	}

	reportClient := report.NewClient(cfg.GotenbergURL)
	renderer := report.NewRenderer(reportClient, profileService, blobClient, logger)
	reportHandler := report.NewHandler(renderer, documentService, logger)

	mailLimiter := ratelimit.New(ratelimit.NewRedisStore(redisClient), cfg.MailRateLimit, cfg.MailRateWindow)
	mailHandler := mail.NewHandler(logger, documentService, renderer, jobClient, mailLimiter)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthService:      authService,
		AuthHandler:      authHandler,
		DocumentsHandler: documentHandler,
		ClientsHandler:   clientHandler,
		MailHandler:      mailHandler,
		ReportHandler:    reportHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
