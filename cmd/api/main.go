package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/mediashare-backend/api/routes"
	"github.com/angelmondragon/mediashare-backend/internal/auth"
	"github.com/angelmondragon/mediashare-backend/internal/comments"
	"github.com/angelmondragon/mediashare-backend/internal/media"
	"github.com/angelmondragon/mediashare-backend/internal/ratings"
	"github.com/angelmondragon/mediashare-backend/internal/users"
	"github.com/angelmondragon/mediashare-backend/pkg/config"
	"github.com/angelmondragon/mediashare-backend/pkg/db"
	"github.com/angelmondragon/mediashare-backend/pkg/logger"
	"github.com/angelmondragon/mediashare-backend/pkg/metrics"
	"github.com/angelmondragon/mediashare-backend/pkg/migrate"
	"github.com/angelmondragon/mediashare-backend/pkg/redis"
	"github.com/angelmondragon/mediashare-backend/pkg/storage/local"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.Connect(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()
	go dbClient.Monitor(ctx)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(ctx, "redis not configured, auth rate limiting disabled")
	}

	store, err := local.New(ctx, cfg.Storage, cfg.Media.MaxUploadBytes(), logg)
	if err != nil {
		logg.Error(ctx, "failed to prepare upload directory", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mediaMetrics := metrics.NewMediaMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(media.ServiceParams{
		DB:          dbClient,
		Repo:        media.NewRepository(dbClient.DB()),
		Users:       userRepo,
		Store:       store,
		Thumbnailer: media.NewImagingThumbnailer(cfg.Media.ThumbnailWidth),
		Logger:      logg,
		Metrics:     mediaMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create media service", err)
		os.Exit(1)
	}

	ratingService, err := ratings.NewService(ratings.ServiceParams{
		DB:      dbClient,
		Logger:  logg,
		Metrics: mediaMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create rating service", err)
		os.Exit(1)
	}

	commentService, err := comments.NewService(comments.NewRepository(dbClient.DB()), userRepo, mediaMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create comment service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"upload_dir": store.Dir(),
	})
	logg.Info(serverCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Storage:     store,
			Redis:       redisClient,
			Users:       userRepo,
			Auth:        authService,
			Media:       mediaService,
			Ratings:     ratingService,
			Comments:    commentService,
			Registry:    registry,
			HTTPMetrics: metrics.NewHTTPMetrics(registry),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serverCtx, "graceful shutdown failed", err)
		}
	}
}
