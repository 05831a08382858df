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

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/cantina-dev/cantina/internal/app"
	"github.com/cantina-dev/cantina/internal/auth"
	"github.com/cantina-dev/cantina/internal/jobs"
	"github.com/cantina-dev/cantina/internal/locations"
	"github.com/cantina-dev/cantina/internal/observability"
	"github.com/cantina-dev/cantina/internal/platform/cache"
	"github.com/cantina-dev/cantina/internal/platform/db"
	"github.com/cantina-dev/cantina/internal/products"
	"github.com/cantina-dev/cantina/internal/recipes"
	"github.com/cantina-dev/cantina/internal/refills"
	"github.com/cantina-dev/cantina/internal/storage"
	"github.com/cantina-dev/cantina/internal/users"
	"github.com/cantina-dev/cantina/internal/warehouses"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.NewClient(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()
	appCache := cache.New(redisClient, cfg.CacheTTL)

	storeClient, err := storage.NewClient(ctx, storage.Config{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		UseSSL:    cfg.S3UseSSL,
	})
	if err != nil {
		logger.Error("connect object storage", slog.Any("error", err))
		os.Exit(1)
	}
	storageService := storage.NewService(storeClient, cfg.S3Bucket)

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	purger := jobs.NewClient(asynqClient, storageService)
	defer purger.Close()

	provider, err := auth.NewProvider(ctx, auth.Config{
		Issuer:       cfg.OIDCIssuer,
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
	})
	if err != nil {
		logger.Error("discover oidc provider", slog.Any("error", err))
		os.Exit(1)
	}
	sessions := auth.NewSessionStore(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	authRepo := auth.NewRepository(pool)

	metrics := observability.NewMetrics()

	userService := users.NewService(users.NewRepository(pool), appCache, logger)
	productService := products.NewService(products.NewRepository(pool), appCache, purger, logger)
	recipeService := recipes.NewService(recipes.NewRepository(pool), appCache, logger)
	refillService := refills.NewService(refills.NewRepository(pool), appCache, logger)
	locationService := locations.NewService(locations.NewRepository(pool), appCache, logger)
	warehouseService := warehouses.NewService(warehouses.NewRepository(pool), appCache, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:   logger,
		Config:   cfg,
		Metrics:  metrics,
		Sessions: sessions,
		AuthRepo: authRepo,

		Auth:       auth.NewHandler(provider, sessions, authRepo, cfg.FrontendURL, logger),
		Users:      users.NewHandler(logger, userService),
		Products:   products.NewHandler(logger, productService),
		Recipes:    recipes.NewHandler(logger, recipeService),
		Refills:    refills.NewHandler(logger, refillService),
		Locations:  locations.NewHandler(logger, locationService),
		Warehouses: warehouses.NewHandler(logger, warehouseService),
		Storage:    storage.NewHandler(logger, storageService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down http server")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
