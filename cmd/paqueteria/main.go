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

	"github.com/mrspaquetes/paqueteria-api/internal/app"
	"github.com/mrspaquetes/paqueteria-api/internal/auth"
	"github.com/mrspaquetes/paqueteria-api/internal/collection"
	"github.com/mrspaquetes/paqueteria-api/internal/incidents"
	"github.com/mrspaquetes/paqueteria-api/internal/masterdata"
	"github.com/mrspaquetes/paqueteria-api/internal/observability"
	"github.com/mrspaquetes/paqueteria-api/internal/orders"
	"github.com/mrspaquetes/paqueteria-api/internal/platform/cache"
	"github.com/mrspaquetes/paqueteria-api/internal/platform/db"
	"github.com/mrspaquetes/paqueteria-api/internal/shared"
	"github.com/mrspaquetes/paqueteria-api/internal/tariffs"
	"github.com/mrspaquetes/paqueteria-api/jobs"
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
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionTTL)
	metrics := observability.NewMetrics()

	notifier, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := notifier.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	masterDataRepo := masterdata.NewRepository(pool)
	masterDataService := masterdata.NewService(masterDataRepo)
	masterDataHandler := masterdata.NewHandler(logger, masterDataService)

	tariffRepo := tariffs.NewRepository(pool)
	tariffCache := tariffs.NewCache(redisClient, cfg.TariffCacheTTL)
	tariffService := tariffs.NewService(logger, tariffRepo, tariffCache, metrics)
	tariffHandler := tariffs.NewHandler(logger, tariffService)

	orderRepo := orders.NewRepository(pool)
	orderService := orders.NewService(logger, orderRepo, tariffService, masterDataService, notifier, metrics)
	orderHandler := orders.NewHandler(logger, orderService)

	collectionRepo := collection.NewRepository(pool)
	collectionService := collection.NewService(logger, collectionRepo, orderService, masterDataService)
	collectionHandler := collection.NewHandler(logger, collectionService)

	incidentRepo := incidents.NewRepository(pool)
	incidentService := incidents.NewService(incidentRepo)
	incidentHandler := incidents.NewHandler(logger, incidentService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		AuthHandler:       authHandler,
		MasterDataHandler: masterDataHandler,
		TariffHandler:     tariffHandler,
		OrderHandler:      orderHandler,
		CollectionHandler: collectionHandler,
		IncidentHandler:   incidentHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
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
