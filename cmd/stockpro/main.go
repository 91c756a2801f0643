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

	"github.com/starlink-stock/stockpro/internal/app"
	"github.com/starlink-stock/stockpro/internal/auth"
	"github.com/starlink-stock/stockpro/internal/dashboard"
	"github.com/starlink-stock/stockpro/internal/inventory"
	"github.com/starlink-stock/stockpro/internal/metrics"
	"github.com/starlink-stock/stockpro/internal/observability"
	"github.com/starlink-stock/stockpro/internal/persist"
	"github.com/starlink-stock/stockpro/internal/platform/cache"
	"github.com/starlink-stock/stockpro/internal/platform/db"
	"github.com/starlink-stock/stockpro/internal/sales"
	"github.com/starlink-stock/stockpro/internal/shared"
	"github.com/starlink-stock/stockpro/internal/store"
	"github.com/starlink-stock/stockpro/jobs"
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

	var slots persist.SlotStore
	if cfg.PersistBackend == "postgres" {
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		pgSlots := persist.NewPostgresSlotStore(pool, cfg.StatePrefix)
		if err := pgSlots.EnsureSchema(ctx); err != nil {
			logger.Error("ensure state schema", slog.Any("error", err))
			os.Exit(1)
		}
		slots = pgSlots
	} else {
		slots = persist.NewRedisSlotStore(redisClient, cfg.StatePrefix)
	}
	stateStore := persist.NewStateStore(slots, logger)

	st := store.New(store.Config{AllowNegativeStock: cfg.AllowNegativeStock})
	st.Hydrate(stateStore.Load(ctx))

	obs := observability.NewMetrics()

	persister := persist.NewPersister(stateStore, logger)
	persister.OnFailure(obs.PersistFailed)
	st.Subscribe(persister.Notify)
	st.Subscribe(func(snap store.Snapshot) {
		obs.SetLowStockCount(len(metrics.LowStock(snap)))
	})
	obs.SetLowStockCount(len(metrics.LowStock(st.Snapshot())))

	sessionManager := shared.NewSessionManager(redisClient, "stockpro_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	var authService *auth.Service
	if cfg.AdminPasswordHash != "" {
		authService = auth.NewService(cfg.AdminEmail, cfg.AdminPasswordHash)
	} else {
		authService, err = auth.NewServiceFromPassword(cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			logger.Error("hash admin password", slog.Any("error", err))
			os.Exit(1)
		}
	}
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	inventoryHandler := inventory.NewHandler(logger, st)
	salesHandler := sales.NewHandler(logger, st)
	dashboardHandler := dashboard.NewHandler(logger, st)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		InventoryHandler: inventoryHandler,
		SalesHandler:     salesHandler,
		DashboardHandler: dashboardHandler,
		JobHandler:       jobHandler,
		Metrics:          obs,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return persister.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("runtime", slog.Any("error", err))
		os.Exit(1)
	}
}
