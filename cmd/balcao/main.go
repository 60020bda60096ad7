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

	"github.com/balcao-pos/balcao-pos/internal/app"
	"github.com/balcao-pos/balcao-pos/internal/catalog"
	"github.com/balcao-pos/balcao-pos/internal/clients"
	"github.com/balcao-pos/balcao-pos/internal/dashboard"
	"github.com/balcao-pos/balcao-pos/internal/platform/cache"
	"github.com/balcao-pos/balcao-pos/internal/platform/db"
	"github.com/balcao-pos/balcao-pos/internal/profit"
	"github.com/balcao-pos/balcao-pos/internal/sales"
	"github.com/balcao-pos/balcao-pos/internal/sales/composer"
	"github.com/balcao-pos/balcao-pos/jobs"
)

func main() {
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

	summaryCache := profit.NewSummaryCache(redisClient, 24*time.Hour)
	trigger := profit.NewTrigger(profit.NewRepository(pool), logger,
		profit.WithSettleDelay(cfg.ProfitSettleDelay),
		profit.WithFetchTimeout(cfg.ProfitFetchTimeout),
		profit.WithCache(summaryCache),
	)
	defer trigger.Close()
	trigger.Prime(ctx)

	sub := trigger.Subscribe(func(s profit.Summary) {
		logger.Info("monthly profit refreshed", slog.String("amount", s.Formatted))
	})
	defer sub.Cancel()

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("connect queue", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()

	comp := composer.New(composer.WithZeroStockUnlimited(cfg.ZeroStockUnlimited))

	clientsService := clients.NewService(clients.NewRepository(pool))
	catalogService := catalog.NewService(catalog.NewRepository(pool))
	salesService := sales.NewService(
		sales.NewRepository(pool),
		catalogService,
		catalogService,
		trigger,
		comp,
		logger,
	)
	dashboardService := dashboard.NewService(dashboard.NewRepository(pool), trigger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		ClientsHandler:   clients.NewHandler(logger, clientsService),
		CatalogHandler:   catalog.NewHandler(logger, catalogService),
		SalesHandler:     sales.NewHandler(logger, salesService),
		DashboardHandler: dashboard.NewHandler(logger, dashboardService),
		JobsHandler:      jobs.NewHandler(logger, jobsClient),
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
