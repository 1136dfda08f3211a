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

	"github.com/CarlosPavajeau/cetus/api/controllers"
	"github.com/CarlosPavajeau/cetus/api/routes"
	"github.com/CarlosPavajeau/cetus/internal/inventory"
	"github.com/CarlosPavajeau/cetus/internal/notifications"
	"github.com/CarlosPavajeau/cetus/internal/orders"
	"github.com/CarlosPavajeau/cetus/internal/payments"
	"github.com/CarlosPavajeau/cetus/internal/products"
	"github.com/CarlosPavajeau/cetus/internal/reviews"
	"github.com/CarlosPavajeau/cetus/pkg/config"
	"github.com/CarlosPavajeau/cetus/pkg/db"
	"github.com/CarlosPavajeau/cetus/pkg/env"
	"github.com/CarlosPavajeau/cetus/pkg/events"
	"github.com/CarlosPavajeau/cetus/pkg/logger"
	"github.com/CarlosPavajeau/cetus/pkg/metrics"
	"github.com/CarlosPavajeau/cetus/pkg/migrate"
	"github.com/CarlosPavajeau/cetus/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient)
	requireResource(logg, "migrations", err)

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	requireResource(logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	promRegistry := prometheus.NewRegistry()
	pipelineMetrics := metrics.NewEventPipelineMetrics(promRegistry)

	bus := events.NewBus(cfg.Events.ChannelCapacity)
	registry := events.NewRegistry()

	uow, err := events.NewUnitOfWork(dbClient, bus, logg, pipelineMetrics)
	requireResource(logg, "unit of work", err)

	dispatcher, err := events.NewDispatcher(bus, registry, logg, pipelineMetrics)
	requireResource(logg, "event dispatcher", err)

	ordersService, err := orders.NewService(orders.NewRepository(dbClient.DB()), uow)
	requireResource(logg, "orders service", err)

	inventoryService, err := inventory.NewService(inventory.NewRepository(dbClient.DB()), dbClient)
	requireResource(logg, "inventory service", err)

	restockHandler, err := inventory.NewRestockHandler(inventoryService, dbClient, logg)
	requireResource(logg, "restock handler", err)
	restockHandler.Register(registry)

	notificationsRepo := notifications.NewRepository(dbClient.DB())
	notificationsService, err := notifications.NewService(notificationsRepo, notifications.NewLogMailer(logg), dbClient, logg)
	requireResource(logg, "notifications service", err)

	notificationsHandler, err := notifications.NewHandler(notificationsService, notificationsRepo, logg)
	requireResource(logg, "notifications handler", err)
	notificationsHandler.Register(registry)

	paymentsService, err := payments.NewService(payments.NewSandboxGateway(logg), redisClient, cfg.Payments.LinkTTL, logg)
	requireResource(logg, "payments service", err)

	paymentsHandler, err := payments.NewHandler(paymentsService, logg)
	requireResource(logg, "payments handler", err)
	paymentsHandler.Register(registry)

	reviewsHandler, err := reviews.NewHandler(reviews.NewRepository(dbClient.DB()), dbClient, cfg.Reviews.SendDelay, logg)
	requireResource(logg, "reviews handler", err)
	reviewsHandler.Register(registry)

	salesHandler, err := products.NewSalesCounterHandler(products.NewRepository(dbClient.DB()), dbClient, logg)
	requireResource(logg, "sales counter handler", err)
	salesHandler.Register(registry)

	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		if err := dispatcher.Run(dispatcherCtx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(dispatcherCtx, "event dispatcher stopped unexpectedly", err)
		}
	}()

	router := routes.NewRouter(routes.Dependencies{
		Config:           cfg,
		Logger:           logg,
		OrdersService:    ordersService,
		InventoryService: inventoryService,
		HealthDeps: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		},
		Metrics: promRegistry,
	})

	addr := ":" + env.Get("PORT", cfg.App.Port)

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-signalCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "error shutting down http server", err)
	}

	// Dispatcher last: in-flight requests may still publish events, and the
	// drain gives buffered events a chance to reach their handlers.
	stopDispatcher()
	<-dispatcherDone
	dispatcher.Drain(context.Background(), cfg.Events.DrainTimeout)

	logg.Info(ctx, "api server stopped")
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "resource not working: "+resource, err)
	os.Exit(1)
}
