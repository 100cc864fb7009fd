package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/bookstore/internal/adapter/handler"
	"github.com/rl1809/bookstore/internal/adapter/storage"
	"github.com/rl1809/bookstore/internal/config"
	"github.com/rl1809/bookstore/internal/core/service"
	"github.com/rl1809/bookstore/internal/db"
	"github.com/rl1809/bookstore/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL
	mysqlDB, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Error("failed to open mysql", "error", err)
		os.Exit(1)
	}
	mysqlDB.SetMaxOpenConns(50)
	mysqlDB.SetMaxIdleConns(25)
	mysqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := mysqlDB.PingContext(ctx); err != nil {
		logger.Error("failed to ping mysql", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to mysql")

	if err := db.RunMigrations(mysqlDB); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to redis")

	// Adapters
	inventory := storage.NewInventoryAdapter(mysqlDB)
	orders := storage.NewOrderAdapter(mysqlDB)
	catalog := storage.NewCatalogAdapter(mysqlDB)
	users := storage.NewUserAdapter(mysqlDB)
	cache := storage.NewRedisAdapter(rdb)

	// Service
	checkout := service.NewCheckoutService(inventory, orders, cache, logger, cfg.QueueSize)

	// Worker pool
	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(id, checkout, logger)
		}(i)
	}
	logger.Info("started checkout workers", "count", cfg.WorkerCount)

	// HTTP server
	router := handler.NewRouter()
	httpHandler := handler.NewHTTPHandler(checkout, orders, catalog, users)
	httpHandler.Register(router)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	checkout.Close()
	wg.Wait()
	logger.Info("workers stopped")

	rdb.Close()
	mysqlDB.Close()
	logger.Info("connections closed")
}

func workerLoop(id int, checkout *service.CheckoutService, logger *slog.Logger) {
	for job := range checkout.Queue() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		orderID, err := checkout.Checkout(ctx, job.Request)
		cancel()

		if err != nil {
			logger.Debug("checkout failed", "worker", id, "error", err)
		}
		if job.Done != nil {
			job.Done(service.CheckoutResult{OrderID: orderID, Err: err})
		}
	}
}
