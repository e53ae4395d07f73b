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

	"github.com/atlasbank/ledger-service/internal/api"
	"github.com/atlasbank/ledger-service/internal/config"
	"github.com/atlasbank/ledger-service/internal/db"
	"github.com/atlasbank/ledger-service/internal/domain"
	"github.com/atlasbank/ledger-service/internal/events"
	"github.com/atlasbank/ledger-service/internal/rates"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	ctx := context.Background()

	// Initialize database connection pool
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	slog.Info("database connection pool initialized")

	// Create repositories
	accountRepo := db.NewAccountRepository(pool.Pool)
	transactionRepo := db.NewTransactionRepository(pool.Pool)
	txManager := db.NewTransactionManager(pool.Pool)

	// Event publishing is optional; without a broker URL completed
	// transactions are simply not announced.
	var publisher domain.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		rabbitPublisher, err := events.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.RoutingKey)
		if err != nil {
			slog.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitPublisher.Close()
		publisher = rabbitPublisher
		slog.Info("rabbitmq publisher initialized", "exchange", cfg.RabbitMQ.Exchange)
	} else {
		slog.Warn("RABBITMQ_URL not set, event publishing disabled")
	}

	// Create domain service
	transferService := domain.NewTransferService(accountRepo, transactionRepo, txManager, rates.NewFixedTable(), publisher)
	slog.Info("domain services initialized")

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.NewRouter(transferService),
	}

	// Start server in a goroutine
	go func() {
		slog.Info("ledger service starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}
