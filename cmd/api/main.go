package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payment-ledger-sync/internal/client"
	"payment-ledger-sync/internal/config"
	"payment-ledger-sync/internal/logger"
	"payment-ledger-sync/internal/repository"
	"payment-ledger-sync/internal/server"
	"payment-ledger-sync/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log = log.With(zap.String("env", cfg.Environment.Name))

	db, err := client.NewDatabase(cfg.Database, log)
	if err != nil {
		log.Fatal("init database", zap.Error(err))
	}

	processor, err := client.NewPaymentProcessor(cfg)
	if err != nil {
		log.Fatal("init payment processor", zap.Error(err))
	}

	syncState := repository.NewMemorySyncStateStore()
	if cfg.Redis.Addr != "" {
		rdb, err := client.NewRedisClient(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatal("init redis", zap.Error(err))
		}
		defer rdb.Close()
		syncState = repository.NewRedisSyncStateStore(rdb, cfg.Redis.Prefix)
	} else {
		log.Warn("REDIS_ADDR not set, sync lock is local to this process")
	}

	userRepo := repository.NewUserRepository(db)
	paymentSyncService := service.NewPaymentSyncService(
		processor,
		repository.NewPaymentRepository(db),
		repository.NewSubscriptionPlanRepository(db),
		userRepo,
		syncState,
		cfg.Sync,
		log,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(paymentSyncService, userRepo, cfg.Auth, log)

	log.Info("starting HTTP server", zap.String("addr", serverAddr), zap.String("processor", processor.Name()))
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
}
