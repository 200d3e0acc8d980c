package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/satya1844/cryptrack/cmd/listener/internal/listener"
	"github.com/satya1844/cryptrack/pkg/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	conn, err := listener.GorillaDialer{}.Dial(cfg.Binance.WSURL)
	if err != nil {
		logger.Fatal("Failed to connect to exchange feed", zap.Error(err), zap.String("url", cfg.Binance.WSURL))
	}
	logger.Info("Connected to exchange feed", zap.String("url", cfg.Binance.WSURL))

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	l := listener.New(conn, rdb, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	select {
	case err := <-errCh:
		if err != nil {
			// Crash-only: no in-process reconnect. Exit after a short grace
			// delay and let the supervisor re-establish a clean subscription.
			logger.Error("Feed connection lost, exiting for supervisor restart",
				zap.Error(err), zap.Duration("grace", listener.RestartGraceDelay))
			time.Sleep(listener.RestartGraceDelay)
			rdb.Close()
			logger.Sync()
			os.Exit(1)
		}
	case <-sigChan:
		logger.Info("Shutdown signal received")
		cancel()
		conn.Close()
		<-errCh
	}

	rdb.Close()
	logger.Info("Listener exited cleanly")
}
