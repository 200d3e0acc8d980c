package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/satya1844/cryptrack/cmd/refresher/internal/refresher"
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

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Missing credential degrades gracefully: the refresher idles so the
	// rest of the system keeps serving the last persisted table.
	if cfg.CMC.APIKey == "" {
		logger.Warn("CMC_API_KEY not set, metadata refresh disabled")
		<-sigChan
		logger.Info("Refresher exited cleanly")
		return
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	client := refresher.NewCMCClient(cfg.CMC.BaseURL, cfg.CMC.APIKey)
	ref := refresher.New(client, rdb, logger, cfg.CMC.Limit, cfg.CMC.RefreshInterval)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		logger.Info("Refresher Started",
			zap.Int("limit", cfg.CMC.Limit),
			zap.Duration("interval", cfg.CMC.RefreshInterval))
		ref.Run(ctx)
		close(done)
	}()

	<-sigChan
	logger.Info("Shutdown signal received")
	cancel()
	<-done

	rdb.Close()
	logger.Info("Refresher exited cleanly")
}
