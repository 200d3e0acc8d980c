package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gobwas/ws"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/satya1844/cryptrack/cmd/gateway/internal/api"
	"github.com/satya1844/cryptrack/cmd/gateway/internal/broadcaster"
	"github.com/satya1844/cryptrack/cmd/gateway/internal/gateway"
	"github.com/satya1844/cryptrack/cmd/gateway/internal/hub"
	"github.com/satya1844/cryptrack/cmd/gateway/internal/metadata"
	"github.com/satya1844/cryptrack/cmd/gateway/internal/repository"
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
	store := repository.NewRedisStore(rdb)

	loader := metadata.NewLoader(store, logger, cfg.CMC.RefreshInterval)
	wsHub := hub.NewHub(logger)
	caster := broadcaster.New(store, loader, wsHub, logger, broadcaster.Options{
		QuotePreference: cfg.Broadcast.QuotePreference,
		Top:             cfg.Broadcast.Top,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go loader.Run(ctx)
	go caster.Run(ctx)

	handler := api.NewHandler(store, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			return
		}
		gateway.NewClient(conn, wsHub, logger).Start()
	})
	mux.HandleFunc("/api/prices", handler.Prices)
	mux.HandleFunc("/healthz", handler.Health)

	srv := &http.Server{Addr: cfg.App.Port, Handler: mux}

	go func() {
		logger.Info("Server Started", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("HTTP Error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutdown signal received")
	cancel()
	srv.Shutdown(context.Background())
	store.Close()
	logger.Info("Shutdown Complete")
}
