// cmd/syncd/main.go runs the bridge sync worker: it pops queued user upserts
// from Redis and delivers them to the external chat provider, re-queueing
// failures for at-least-once delivery.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/linguahub/backend/internal/bridge"
	"github.com/linguahub/backend/internal/config"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	cfg := config.FromEnv()

	rdb, err := bridge.ConnectRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("redis connect failed: %v", err)
	}
	defer rdb.Close()

	queue := bridge.NewQueue(rdb, cfg.SyncQueue)
	chat := bridge.NewClient(cfg.ChatAPIKey, cfg.ChatAPISecret, cfg.ChatBaseURL)
	worker := bridge.NewWorker(queue, chat, logger)

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("bridge sync worker started")
	worker.Run(ctx)
}
