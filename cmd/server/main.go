// cmd/server/main.go
package main

import (
	"context"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/linguahub/backend/internal/auth"
	"github.com/linguahub/backend/internal/bridge"
	"github.com/linguahub/backend/internal/config"
	"github.com/linguahub/backend/internal/database"
	"github.com/linguahub/backend/internal/directory"
	"github.com/linguahub/backend/internal/handlers"
	"github.com/linguahub/backend/internal/relationship"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	cfg := config.FromEnv()

	if err := auth.Init(); err != nil {
		logger.Fatalf("auth init failed: %v", err)
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("database connect failed: %v", err)
	}
	defer pool.Close()

	store := database.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatalf("schema setup failed: %v", err)
	}

	rdb, err := bridge.ConnectRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("redis connect failed: %v", err)
	}
	defer rdb.Close()

	queue := bridge.NewQueue(rdb, cfg.SyncQueue)
	chat := bridge.NewClient(cfg.ChatAPIKey, cfg.ChatAPISecret, cfg.ChatBaseURL)

	srv := &handlers.Server{
		Log:        logger,
		Accounts:   store,
		Engine:     relationship.NewEngine(store, store, logger),
		Directory:  directory.New(store, queue, logger),
		Tokens:     chat,
		CORSOrigin: cfg.CORSOrigin,
	}

	logger.Infof("Running on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, srv.Routes()); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}
