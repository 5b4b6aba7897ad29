// Package config gathers every environment knob in one place so handles can
// be constructed explicitly instead of read from ambient globals.
package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Addr string

	// DatabaseURL wins if set; otherwise the URL is assembled from the
	// individual POSTGRES_* variables.
	DatabaseURL string

	RedisAddr string
	RedisDB   int

	// SyncQueue is the Redis list the API pushes chat-directory upsert
	// jobs onto and syncd pops from.
	SyncQueue string

	// External chat/video provider credentials.
	ChatAPIKey    string
	ChatAPISecret string
	ChatBaseURL   string

	CORSOrigin string
}

const DefaultSyncQueue = "bridge_upserts"

func FromEnv() Config {
	cfg := Config{
		Addr:          ":" + getEnv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		SyncQueue:     getEnv("SYNC_QUEUE_NAME", DefaultSyncQueue),
		ChatAPIKey:    os.Getenv("CHAT_API_KEY"),
		ChatAPISecret: os.Getenv("CHAT_API_SECRET"),
		ChatBaseURL:   getEnv("CHAT_BASE_URL", "https://chat.example-api.io"),
		CORSOrigin:    getEnv("CORS_ORIGIN", "http://localhost:5173"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s",
			getEnv("POSTGRES_USER", "postgres"),
			getEnv("POSTGRES_PASSWORD", "postgres"),
			getEnv("PG_HOST", "localhost"),
			getEnv("PG_PORT", "5432"),
			getEnv("PG_DATABASE", "linguahub"),
		)
	}
	return cfg
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
