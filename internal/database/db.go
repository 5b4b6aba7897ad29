// internal/database/db.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a pgx pool and exposes typed queries over the users,
// friendships, and friend_requests tables. It is constructed once at startup
// and handed to the engine and directory explicitly.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pgx pool against databaseURL and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return pool, nil
}

// tx runs fn inside a transaction.
func (s *Store) tx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, fn)
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	full_name TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	bio TEXT NOT NULL DEFAULT '',
	profile_pic TEXT NOT NULL DEFAULT '',
	native_language TEXT NOT NULL DEFAULT '',
	learning_language TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	is_onboarded BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS friendships (
	user_id UUID NOT NULL REFERENCES users(id),
	friend_id UUID NOT NULL REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, friend_id),
	CHECK (user_id <> friend_id)
);

CREATE TABLE IF NOT EXISTS friend_requests (
	id UUID PRIMARY KEY,
	sender_id UUID NOT NULL REFERENCES users(id),
	recipient_id UUID NOT NULL REFERENCES users(id),
	status TEXT NOT NULL DEFAULT 'pending',
	pair_lo UUID NOT NULL,
	pair_hi UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK (sender_id <> recipient_id),
	UNIQUE (pair_lo, pair_hi)
);
`

// EnsureSchema creates the tables if they do not exist yet. The unique
// constraint on (pair_lo, pair_hi) is what closes the duplicate-request race:
// two concurrent sends for the same unordered pair cannot both insert.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
