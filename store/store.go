// Package store persists users and the email history ledger in Postgres.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	email         TEXT UNIQUE NOT NULL,
	access_token  TEXT NOT NULL,
	refresh_token TEXT NOT NULL,
	token_uri     TEXT NOT NULL,
	id_token      TEXT NOT NULL,
	name          TEXT,
	given_name    TEXT,
	family_name   TEXT,
	picture       TEXT,
	locale        TEXT,
	history_id    TEXT
);

CREATE TABLE IF NOT EXISTS emails (
	id             BIGSERIAL PRIMARY KEY,
	user_id        BIGINT NOT NULL REFERENCES users(id),
	sender_email   TEXT NOT NULL,
	sender_name    TEXT NOT NULL,
	receiver_email TEXT NOT NULL,
	history_id     TEXT NOT NULL,
	date           TIMESTAMPTZ NOT NULL,
	title          TEXT NOT NULL,
	summary        TEXT NOT NULL,
	priority       TEXT NOT NULL,
	read           BOOLEAN NOT NULL
);

CREATE INDEX IF NOT EXISTS emails_receiver_idx ON emails (receiver_email, date DESC);
`

// Connect opens a pool against DATABASE_URL-style connection strings.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Init creates the tables if they do not exist yet.
func Init(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}
