package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// RunMigrations creates the PostgreSQL schema if it does not exist.
// SQLite manages its own schema in NewSQLiteStore.
func RunMigrations(databaseURL string) error {
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS message (
		id BIGSERIAL PRIMARY KEY,
		author_id BIGINT NOT NULL REFERENCES account(id),
		text TEXT NOT NULL,
		posted_at_epoch BIGINT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_message_author ON message(author_id);
	`

	_, err = conn.Exec(ctx, schema)
	return err
}
