package postgres

import (
	"context"
	"fmt"
)

// dateLayout is how DATE columns are bound, so the session time zone never
// shifts a calendar date.
const dateLayout = "2006-01-02"

// schema is applied statement by statement. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           BIGSERIAL PRIMARY KEY,
		display_name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id               TEXT PRIMARY KEY,
		access_token     TEXT NOT NULL,
		institution_id   TEXT,
		institution_name TEXT,
		user_id          BIGINT NOT NULL REFERENCES users(id) ON DELETE RESTRICT
	)`,
	`CREATE INDEX IF NOT EXISTS items_user_id_idx ON items (user_id)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id      TEXT PRIMARY KEY,
		item_id TEXT NOT NULL REFERENCES items(id) ON DELETE RESTRICT,
		balance BIGINT NOT NULL,
		name    TEXT,
		mask    TEXT,
		type    TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS accounts_item_id_idx ON accounts (item_id)`,
	`CREATE TABLE IF NOT EXISTS balance_history (
		date_of    DATE NOT NULL,
		account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE RESTRICT,
		balance    BIGINT NOT NULL,
		UNIQUE (date_of, account_id)
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id          TEXT PRIMARY KEY,
		amount      BIGINT NOT NULL,
		account_id  TEXT NOT NULL REFERENCES accounts(id) ON DELETE RESTRICT,
		categories  TEXT,
		category_id TEXT,
		date_of     DATE,
		location    TEXT,
		name        TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_account_date_idx ON transactions (account_id, date_of DESC)`,
}

// Migrate creates any missing tables and indexes.
func Migrate(ctx context.Context, db *DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
