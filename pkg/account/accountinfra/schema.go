package accountinfra

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/playforge/login/pkg/errx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		account_id   BIGSERIAL PRIMARY KEY,
		account_info JSONB NOT NULL DEFAULT '{}'
	)`,

	`CREATE TABLE IF NOT EXISTS account_credentials (
		credential TEXT   NOT NULL,
		account_id BIGINT NOT NULL REFERENCES accounts (account_id),
		PRIMARY KEY (credential, account_id)
	)`,

	`CREATE INDEX IF NOT EXISTS account_credentials_account_idx
		ON account_credentials (account_id)`,

	`CREATE TABLE IF NOT EXISTS gamespaces (
		gamespace_id     TEXT PRIMARY KEY,
		gamespace_name   TEXT NOT NULL UNIQUE,
		gamespace_scopes TEXT[] NOT NULL DEFAULT '{}'
	)`,

	`CREATE TABLE IF NOT EXISTS account_access (
		gamespace_id TEXT   NOT NULL,
		account_id   BIGINT NOT NULL REFERENCES accounts (account_id),
		scopes       TEXT[] NOT NULL DEFAULT '{}',
		PRIMARY KEY (gamespace_id, account_id)
	)`,

	// Account "1" is reserved for services authenticating as the system.
	`INSERT INTO accounts (account_id) VALUES (1) ON CONFLICT DO NOTHING`,

	`SELECT setval(pg_get_serial_sequence('accounts', 'account_id'),
		GREATEST((SELECT MAX(account_id) FROM accounts), 1))`,
}

// Bootstrap applies the schema. Every statement is idempotent, so it is safe
// to run on every start.
func Bootstrap(ctx context.Context, db *sqlx.DB) error {
	for _, statement := range schema {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return errx.Wrap(err, "failed to bootstrap schema")
		}
	}
	return nil
}
