package accountinfra

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/playforge/login/pkg/account"
	"github.com/playforge/login/pkg/errx"
	"github.com/playforge/login/pkg/kernel"
)

// PostgresGamespaceStore resolves gamespace names and their allowed scopes.
type PostgresGamespaceStore struct {
	db *sqlx.DB
}

func NewPostgresGamespaceStore(db *sqlx.DB) account.GamespaceStore {
	return &PostgresGamespaceStore{db: db}
}

func (r *PostgresGamespaceStore) FindGamespace(ctx context.Context, tx account.Tx, name string) (kernel.GamespaceID, error) {
	var id string
	query := `SELECT gamespace_id FROM gamespaces WHERE gamespace_name = $1`
	err := sqlx.GetContext(ctx, ext(r.db, tx), &id, query, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", account.ErrGamespaceNotFound
		}
		return "", errx.Wrap(err, "failed to find gamespace").
			WithDetail("gamespace_name", name)
	}
	return kernel.GamespaceID(id), nil
}

func (r *PostgresGamespaceStore) GamespaceScopes(ctx context.Context, tx account.Tx, gamespace kernel.GamespaceID) (kernel.ScopeSet, error) {
	var scopes pq.StringArray
	query := `SELECT gamespace_scopes FROM gamespaces WHERE gamespace_id = $1`
	err := sqlx.GetContext(ctx, ext(r.db, tx), &scopes, query, string(gamespace))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrGamespaceNotFound
		}
		return nil, errx.Wrap(err, "failed to get gamespace scopes").
			WithDetail("gamespace", string(gamespace))
	}
	return kernel.NewScopeSet(scopes...), nil
}

// PostgresAccessStore resolves per-account granted scopes.
type PostgresAccessStore struct {
	db *sqlx.DB
}

func NewPostgresAccessStore(db *sqlx.DB) account.AccessStore {
	return &PostgresAccessStore{db: db}
}

func (r *PostgresAccessStore) AccountScopes(ctx context.Context, tx account.Tx, gamespace kernel.GamespaceID, accountID kernel.AccountID) (kernel.ScopeSet, error) {
	id, err := accountToInt64(accountID)
	if err != nil {
		return nil, err
	}
	var scopes pq.StringArray
	query := `SELECT scopes FROM account_access WHERE gamespace_id = $1 AND account_id = $2`
	err = sqlx.GetContext(ctx, ext(r.db, tx), &scopes, query, string(gamespace), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrNoScopesFound
		}
		return nil, errx.Wrap(err, "failed to get account access").
			WithDetail("account", string(accountID))
	}
	return kernel.NewScopeSet(scopes...), nil
}
