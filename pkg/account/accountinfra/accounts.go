package accountinfra

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/playforge/login/pkg/account"
	"github.com/playforge/login/pkg/errx"
	"github.com/playforge/login/pkg/kernel"
)

// PostgresAccountStore persists account rows and their opaque info blob.
type PostgresAccountStore struct {
	db *sqlx.DB
}

func NewPostgresAccountStore(db *sqlx.DB) account.AccountStore {
	return &PostgresAccountStore{db: db}
}

func (r *PostgresAccountStore) Create(ctx context.Context, tx account.Tx) (kernel.AccountID, error) {
	var id int64
	query := `INSERT INTO accounts (account_info) VALUES ('{}') RETURNING account_id`
	if err := sqlx.GetContext(ctx, ext(r.db, tx), &id, query); err != nil {
		return "", errx.Wrap(err, "failed to create account")
	}
	return int64ToAccount(id), nil
}

func (r *PostgresAccountStore) Exists(ctx context.Context, tx account.Tx, accountID kernel.AccountID) (bool, error) {
	id, err := accountToInt64(accountID)
	if err != nil {
		return false, err
	}
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE account_id = $1)`
	if err := sqlx.GetContext(ctx, ext(r.db, tx), &exists, query, id); err != nil {
		return false, errx.Wrap(err, "failed to check account existence")
	}
	return exists, nil
}

func (r *PostgresAccountStore) GetInfo(ctx context.Context, tx account.Tx, accountID kernel.AccountID) (map[string]interface{}, error) {
	id, err := accountToInt64(accountID)
	if err != nil {
		return nil, err
	}
	var raw []byte
	query := `SELECT account_info FROM accounts WHERE account_id = $1`
	if err := sqlx.GetContext(ctx, ext(r.db, tx), &raw, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errx.Wrap(err, "failed to get account info").
			WithDetail("account", string(accountID))
	}
	var info map[string]interface{}
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, errx.Wrap(err, "stored account info is malformed").
			WithDetail("account", string(accountID))
	}
	return info, nil
}

// UpdateInfo deep-merges patch into the stored blob, reading the current one
// on the same transaction.
func (r *PostgresAccountStore) UpdateInfo(ctx context.Context, tx account.Tx, accountID kernel.AccountID, patch map[string]interface{}) error {
	id, err := accountToInt64(accountID)
	if err != nil {
		return err
	}

	info, err := r.GetInfo(ctx, tx, accountID)
	if err != nil {
		return err
	}
	if info == nil {
		info = map[string]interface{}{}
	}
	account.MergeInfo(info, patch)

	raw, err := json.Marshal(info)
	if err != nil {
		return errx.Wrap(err, "failed to encode account info")
	}
	query := `UPDATE accounts SET account_info = $2 WHERE account_id = $1`
	if _, err := ext(r.db, tx).ExecContext(ctx, query, id, raw); err != nil {
		return errx.Wrap(err, "failed to update account info").
			WithDetail("account", string(accountID))
	}
	return nil
}

func (r *PostgresAccountStore) Delete(ctx context.Context, tx account.Tx, accountID kernel.AccountID) error {
	id, err := accountToInt64(accountID)
	if err != nil {
		return err
	}
	query := `DELETE FROM accounts WHERE account_id = $1`
	if _, err := ext(r.db, tx).ExecContext(ctx, query, id); err != nil {
		return errx.Wrap(err, "failed to delete account").
			WithDetail("account", string(accountID))
	}
	return nil
}

func (r *PostgresAccountStore) DeleteBatch(ctx context.Context, tx account.Tx, accounts []kernel.AccountID) error {
	ids, err := accountsToInt64(accounts)
	if err != nil {
		return err
	}
	handle := ext(r.db, tx)

	query := `DELETE FROM account_credentials WHERE account_id = ANY($1)`
	if _, err := handle.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return errx.Wrap(err, "failed to delete account credentials")
	}
	query = `DELETE FROM account_access WHERE account_id = ANY($1)`
	if _, err := handle.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return errx.Wrap(err, "failed to delete account access")
	}
	query = `DELETE FROM accounts WHERE account_id = ANY($1)`
	if _, err := handle.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return errx.Wrap(err, "failed to delete accounts")
	}
	return nil
}
