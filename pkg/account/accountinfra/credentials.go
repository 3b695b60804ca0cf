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

// PostgresCredentialStore persists credential⇄account links in the
// account_credentials table.
type PostgresCredentialStore struct {
	db *sqlx.DB
}

func NewPostgresCredentialStore(db *sqlx.DB) account.CredentialStore {
	return &PostgresCredentialStore{db: db}
}

func (r *PostgresCredentialStore) Attach(ctx context.Context, tx account.Tx, credential kernel.Credential, accountID kernel.AccountID) error {
	id, err := accountToInt64(accountID)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO account_credentials (credential, account_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	if _, err := ext(r.db, tx).ExecContext(ctx, query, credential.String(), id); err != nil {
		return errx.Wrap(err, "failed to attach credential").
			WithDetail("credential", credential.String())
	}
	return nil
}

func (r *PostgresCredentialStore) Detach(ctx context.Context, tx account.Tx, credential kernel.Credential, accountID kernel.AccountID) error {
	id, err := accountToInt64(accountID)
	if err != nil {
		return err
	}
	query := `DELETE FROM account_credentials WHERE credential = $1 AND account_id = $2`
	if _, err := ext(r.db, tx).ExecContext(ctx, query, credential.String(), id); err != nil {
		return errx.Wrap(err, "failed to detach credential").
			WithDetail("credential", credential.String())
	}
	return nil
}

// ListAccounts serializes concurrent authorizations of the same credential
// when called inside a transaction: an advisory lock on the credential covers
// the unknown-credential case (no rows to lock yet), and the row locks cover
// relinking.
func (r *PostgresCredentialStore) ListAccounts(ctx context.Context, tx account.Tx, credential kernel.Credential) ([]kernel.AccountID, error) {
	query := `SELECT account_id FROM account_credentials WHERE credential = $1 ORDER BY account_id`
	if t, inTx := tx.(*sqlx.Tx); inTx {
		if _, err := t.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, credential.String()); err != nil {
			return nil, errx.Wrap(err, "failed to lock credential").
				WithDetail("credential", credential.String())
		}
		query += ` FOR UPDATE`
	}

	var ids []int64
	if err := sqlx.SelectContext(ctx, ext(r.db, tx), &ids, query, credential.String()); err != nil {
		return nil, errx.Wrap(err, "failed to list credential accounts").
			WithDetail("credential", credential.String())
	}

	accounts := make([]kernel.AccountID, len(ids))
	for i, id := range ids {
		accounts[i] = int64ToAccount(id)
	}
	return accounts, nil
}

func (r *PostgresCredentialStore) ListAccountCredentials(ctx context.Context, tx account.Tx, accountID kernel.AccountID, typeFilter []string) ([]kernel.Credential, error) {
	id, err := accountToInt64(accountID)
	if err != nil {
		return nil, err
	}

	query := `SELECT credential FROM account_credentials WHERE account_id = $1`
	args := []interface{}{id}
	if len(typeFilter) > 0 {
		query += ` AND split_part(credential, ':', 1) = ANY($2)`
		args = append(args, pq.Array(typeFilter))
	}
	query += ` ORDER BY credential`

	var raw []string
	if err := sqlx.SelectContext(ctx, ext(r.db, tx), &raw, query, args...); err != nil {
		return nil, errx.Wrap(err, "failed to list account credentials").
			WithDetail("account", string(accountID))
	}

	credentials := make([]kernel.Credential, 0, len(raw))
	for _, value := range raw {
		credential, err := kernel.ParseCredential(value)
		if err != nil {
			return nil, errx.Wrap(err, "stored credential is malformed").
				WithDetail("credential", value)
		}
		credentials = append(credentials, credential)
	}
	return credentials, nil
}

func (r *PostgresCredentialStore) GetAccount(ctx context.Context, tx account.Tx, credential kernel.Credential) (kernel.AccountID, error) {
	var id int64
	query := `SELECT account_id FROM account_credentials WHERE credential = $1`
	err := sqlx.GetContext(ctx, ext(r.db, tx), &id, query, credential.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return "", account.ErrCredentialNotFound
		}
		return "", errx.Wrap(err, "failed to get credential account").
			WithDetail("credential", credential.String())
	}
	return int64ToAccount(id), nil
}
