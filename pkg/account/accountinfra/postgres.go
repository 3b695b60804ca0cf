package accountinfra

import (
	"context"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/playforge/login/pkg/account"
	"github.com/playforge/login/pkg/errx"
	"github.com/playforge/login/pkg/kernel"
)

// SQLRunner implements account.TxRunner on top of sqlx. One transaction per
// authentication; any error rolls the whole relink back.
type SQLRunner struct {
	db *sqlx.DB
}

func NewSQLRunner(db *sqlx.DB) *SQLRunner {
	return &SQLRunner{db: db}
}

func (r *SQLRunner) WithinTx(ctx context.Context, fn func(tx account.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errx.Wrap(err, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errx.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// ext returns the handle queries run on: the ambient transaction when one is
// open, the pool otherwise.
func ext(db *sqlx.DB, tx account.Tx) sqlx.ExtContext {
	if t, ok := tx.(*sqlx.Tx); ok && t != nil {
		return t
	}
	return db
}

func accountToInt64(a kernel.AccountID) (int64, error) {
	id, err := strconv.ParseInt(string(a), 10, 64)
	if err != nil {
		return 0, errx.Internal("bad account id").WithDetail("account", string(a))
	}
	return id, nil
}

func accountsToInt64(accounts []kernel.AccountID) ([]int64, error) {
	ids := make([]int64, len(accounts))
	for i, a := range accounts {
		id, err := accountToInt64(a)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func int64ToAccount(id int64) kernel.AccountID {
	return kernel.AccountID(strconv.FormatInt(id, 10))
}
