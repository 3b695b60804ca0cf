package accountsrv

import (
	"context"
	"errors"

	"github.com/playforge/login/pkg/account"
	"github.com/playforge/login/pkg/errx"
	"github.com/playforge/login/pkg/kernel"
	"github.com/playforge/login/pkg/logx"
)

// DeleteAccount removes an account: every credential is detached first, then
// the row goes away.
func (s *AccountService) DeleteAccount(ctx context.Context, accountID kernel.AccountID) error {
	return s.deps.DB.WithinTx(ctx, func(tx account.Tx) error {
		credentials, err := s.deps.Credentials.ListAccountCredentials(ctx, tx, accountID, nil)
		if err != nil {
			return errx.Wrap(err, "failed to list account credentials")
		}
		for _, credential := range credentials {
			if err := s.deps.Credentials.Detach(ctx, tx, credential, accountID); err != nil {
				return errx.Wrap(err, "failed to detach credential")
			}
		}
		if err := s.deps.Accounts.Delete(ctx, tx, accountID); err != nil {
			return errx.Wrap(err, "failed to delete account")
		}
		return s.deps.Tokens.InvalidateAccount(ctx, accountID)
	})
}

// AccountsDeleted handles the external account-deletion event: a batched
// cascade over the listed accounts. When the event is scoped to one
// gamespace there is nothing to do, the core holds no per-gamespace data.
func (s *AccountService) AccountsDeleted(ctx context.Context, gamespace kernel.GamespaceID, accounts []kernel.AccountID, gamespaceOnly bool) error {
	if gamespaceOnly {
		return nil
	}
	if len(accounts) == 0 {
		return nil
	}

	err := s.deps.DB.WithinTx(ctx, func(tx account.Tx) error {
		return s.deps.Accounts.DeleteBatch(ctx, tx, accounts)
	})
	if err != nil {
		return errx.Wrap(err, "failed to delete accounts")
	}

	for _, a := range accounts {
		if err := s.deps.Tokens.InvalidateAccount(ctx, a); err != nil {
			logx.Warnf("failed to invalidate tokens of deleted account %s: %v", a, err)
		}
	}
	return nil
}

// LookupAccount returns the account of a credential, creating and attaching
// a fresh one when the credential is unknown.
func (s *AccountService) LookupAccount(ctx context.Context, credential kernel.Credential) (kernel.AccountID, error) {
	var accountID kernel.AccountID
	err := s.deps.DB.WithinTx(ctx, func(tx account.Tx) error {
		var err error
		accountID, err = s.deps.Credentials.GetAccount(ctx, tx, credential)
		if err == nil {
			return nil
		}
		if !errors.Is(err, account.ErrCredentialNotFound) {
			return errx.Wrap(err, "failed to look up credential")
		}
		accountID, err = s.deps.Accounts.Create(ctx, tx)
		if err != nil {
			return errx.Wrap(err, "failed to create account")
		}
		return s.deps.Credentials.Attach(ctx, tx, credential, accountID)
	})
	if err != nil {
		return "", err
	}
	return accountID, nil
}
