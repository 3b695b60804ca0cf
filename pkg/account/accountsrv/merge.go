package accountsrv

import (
	"context"

	"github.com/playforge/login/pkg/account"
	"github.com/playforge/login/pkg/errx"
	"github.com/playforge/login/pkg/kernel"
	"github.com/playforge/login/pkg/logx"
	"github.com/playforge/login/pkg/token"
)

// mergeAccounts merges credentialMine into the account of attachClaims:
//
//	     my account                    the one attaching to
//	                       ====>
//	   @accountMine                       @accountAttach
//	(<credentialMine>)                 (<credentialAttach>)
//
// When the target account already carries a different credential of the same
// type, that credential follows the attach-to user onto whichever account
// credentialMine resolves to. When both credentials point to different
// accounts and no resolve choice was made, merge_required is raised with a
// resolve token. The chosen account after merge is returned.
//
// Every store call runs on the ambient tx, so a failure anywhere rolls back
// all relinking.
func (s *AccountService) mergeAccounts(ctx context.Context, tx account.Tx, attachClaims *token.Claims, credentialMine kernel.Credential, resolve account.Resolve, gamespace kernel.GamespaceID) (kernel.AccountID, error) {
	accountAttach := attachClaims.Account
	credentialAttach, err := attachClaims.Credential()
	if err != nil {
		return "", account.Errors.New(account.CodeAttachToTokenInvalid)
	}

	creds := s.deps.Credentials
	tokens := s.deps.Tokens

	attached, err := creds.ListAccountCredentials(ctx, tx, accountAttach, []string{credentialMine.Type})
	if err != nil {
		return "", errx.Wrap(err, "failed to list account credentials")
	}
	var same kernel.Credential
	if len(attached) > 0 {
		same = attached[0]
	}

	accountsMine, err := creds.ListAccounts(ctx, tx, credentialMine)
	if err != nil {
		return "", errx.Wrap(err, "failed to list accounts")
	}

	if !same.IsZero() {
		// The target account already has a credential of this type.
		if same == credentialMine {
			return accountAttach, nil
		}

		var accountMine kernel.AccountID
		switch len(accountsMine) {
		case 0:
			accountMine, err = s.deps.Accounts.Create(ctx, tx)
			if err != nil {
				return "", errx.Wrap(err, "failed to create new account")
			}
			if err := creds.Attach(ctx, tx, credentialMine, accountMine); err != nil {
				return "", errx.Wrap(err, "failed to attach credential")
			}
		case 1:
			accountMine = accountsMine[0]
		default:
			return "", account.Errors.New(account.CodeMultipleAccountsAttached).
				WithMessagef("Credential '%s' has multiple accounts attached.", credentialMine)
		}

		// The attach-to user follows their old credential to the new account.
		if err := creds.Detach(ctx, tx, credentialAttach, accountAttach); err != nil {
			return "", errx.Wrap(err, "failed to detach credential")
		}
		if err := creds.Attach(ctx, tx, credentialAttach, accountMine); err != nil {
			return "", errx.Wrap(err, "failed to attach credential")
		}
		if err := tokens.InvalidateAccount(ctx, accountAttach); err != nil {
			return "", errx.Wrap(err, "failed to invalidate tokens")
		}
		return accountMine, nil
	}

	switch len(accountsMine) {
	case 0:
		// Unknown credential, free slot on the target: just attach.
		if err := creds.Attach(ctx, tx, credentialMine, accountAttach); err != nil {
			return "", errx.Wrap(err, "failed to attach credential")
		}
		return accountAttach, nil

	case 1:
		accountMine := accountsMine[0]

		switch resolve {
		case account.ResolvePending:
			return "", s.mergeRequired(ctx, gamespace, credentialMine, credentialAttach, accountMine, accountAttach)

		case account.ResolveNotMine:
			if err := creds.Detach(ctx, tx, credentialMine, accountMine); err != nil {
				return "", errx.Wrap(err, "failed to detach credential")
			}
			if err := creds.Attach(ctx, tx, credentialMine, accountAttach); err != nil {
				return "", errx.Wrap(err, "failed to attach credential")
			}
			return accountAttach, nil

		case account.ResolveLocal:
			if err := creds.Detach(ctx, tx, credentialMine, accountMine); err != nil {
				return "", errx.Wrap(err, "failed to detach credential")
			}
			if err := creds.Attach(ctx, tx, credentialMine, accountAttach); err != nil {
				return "", errx.Wrap(err, "failed to attach credential")
			}

			// Guest progress survives a login upgrade: local credentials on
			// the displaced account move along.
			locals, err := creds.ListAccountCredentials(ctx, tx, accountMine, kernel.LocalCredentialTypes())
			if err != nil {
				return "", errx.Wrap(err, "failed to list local credentials")
			}
			for _, local := range locals {
				if err := creds.Detach(ctx, tx, local, accountMine); err != nil {
					return "", errx.Wrap(err, "failed to detach credential")
				}
				if err := creds.Attach(ctx, tx, local, accountAttach); err != nil {
					return "", errx.Wrap(err, "failed to attach credential")
				}
			}

			if err := tokens.InvalidateAccount(ctx, accountMine); err != nil {
				return "", errx.Wrap(err, "failed to invalidate tokens")
			}
			return accountAttach, nil

		case account.ResolveRemote:
			if err := creds.Detach(ctx, tx, credentialAttach, accountAttach); err != nil {
				return "", errx.Wrap(err, "failed to detach credential")
			}
			if err := tokens.InvalidateAccount(ctx, accountAttach); err != nil {
				return "", errx.Wrap(err, "failed to invalidate tokens")
			}
			if err := creds.Attach(ctx, tx, credentialAttach, accountMine); err != nil {
				return "", errx.Wrap(err, "failed to attach credential")
			}
			return accountMine, nil

		default:
			return "", account.Errors.New(account.CodeUnknownMergeOption)
		}

	default:
		return "", account.Errors.New(account.CodeMultipleAccountsAttached).
			WithMessagef("Credential '%s' has multiple accounts attached.", credentialMine)
	}
}

// mergeRequired raises the 409 conflict with a resolve token and both
// candidate accounts described. No state is mutated before this raise.
func (s *AccountService) mergeRequired(ctx context.Context, gamespace kernel.GamespaceID, credentialMine, credentialAttach kernel.Credential, accountMine, accountAttach kernel.AccountID) error {
	resolveToken, err := s.deps.Signer.MintResolveToken(credentialMine, gamespace)
	if err != nil {
		return errx.Wrap(err, "failed to mint resolve token")
	}

	local := map[string]interface{}{
		"account":    accountAttach,
		"credential": credentialAttach.String(),
	}
	remote := map[string]interface{}{
		"account":    accountMine,
		"credential": credentialMine.String(),
	}

	profiles, err := s.deps.Social.MassProfiles(ctx, gamespace, []kernel.AccountID{accountAttach, accountMine})
	if err != nil {
		logx.Warnf("failed to get profiles for conflict: %v", err)
	} else {
		if p, ok := profiles[accountAttach]; ok {
			local["profile"] = p
		}
		if p, ok := profiles[accountMine]; ok {
			remote["profile"] = p
		}
	}

	return account.Errors.New(account.CodeMergeRequired).
		WithDetail("accounts", map[string]interface{}{
			"local":  local,
			"remote": remote,
		}).
		WithDetail("resolve_token", resolveToken.Value)
}
