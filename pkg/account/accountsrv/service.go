// Package accountsrv orchestrates authorization: credential verification,
// the account merge state machine, scope resolution and token minting.
package accountsrv

import (
	"context"
	"errors"

	"github.com/playforge/login/pkg/account"
	"github.com/playforge/login/pkg/auth"
	"github.com/playforge/login/pkg/errx"
	"github.com/playforge/login/pkg/kernel"
	"github.com/playforge/login/pkg/logx"
	"github.com/playforge/login/pkg/social"
	"github.com/playforge/login/pkg/token"
)

// Deps is the full dependency set of the account service, injected at
// construction. There is no ambient process-wide state.
type Deps struct {
	DB          account.TxRunner
	Credentials account.CredentialStore
	Accounts    account.AccountStore
	Gamespaces  account.GamespaceStore
	Access      account.AccessStore
	Tokens      account.TokenStore
	Signer      *token.Signer
	Registry    *auth.Registry
	Social      social.Bridge
}

// AccountService implements the credential/account linkage protocol
type AccountService struct {
	deps Deps
}

// NewAccountService creates the service
func NewAccountService(deps Deps) *AccountService {
	return &AccountService{deps: deps}
}

// AuthResult is the success response of every authentication entry point
type AuthResult struct {
	Token      string           `json:"token"`
	Account    kernel.AccountID `json:"account"`
	Credential string           `json:"credential"`
	Scopes     []string         `json:"scopes"`
}

func requireArg(args auth.Args, name string) (string, error) {
	value, ok := args[name]
	if !ok || value == "" {
		return "", account.Errors.New(account.CodeMissingArgument).
			WithMessagef("Missing argument: '%s'.", name)
	}
	return value, nil
}

// Validate checks an access token end to end: signature, expiry, and for
// unique tokens the live record in the token store. Implements
// auth.TokenValidator.
func (s *AccountService) Validate(ctx context.Context, value string) (*token.Claims, error) {
	claims, err := s.deps.Signer.Verify(value)
	if err != nil {
		return nil, err
	}
	if claims.Unique() {
		live, err := s.deps.Tokens.IsLive(ctx, claims.ID)
		if err != nil {
			return nil, errx.Wrap(err, "failed to check token store")
		}
		if !live {
			return nil, account.Errors.New(account.CodeAccessTokenInvalid)
		}
	}
	return claims, nil
}

// Authorize authenticates a user: verifies the credential proof, locates or
// creates the account (or raises a conflict), and mints an access token.
func (s *AccountService) Authorize(ctx context.Context, args auth.Args, env auth.Env) (*AuthResult, error) {
	credType, err := requireArg(args, "credential")
	if err != nil {
		return nil, err
	}
	scopesArg, err := requireArg(args, "scopes")
	if err != nil {
		return nil, err
	}
	requestedScopes := kernel.ParseScopes(scopesArg)

	gamespaceID := kernel.GamespaceID(args["gamespace_id"])
	gamespaceName := ""
	if !gamespaceID.IsValid() {
		if gamespaceName, err = requireArg(args, "gamespace"); err != nil {
			return nil, err
		}
	}

	authenticator, ok := s.deps.Registry.Get(credType)
	if !ok {
		return nil, account.Errors.New(account.CodeUnknownCredential).
			WithMessagef("Unknown credential type: %s", credType)
	}

	var attachClaims *token.Claims
	if attachTo := args["attach_to"]; attachTo != "" {
		attachClaims, err = s.Validate(ctx, attachTo)
		if err != nil {
			return nil, account.Errors.New(account.CodeAttachToTokenInvalid)
		}
	}

	var result *AuthResult
	err = s.deps.DB.WithinTx(ctx, func(tx account.Tx) error {
		if !gamespaceID.IsValid() {
			gamespaceID, err = s.deps.Gamespaces.FindGamespace(ctx, tx, gamespaceName)
			if err != nil {
				if errors.Is(err, account.ErrGamespaceNotFound) {
					return account.Errors.New(account.CodeNoSuchGamespace).
						WithMessagef("Gamespace '%s' was not found.", gamespaceName)
				}
				return errx.Wrap(err, "failed to resolve gamespace")
			}
		}

		authResult, err := authenticator.Authorize(ctx, gamespaceID, args, env)
		if err != nil {
			var authErr *auth.Error
			if errors.As(err, &authErr) {
				return errx.New(authErr.Result, 403, "Failed to authorize with such username/password").
					WithDetail("error", authErr.Code)
			}
			return errx.Wrap(err, "authenticator failed")
		}

		credential := authResult.Credential()

		if authResult.ImportSocial && args["import_profile"] != "false" {
			if err := s.importSocial(ctx, gamespaceID, credential, authResult.Response); err != nil {
				return err
			}
		}

		var accountID kernel.AccountID
		if attachClaims != nil {
			accountID, err = s.mergeAccounts(ctx, tx, attachClaims, credential, account.ResolvePending, gamespaceID)
			if err != nil {
				return err
			}
			logx.Debugf("merged into %s", accountID)
		} else {
			accounts, err := s.deps.Credentials.ListAccounts(ctx, tx, credential)
			if err != nil {
				return errx.Wrap(err, "failed to list accounts")
			}

			switch len(accounts) {
			case 0:
				accountID, err = s.deps.Accounts.Create(ctx, tx)
				if err != nil {
					return errx.Wrap(err, "failed to create new account")
				}
				logx.Infof("new account created: '%s'", accountID)
				if err := s.deps.Credentials.Attach(ctx, tx, credential, accountID); err != nil {
					return errx.Wrap(err, "failed to attach credential")
				}
			case 1:
				accountID = accounts[0]
			default:
				return s.multipleAccountsAttached(ctx, gamespaceID, credential, accounts)
			}
		}

		result, err = s.proceedAuthentication(ctx, tx, accountID, credential, gamespaceID, requestedScopes, args, env)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AttachAccount attaches the credential of access_token to the account of
// attach_to.
func (s *AccountService) AttachAccount(ctx context.Context, args auth.Args, env auth.Env) (*AuthResult, error) {
	accessValue, err := requireArg(args, "access_token")
	if err != nil {
		return nil, err
	}
	attachValue, err := requireArg(args, "attach_to")
	if err != nil {
		return nil, err
	}
	scopesArg, err := requireArg(args, "scopes")
	if err != nil {
		return nil, err
	}
	requestedScopes := kernel.ParseScopes(scopesArg)

	accessClaims, err := s.Validate(ctx, accessValue)
	if err != nil {
		return nil, account.Errors.New(account.CodeAccessTokenInvalid)
	}
	attachClaims, err := s.Validate(ctx, attachValue)
	if err != nil {
		return nil, account.Errors.New(account.CodeAttachToTokenInvalid)
	}

	if accessClaims.Gamespace != attachClaims.Gamespace {
		return nil, account.Errors.New(account.CodeWrongGamespace)
	}
	gamespaceID := attachClaims.Gamespace

	credential, err := accessClaims.Credential()
	if err != nil {
		return nil, account.Errors.New(account.CodeAccessTokenInvalid)
	}

	var result *AuthResult
	err = s.deps.DB.WithinTx(ctx, func(tx account.Tx) error {
		accountID, err := s.mergeAccounts(ctx, tx, attachClaims, credential, account.ResolvePending, gamespaceID)
		if err != nil {
			return err
		}
		logx.Debugf("merged into %s", accountID)

		result, err = s.proceedAuthentication(ctx, tx, accountID, credential, gamespaceID, requestedScopes, args, env)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ResolveConflict resolves a pending conflict using the resolve token minted
// when the conflict was raised. Gamespace and credential come from the
// token, not the request body.
func (s *AccountService) ResolveConflict(ctx context.Context, args auth.Args, env auth.Env) (*AuthResult, error) {
	resolveValue, err := requireArg(args, "resolve_token")
	if err != nil {
		return nil, err
	}
	method, err := requireArg(args, "method")
	if err != nil {
		return nil, err
	}
	resolveWith, err := requireArg(args, "resolve_with")
	if err != nil {
		return nil, err
	}
	scopesArg, err := requireArg(args, "scopes")
	if err != nil {
		return nil, err
	}
	requestedScopes := kernel.ParseScopes(scopesArg)

	resolveClaims, err := s.deps.Signer.VerifyResolveToken(resolveValue)
	if err != nil {
		return nil, account.Errors.New(account.CodeAccessTokenInvalid).
			WithMessage("Resolve token is not valid.")
	}
	credential, err := resolveClaims.Credential()
	if err != nil {
		return nil, account.Errors.New(account.CodeAccessTokenInvalid).
			WithMessage("Resolve token is not valid.")
	}
	gamespaceID := resolveClaims.Gamespace

	var attachClaims *token.Claims
	if method == "merge_required" {
		attachValue, err := requireArg(args, "attach_to")
		if err != nil {
			return nil, err
		}
		attachClaims, err = s.Validate(ctx, attachValue)
		if err != nil {
			return nil, account.Errors.New(account.CodeAttachToTokenInvalid)
		}
	}

	var result *AuthResult
	err = s.deps.DB.WithinTx(ctx, func(tx account.Tx) error {
		var accountID kernel.AccountID
		var err error

		switch method {
		case "multiple_accounts_attached":
			accountID, err = s.resolveMultipleAccounts(ctx, tx, credential, kernel.AccountID(resolveWith))
		case "merge_required":
			resolve, ok := account.ParseResolve(resolveWith)
			if !ok {
				return account.Errors.New(account.CodeUnknownMergeOption).
					WithMessagef("Unknown merge option: '%s'.", resolveWith)
			}
			accountID, err = s.mergeAccounts(ctx, tx, attachClaims, credential, resolve, gamespaceID)
		default:
			return account.Errors.New(account.CodeBadResolveMethod).
				WithMessagef("Resolve method unsupported: %s", method)
		}
		if err != nil {
			return err
		}
		logx.Debugf("resolved with: %s", accountID)

		result, err = s.proceedAuthentication(ctx, tx, accountID, credential, gamespaceID, requestedScopes, args, env)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolveMultipleAccounts keeps the selected account and detaches the
// credential from every other account linked to it.
func (s *AccountService) resolveMultipleAccounts(ctx context.Context, tx account.Tx, credential kernel.Credential, keep kernel.AccountID) (kernel.AccountID, error) {
	accounts, err := s.deps.Credentials.ListAccounts(ctx, tx, credential)
	if err != nil {
		return "", errx.Wrap(err, "failed to list accounts")
	}

	found := false
	for _, a := range accounts {
		if a == keep {
			found = true
			break
		}
	}
	if !found {
		return "", account.Errors.New(account.CodeCannotResolveConflict).
			WithMessagef("No such account to select: '%s'.", keep)
	}

	for _, other := range accounts {
		if other == keep {
			continue
		}
		if err := s.deps.Credentials.Detach(ctx, tx, credential, other); err != nil {
			return "", errx.Wrap(err, "failed to detach credential")
		}
	}
	return keep, nil
}

// importSocial forwards the provider auth response to the social service. A
// transport/discovery failure is logged and ignored; a protocol-level error
// fails the authentication.
func (s *AccountService) importSocial(ctx context.Context, gamespace kernel.GamespaceID, credential kernel.Credential, authResponse map[string]interface{}) error {
	err := s.deps.Social.ImportSocial(ctx, gamespace, credential, authResponse)
	if err == nil {
		return nil
	}
	var callErr *social.CallError
	if errors.As(err, &callErr) {
		status := callErr.Code
		if status < 400 || status > 599 {
			status = 500
		}
		return errx.New("failed_to_import_social", status, callErr.Body)
	}
	logx.Warnf("failed to import social connections: %v", err)
	return nil
}

// multipleAccountsAttached raises the 300 conflict carrying a resolve token
// and a summary of the conflicting accounts with their public profiles.
func (s *AccountService) multipleAccountsAttached(ctx context.Context, gamespace kernel.GamespaceID, credential kernel.Credential, accounts []kernel.AccountID) error {
	resolveToken, err := s.deps.Signer.MintResolveToken(credential, gamespace)
	if err != nil {
		return errx.Wrap(err, "failed to mint resolve token")
	}

	profiles, err := s.deps.Social.MassProfiles(ctx, gamespace, accounts)
	if err != nil {
		logx.Warnf("failed to get profiles for multiple_accounts_attached: %v", err)
		profiles = map[kernel.AccountID]social.Profile{}
	}

	summary := make([]map[string]interface{}, 0, len(accounts))
	for _, a := range accounts {
		profile := profiles[a]
		if profile == nil {
			profile = social.Profile{}
		}
		summary = append(summary, map[string]interface{}{
			"account": a,
			"profile": profile,
		})
	}

	return account.ErrMultipleAccountsChoice().
		WithDetail("accounts", summary).
		WithDetail("resolve_token", resolveToken.Value)
}
