package auth

import (
	"context"

	"github.com/playforge/login/pkg/kernel"
	"github.com/playforge/login/pkg/token"
)

// TokenValidator validates an existing access token: signature, expiry, and
// for unique tokens the live record in the token store.
type TokenValidator interface {
	Validate(ctx context.Context, value string) (*token.Claims, error)
}

// TokenAuthenticator handles the "token" credential type: re-authentication
// with a still-valid access token, used to extend sessions without the
// original proof. The resulting credential is the one the token was issued
// against, so the login lands on the same account.
type TokenAuthenticator struct {
	validator TokenValidator
}

// NewTokenAuthenticator creates a token authenticator
func NewTokenAuthenticator(validator TokenValidator) *TokenAuthenticator {
	return &TokenAuthenticator{validator: validator}
}

// Type returns "token"
func (a *TokenAuthenticator) Type() string { return "token" }

// SocialProfile returns false
func (a *TokenAuthenticator) SocialProfile() bool { return false }

// Authorize validates the presented token and echoes its credential
func (a *TokenAuthenticator) Authorize(ctx context.Context, gamespace kernel.GamespaceID, args Args, env Env) (*Result, error) {
	value := args["access_token"]
	if value == "" {
		return nil, NewError("missing_argument", 0)
	}

	claims, err := a.validator.Validate(ctx, value)
	if err != nil {
		return nil, NewError("forbidden", 0)
	}
	if claims.Gamespace != gamespace {
		return nil, NewError("forbidden", 0)
	}

	credential, err := claims.Credential()
	if err != nil {
		return nil, NewError("forbidden", 0)
	}

	return &Result{
		CredentialType: credential.Type,
		Username:       credential.Username,
	}, nil
}
