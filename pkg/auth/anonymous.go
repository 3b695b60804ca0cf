package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/playforge/login/pkg/kernel"
)

// AnonymousAuthenticator handles the "anonymous" credential type: a
// client-generated UUID username plus an opaque key. Accounts for it are
// auto-created on first login, and the credential is movable during merges.
type AnonymousAuthenticator struct{}

// NewAnonymousAuthenticator creates the anonymous authenticator
func NewAnonymousAuthenticator() *AnonymousAuthenticator {
	return &AnonymousAuthenticator{}
}

// Type returns "anonymous"
func (a *AnonymousAuthenticator) Type() string { return "anonymous" }

// SocialProfile returns false: nothing to import
func (a *AnonymousAuthenticator) SocialProfile() bool { return false }

// Authorize accepts any UUID username accompanied by a non-empty key
func (a *AnonymousAuthenticator) Authorize(ctx context.Context, gamespace kernel.GamespaceID, args Args, env Env) (*Result, error) {
	username := args["username"]
	key := args["key"]
	if username == "" || key == "" {
		return nil, NewError("missing_argument", 0)
	}
	if _, err := uuid.Parse(username); err != nil {
		return nil, NewError("bad_username", 0)
	}
	return &Result{
		CredentialType: a.Type(),
		Username:       username,
	}, nil
}
