package auth

import (
	"context"

	"github.com/playforge/login/pkg/kernel"
	"golang.org/x/crypto/bcrypt"
)

// DevAuthenticator handles the "dev" credential type: named developer
// accounts whose keys are verified against configured bcrypt hashes. Like
// anonymous, dev is a local type and movable during merges.
type DevAuthenticator struct {
	keys map[string]string
}

// NewDevAuthenticator creates a dev authenticator from username -> bcrypt
// hash pairs.
func NewDevAuthenticator(keys map[string]string) *DevAuthenticator {
	return &DevAuthenticator{keys: keys}
}

// Type returns "dev"
func (a *DevAuthenticator) Type() string { return "dev" }

// SocialProfile returns false
func (a *DevAuthenticator) SocialProfile() bool { return false }

// Authorize verifies the key against the configured hash for the username
func (a *DevAuthenticator) Authorize(ctx context.Context, gamespace kernel.GamespaceID, args Args, env Env) (*Result, error) {
	username := args["username"]
	key := args["key"]
	if username == "" || key == "" {
		return nil, NewError("missing_argument", 0)
	}

	hash, ok := a.keys[username]
	if !ok {
		return nil, NewError("wrong_credentials", 0)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
		return nil, NewError("wrong_credentials", 0)
	}

	return &Result{
		CredentialType: a.Type(),
		Username:       username,
	}, nil
}
