// Package social is the out-of-process bridge to the social and profile
// services. Every call here is a side effect of authentication, never the
// authority on it: callers decide which failures are fatal.
package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/playforge/login/pkg/auth"
	"github.com/playforge/login/pkg/kernel"
)

// Profile is the public profile payload of one account
type Profile map[string]interface{}

// ErrUnavailable marks a discovery/transport failure: the remote service
// could not be reached at all.
var ErrUnavailable = errors.New("social: service unavailable")

// CallError is a protocol-level failure: the remote service answered with an
// error status.
type CallError struct {
	Code int
	Body string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("social: remote call failed: %d %s", e.Code, e.Body)
}

// Bridge is the RPC surface the login service consumes
type Bridge interface {
	// ImportSocial imports the social connections (friends) discovered in the
	// provider auth response. Credential-level, not account-level.
	ImportSocial(ctx context.Context, gamespace kernel.GamespaceID, credential kernel.Credential, authResponse map[string]interface{}) error

	// AttachAccount binds the social credential to the account on the social
	// service and optionally fetches profile data for it.
	AttachAccount(ctx context.Context, gamespace kernel.GamespaceID, credential kernel.Credential, account kernel.AccountID, env auth.Env, fetchProfile bool) (Profile, error)

	// UpdateProfile pushes provider profile fields (avatar, nickname) to the
	// profile service.
	UpdateProfile(ctx context.Context, gamespace kernel.GamespaceID, account kernel.AccountID, fields Profile) error

	// MassProfiles fetches the public profiles of several accounts at once
	MassProfiles(ctx context.Context, gamespace kernel.GamespaceID, accounts []kernel.AccountID) (map[kernel.AccountID]Profile, error)
}
