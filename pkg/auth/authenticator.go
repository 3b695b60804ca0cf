// Package auth holds the credential authenticators: the pluggable verifiers
// that turn type-specific proof (a key, an OAuth code, a platform ticket)
// into a verified (credential type, username) pair.
package auth

import (
	"context"
	"fmt"

	"github.com/playforge/login/pkg/kernel"
)

// Args are the string-valued request arguments, including the
// authenticator-specific ones ("key", "code", "ticket", ...).
type Args map[string]string

// Env carries request environment passed through to authenticators and the
// social bridge (client ip, user agent, ...).
type Env map[string]string

// Result is a successful verification: the credential parts plus the raw
// provider response forwarded to the social service on import.
type Result struct {
	CredentialType string
	Username       string

	// Response is the provider payload (tokens, expiry). Nil for local types.
	Response map[string]interface{}

	// ImportSocial marks responses worth importing into the social service
	ImportSocial bool
}

// Credential composes the verified credential
func (r *Result) Credential() kernel.Credential {
	return kernel.NewCredential(r.CredentialType, r.Username)
}

// Error is a typed authenticator failure. Result becomes the wire result_id
// when the transport remaps it; Code is the provider's own status, if any.
type Error struct {
	Result string
	Code   int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("authenticator: %s (%d)", e.Result, e.Code)
	}
	return "authenticator: " + e.Result
}

// NewError creates an authenticator error
func NewError(result string, code int) *Error {
	return &Error{Result: result, Code: code}
}

// Authenticator verifies one credential type
type Authenticator interface {
	// Type returns the credential type this authenticator handles
	Type() string

	// SocialProfile reports whether a verified login implies a social
	// graph/profile to import
	SocialProfile() bool

	// Authorize verifies the proof in args and returns the verified result
	Authorize(ctx context.Context, gamespace kernel.GamespaceID, args Args, env Env) (*Result, error)
}

// Registry maps credential type to authenticator. It is populated once at
// startup and read-only afterwards, so concurrent reads need no locking.
type Registry struct {
	byType map[string]Authenticator
}

// NewRegistry creates a registry with the given authenticators
func NewRegistry(authenticators ...Authenticator) *Registry {
	r := &Registry{byType: make(map[string]Authenticator, len(authenticators))}
	for _, a := range authenticators {
		r.byType[a.Type()] = a
	}
	return r
}

// Get looks up the authenticator for a credential type
func (r *Registry) Get(credType string) (Authenticator, bool) {
	a, ok := r.byType[credType]
	return a, ok
}

// Types returns the registered credential types
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.byType))
	for t := range r.byType {
		out = append(out, t)
	}
	return out
}
