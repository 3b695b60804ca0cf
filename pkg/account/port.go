package account

import (
	"context"
	"time"

	"github.com/playforge/login/pkg/kernel"
)

// Tx is the ambient transactional handle every store call of one
// authentication runs on. Implementations assert it to their concrete
// transaction type.
type Tx interface{}

// TxRunner acquires one transaction, runs fn on it, and commits when fn
// returns nil. Any error (or panic) rolls back every credential relink made
// inside.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// CredentialStore persists credential⇄account links. The mapping is
// many-to-one per credential normally, but the store physically allows
// many-to-many so the service can detect conflict and drive resolution.
type CredentialStore interface {
	// Attach inserts a link; attaching an existing link is a no-op
	Attach(ctx context.Context, tx Tx, credential kernel.Credential, account kernel.AccountID) error

	// Detach removes a link; removing an absent link is a no-op
	Detach(ctx context.Context, tx Tx, credential kernel.Credential, account kernel.AccountID) error

	// ListAccounts returns all accounts linked to the credential. Inside a
	// transaction the rows are locked so concurrent authorizations of the
	// same credential serialize.
	ListAccounts(ctx context.Context, tx Tx, credential kernel.Credential) ([]kernel.AccountID, error)

	// ListAccountCredentials returns the credentials of an account,
	// restricted to the given types when typeFilter is non-empty.
	ListAccountCredentials(ctx context.Context, tx Tx, account kernel.AccountID, typeFilter []string) ([]kernel.Credential, error)

	// GetAccount returns the single account of a credential, or
	// ErrCredentialNotFound.
	GetAccount(ctx context.Context, tx Tx, credential kernel.Credential) (kernel.AccountID, error)
}

// AccountStore persists account rows and their opaque info blob
type AccountStore interface {
	// Create inserts a row with empty info and returns the new id
	Create(ctx context.Context, tx Tx) (kernel.AccountID, error)

	// Exists reports whether the account row exists
	Exists(ctx context.Context, tx Tx, account kernel.AccountID) (bool, error)

	// GetInfo returns the info blob, or nil when the row is absent
	GetInfo(ctx context.Context, tx Tx, account kernel.AccountID) (map[string]interface{}, error)

	// UpdateInfo deep-merges patch into the stored info
	UpdateInfo(ctx context.Context, tx Tx, account kernel.AccountID, patch map[string]interface{}) error

	// Delete removes the row; the caller must have detached credentials
	Delete(ctx context.Context, tx Tx, account kernel.AccountID) error

	// DeleteBatch cascades over the listed accounts: removes their
	// credential links, then the rows.
	DeleteBatch(ctx context.Context, tx Tx, accounts []kernel.AccountID) error
}

// GamespaceStore resolves gamespace names and their allowed scopes
type GamespaceStore interface {
	// FindGamespace resolves a gamespace name to its id, or
	// ErrGamespaceNotFound.
	FindGamespace(ctx context.Context, tx Tx, name string) (kernel.GamespaceID, error)

	// GamespaceScopes returns the per-gamespace allowed scope set, or
	// ErrGamespaceNotFound.
	GamespaceScopes(ctx context.Context, tx Tx, gamespace kernel.GamespaceID) (kernel.ScopeSet, error)
}

// AccessStore resolves per-account granted scopes
type AccessStore interface {
	// AccountScopes returns the scopes granted to the account in the
	// gamespace, or ErrNoScopesFound.
	AccountScopes(ctx context.Context, tx Tx, gamespace kernel.GamespaceID, account kernel.AccountID) (kernel.ScopeSet, error)
}

// TokenStore records active unique tokens so they can be checked and
// revoked. It is a key/value service, not part of the SQL transaction.
type TokenStore interface {
	// Save records a token for (account, name), invalidating the previous
	// token of the same pair.
	Save(ctx context.Context, account kernel.AccountID, name, uuid string, expires time.Time) error

	// IsLive reports whether the token uuid is still recorded
	IsLive(ctx context.Context, uuid string) (bool, error)

	// InvalidateAccount revokes all unique tokens of the account across
	// every system-name.
	InvalidateAccount(ctx context.Context, account kernel.AccountID) error
}
