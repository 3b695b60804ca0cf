// Package account is the identity core of the login service.
//
// A user may hold multiple unique credentials (google, steam, anonymous) that
// all map to one account:
//
//	google:123456        -> account:1
//	steam:123456         -> account:1
//	anonymous:xxx-xx-xxx -> account:1
//
// Whenever a user authorizes, credentials can be attached and detached. Two
// arrangements are conflicts the user has to resolve during authorization:
//
//	google:123456 -> account:1      google:123456 -> account:1
//	google:678910 -> account:1      google:123456 -> account:2
//
// (two credentials of the same type on one account, and one credential on
// two accounts). The service drives both resolutions through short-lived
// resolve tokens.
package account

import (
	"errors"
	"net/http"

	"github.com/playforge/login/pkg/errx"
)

// ScopeNonUnique is required to mint non-unique (irrevocable) tokens
const ScopeNonUnique = "auth_non_unique"

// DefaultTokenName is the system-name bucket used when no "as" argument is
// given.
const DefaultTokenName = "def"

// Store-level sentinel errors
var (
	ErrCredentialNotFound = errors.New("account: credential not found")
	ErrGamespaceNotFound  = errors.New("account: gamespace not found")
	ErrNoScopesFound      = errors.New("account: no scopes found")
)

// Resolve is the user's choice for a merge_required conflict
type Resolve int

const (
	// ResolvePending means no choice was made yet: a conflict raises
	// merge_required instead of merging.
	ResolvePending Resolve = iota
	// ResolveLocal keeps the attach-to account; the conflicting credential
	// and all local-type credentials move onto it.
	ResolveLocal
	// ResolveRemote keeps the credential's own account; the attach-to
	// token's credential moves onto it.
	ResolveRemote
	// ResolveNotMine disowns the credential's own account and moves the
	// credential onto the attach-to account.
	ResolveNotMine
)

// ParseResolve parses the wire value of resolve_with
func ParseResolve(s string) (Resolve, bool) {
	switch s {
	case "local":
		return ResolveLocal, true
	case "remote":
		return ResolveRemote, true
	case "not_mine":
		return ResolveNotMine, true
	default:
		return ResolvePending, false
	}
}

// Errors is the wire-level error registry of the login protocol. Codes are
// the exact result_id strings clients dispatch on.
var Errors = errx.NewRegistry()

var (
	CodeMissingArgument           = Errors.Register("missing_argument", http.StatusBadRequest, "Some argument is missing.")
	CodeUnknownCredential         = Errors.Register("unknown_credential", http.StatusBadRequest, "Unknown credential type.")
	CodeNoSuchGamespace           = Errors.Register("no_such_gamespace", http.StatusNotFound, "Gamespace was not found.")
	CodeWrongGamespace            = Errors.Register("wrong_gamespace", http.StatusBadRequest, "These tokens are from different gamespaces.")
	CodeAccessTokenInvalid        = Errors.Register("access_token_invalid", http.StatusForbidden, "Access token is not valid.")
	CodeAttachToTokenInvalid      = Errors.Register("attach_to_token_invalid", http.StatusForbidden, "Token attach to is not valid.")
	CodeBadAuthAs                 = Errors.Register("bad_auth_as", http.StatusBadRequest, "Bad auth as name format.")
	CodeBadAccountInfo            = Errors.Register("bad_account_info", http.StatusBadRequest, "The field 'info' should be a JSON dictionary.")
	CodeScopeRestricted           = Errors.Register("scope_restricted", http.StatusForbidden, "User has no scope asked.")
	CodeNonUniqueTokenRestricted  = Errors.Register("non_unique_token_restricted", http.StatusForbidden, "Scope 'auth_non_unique' is required to disable unique tokens.")
	CodeMergeRequired             = Errors.Register("merge_required", http.StatusConflict, "Two different accounts conflict; user input required.")
	CodeUnknownMergeOption        = Errors.Register("unknown_merge_option", http.StatusBadRequest, "Unknown merge option.")
	CodeCannotResolveConflict     = Errors.Register("cannot_resolve_conflict", http.StatusBadRequest, "No such account to select.")
	CodeBadResolveMethod          = Errors.Register("bad_resolve_method", http.StatusBadRequest, "Resolve method unsupported.")
	CodeInternalError             = Errors.Register("internal_error", http.StatusInternalServerError, "Internal error.")
	CodeMultipleAccountsAttached  = Errors.Register("multiple_accounts_attached", http.StatusConflict, "Credential has multiple accounts attached.")
)

// ErrMultipleAccountsChoice is the authorize-time flavor of
// multiple_accounts_attached: a 300 carrying the candidate accounts and a
// resolve token. It is a successful protocol outcome, not a failure.
func ErrMultipleAccountsChoice() *errx.Error {
	return errx.New("multiple_accounts_attached", http.StatusMultipleChoices,
		"Conflict: More than one account attached to this credential.")
}
