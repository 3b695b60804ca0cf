package token

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/playforge/login/pkg/errx"
	"github.com/playforge/login/pkg/kernel"
)

// ScopeResolveConflict is the single scope carried by resolve tokens
const ScopeResolveConflict = "resolve_conflict"

// IssuerLogin marks unique (revocable) tokens. Non-unique tokens carry no
// issuer: there is no store record to check them against.
const IssuerLogin = "login"

var ErrRegistry = errx.NewRegistry()

var (
	CodeTokenGenerationFailed = ErrRegistry.Register("internal_error", http.StatusInternalServerError, "Token generation failed")
	CodeTokenInvalid          = ErrRegistry.Register("access_token_invalid", http.StatusForbidden, "Access token is not valid")
)

// Claims is the payload of every token this service mints
type Claims struct {
	Account   kernel.AccountID   `json:"acc,omitempty"`
	Gamespace kernel.GamespaceID `json:"gsp"`
	Scopes    []string           `json:"scp"`
	jwt.RegisteredClaims
}

// Credential returns the credential the token was issued against
func (c *Claims) Credential() (kernel.Credential, error) {
	return kernel.ParseCredential(c.Subject)
}

// Unique reports whether the token is registered in the token store
func (c *Claims) Unique() bool {
	return c.Issuer == IssuerLogin
}

// HasScope reports whether the token carries the given scope
func (c *Claims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Signed is a minted token together with the metadata the token store records
type Signed struct {
	Value   string
	UUID    string
	Expires time.Time
	Scopes  []string
}

// Signer mints and verifies access tokens
type Signer struct {
	secret     []byte
	accessTTL  time.Duration
	resolveTTL time.Duration
}

// NewSigner creates a signer. TTLs fall back to sane defaults when zero.
func NewSigner(secret string, accessTTL, resolveTTL time.Duration) *Signer {
	if accessTTL == 0 {
		accessTTL = 24 * time.Hour
	}
	if resolveTTL == 0 {
		resolveTTL = 15 * time.Minute
	}
	return &Signer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		resolveTTL: resolveTTL,
	}
}

// Sign mints an access token bound to an account and gamespace. Unique tokens
// carry the login issuer tag and are meant to be recorded in the token store.
func (s *Signer) Sign(credential kernel.Credential, account kernel.AccountID, gamespace kernel.GamespaceID, scopes []string, unique bool) (Signed, error) {
	now := time.Now()
	expires := now.Add(s.accessTTL)
	id := uuid.New().String()

	if scopes == nil {
		scopes = []string{}
	}

	claims := Claims{
		Account:   account,
		Gamespace: gamespace,
		Scopes:    scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   credential.String(),
			ID:        id,
			ExpiresAt: jwt.NewNumericDate(expires),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	if unique {
		claims.Issuer = IssuerLogin
	}

	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Signed{}, ErrRegistry.NewWithCause(CodeTokenGenerationFailed, err)
	}

	return Signed{Value: value, UUID: id, Expires: expires, Scopes: scopes}, nil
}

// MintResolveToken mints the short-lived bearer handed out when authorization
// hits a credential conflict. It carries no account: the only thing it can do
// is call resolve_conflict for its credential and gamespace.
func (s *Signer) MintResolveToken(credential kernel.Credential, gamespace kernel.GamespaceID) (Signed, error) {
	now := time.Now()
	expires := now.Add(s.resolveTTL)
	id := uuid.New().String()

	claims := Claims{
		Gamespace: gamespace,
		Scopes:    []string{ScopeResolveConflict},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   credential.String(),
			ID:        id,
			ExpiresAt: jwt.NewNumericDate(expires),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Signed{}, ErrRegistry.NewWithCause(CodeTokenGenerationFailed, err)
	}

	return Signed{Value: value, UUID: id, Expires: expires, Scopes: claims.Scopes}, nil
}

// Verify checks signature and expiry and returns the claims
func (s *Signer) Verify(value string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(value, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrRegistry.NewWithCause(CodeTokenInvalid, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrRegistry.New(CodeTokenInvalid)
	}
	return claims, nil
}

// VerifyResolveToken verifies a resolve token: valid signature, not expired,
// and carrying the resolve_conflict scope.
func (s *Signer) VerifyResolveToken(value string) (*Claims, error) {
	claims, err := s.Verify(value)
	if err != nil {
		return nil, err
	}
	if !claims.HasScope(ScopeResolveConflict) {
		return nil, ErrRegistry.New(CodeTokenInvalid).WithMessage("Not a resolve token")
	}
	return claims, nil
}
