package token_test

import (
	"testing"
	"time"

	"github.com/playforge/login/pkg/kernel"
	"github.com/playforge/login/pkg/token"
)

func TestSignAndVerify(t *testing.T) {
	signer := token.NewSigner("secret", time.Hour, time.Minute)
	credential := kernel.NewCredential("anonymous", "alice")

	signed, err := signer.Sign(credential, "42", "100", []string{"profile"}, true)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if signed.UUID == "" {
		t.Fatal("expected a token uuid")
	}

	claims, err := signer.Verify(signed.Value)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Account != "42" || claims.Gamespace != "100" {
		t.Fatalf("claims lost: %+v", claims)
	}
	if claims.ID != signed.UUID {
		t.Fatalf("jti %s, want %s", claims.ID, signed.UUID)
	}
	if !claims.Unique() {
		t.Fatal("token should be marked unique")
	}
	got, err := claims.Credential()
	if err != nil || got != credential {
		t.Fatalf("credential %v (%v), want %v", got, err, credential)
	}
}

func TestNonUniqueTokenHasNoIssuer(t *testing.T) {
	signer := token.NewSigner("secret", time.Hour, time.Minute)
	signed, err := signer.Sign(kernel.NewCredential("dev", "root"), "42", "100", nil, false)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	claims, err := signer.Verify(signed.Value)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Unique() {
		t.Fatal("non-unique token should carry no issuer")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer := token.NewSigner("secret", time.Hour, time.Minute)
	other := token.NewSigner("different", time.Hour, time.Minute)

	signed, err := signer.Sign(kernel.NewCredential("anonymous", "alice"), "42", "100", nil, true)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if _, err := other.Verify(signed.Value); err == nil {
		t.Fatal("expected a signature failure")
	}
	if _, err := signer.Verify(signed.Value + "x"); err == nil {
		t.Fatal("expected a tampered token to fail")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	signer := token.NewSigner("secret", -time.Minute, time.Minute)
	signed, err := signer.Sign(kernel.NewCredential("anonymous", "alice"), "42", "100", nil, true)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if _, err := signer.Verify(signed.Value); err == nil {
		t.Fatal("expected an expired token to fail")
	}
}

func TestResolveToken(t *testing.T) {
	signer := token.NewSigner("secret", time.Hour, time.Minute)
	credential := kernel.NewCredential("google", "bob")

	signed, err := signer.MintResolveToken(credential, "100")
	if err != nil {
		t.Fatalf("MintResolveToken failed: %v", err)
	}

	claims, err := signer.VerifyResolveToken(signed.Value)
	if err != nil {
		t.Fatalf("VerifyResolveToken failed: %v", err)
	}
	if claims.Account != "" {
		t.Fatal("resolve tokens must not carry an account")
	}
	if claims.Gamespace != "100" {
		t.Fatalf("gamespace %s, want 100", claims.Gamespace)
	}
	got, err := claims.Credential()
	if err != nil || got != credential {
		t.Fatalf("credential %v (%v), want %v", got, err, credential)
	}

	// An ordinary access token is not accepted as a resolve token.
	access, err := signer.Sign(credential, "42", "100", []string{"profile"}, true)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if _, err := signer.VerifyResolveToken(access.Value); err == nil {
		t.Fatal("expected an access token to be rejected as resolve token")
	}
}
