package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/playforge/login/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

func TestAnonymousAuthenticator(t *testing.T) {
	a := auth.NewAnonymousAuthenticator()

	result, err := a.Authorize(context.Background(), "100", auth.Args{
		"username": "0adf23a6-4b75-4a37-9a82-0a1f902c11e5",
		"key":      "whatever",
	}, nil)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if result.CredentialType != "anonymous" {
		t.Fatalf("credential type %s", result.CredentialType)
	}
	if result.ImportSocial {
		t.Fatal("anonymous logins have nothing to import")
	}

	_, err = a.Authorize(context.Background(), "100", auth.Args{
		"username": "not-a-uuid",
		"key":      "whatever",
	}, nil)
	wantAuthError(t, err, "bad_username")

	_, err = a.Authorize(context.Background(), "100", auth.Args{
		"username": "0adf23a6-4b75-4a37-9a82-0a1f902c11e5",
	}, nil)
	wantAuthError(t, err, "missing_argument")
}

func TestDevAuthenticator(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	a := auth.NewDevAuthenticator(map[string]string{"root": string(hash)})

	result, err := a.Authorize(context.Background(), "100", auth.Args{
		"username": "root",
		"key":      "hunter2",
	}, nil)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if result.Username != "root" || result.CredentialType != "dev" {
		t.Fatalf("unexpected result: %+v", result)
	}

	_, err = a.Authorize(context.Background(), "100", auth.Args{
		"username": "root",
		"key":      "wrong",
	}, nil)
	wantAuthError(t, err, "wrong_credentials")

	_, err = a.Authorize(context.Background(), "100", auth.Args{
		"username": "nobody",
		"key":      "hunter2",
	}, nil)
	wantAuthError(t, err, "wrong_credentials")
}

func TestRegistryLookup(t *testing.T) {
	registry := auth.NewRegistry(
		auth.NewAnonymousAuthenticator(),
		auth.NewDevAuthenticator(nil),
	)

	if _, ok := registry.Get("anonymous"); !ok {
		t.Fatal("anonymous should be registered")
	}
	if _, ok := registry.Get("google"); ok {
		t.Fatal("google should not be registered")
	}
	if got := len(registry.Types()); got != 2 {
		t.Fatalf("expected 2 types, got %d", got)
	}
}

func wantAuthError(t *testing.T, err error, result string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %q, got nil", result)
	}
	var authErr *auth.Error
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *auth.Error, got %T", err)
	}
	if authErr.Result != result {
		t.Fatalf("result %q, want %q", authErr.Result, result)
	}
}
