package errx_test

import (
	"errors"
	"testing"

	"github.com/playforge/login/pkg/errx"
)

func TestRegistryCodesAreVerbatim(t *testing.T) {
	registry := errx.NewRegistry()
	code := registry.Register("merge_required", 409, "Conflict.")

	err := registry.New(code)
	if err.Code != "merge_required" {
		t.Fatalf("code %q, want it verbatim", err.Code)
	}
	if err.HTTPStatus != 409 {
		t.Fatalf("status %d, want 409", err.HTTPStatus)
	}
	if _, ok := registry.Get("merge_required"); !ok {
		t.Fatal("registered code should be retrievable")
	}
}

func TestWrapPreservesRegisteredErrors(t *testing.T) {
	registry := errx.NewRegistry()
	code := registry.Register("no_such_gamespace", 404, "Not found.")
	original := registry.New(code)

	wrapped := errx.Wrap(original, "layer crossing")
	if wrapped.Code != "no_such_gamespace" || wrapped.HTTPStatus != 404 {
		t.Fatalf("wrap mangled the error: %+v", wrapped)
	}

	plain := errx.Wrap(errors.New("boom"), "db failed")
	if plain.Code != "internal_error" || plain.HTTPStatus != 500 {
		t.Fatalf("plain errors should become internal_error: %+v", plain)
	}
	if !errors.Is(plain, plain.Err) {
		t.Fatal("cause should be reachable through Unwrap")
	}
}

func TestEnvelopeFlattensDetails(t *testing.T) {
	err := errx.New("multiple_accounts_attached", 300, "Pick one.").
		WithDetail("resolve_token", "abc").
		WithDetail("accounts", []string{"1", "2"})

	envelope := err.Envelope()
	if envelope["result_id"] != "multiple_accounts_attached" {
		t.Fatalf("result_id missing: %v", envelope)
	}
	if envelope["info"] != "Pick one." {
		t.Fatalf("info missing: %v", envelope)
	}
	if envelope["resolve_token"] != "abc" {
		t.Fatalf("details should be flattened to the top level: %v", envelope)
	}
}
