package kernel_test

import (
	"testing"

	"github.com/playforge/login/pkg/kernel"
)

func TestParseCredential(t *testing.T) {
	cases := []struct {
		in       string
		typ      string
		username string
		ok       bool
	}{
		{"anonymous:6a1b2c3d", "anonymous", "6a1b2c3d", true},
		{"google:123:456", "google", "123:456", true},
		{"dev:root", "dev", "root", true},
		{"noseparator", "", "", false},
		{":username", "", "", false},
		{"type:", "", "", false},
		{"UPPER:name", "", "", false},
		{"bad type:name", "", "", false},
	}

	for _, c := range cases {
		got, err := kernel.ParseCredential(c.in)
		if c.ok {
			if err != nil {
				t.Errorf("ParseCredential(%q) failed: %v", c.in, err)
				continue
			}
			if got.Type != c.typ || got.Username != c.username {
				t.Errorf("ParseCredential(%q) = %v, want %s:%s", c.in, got, c.typ, c.username)
			}
			if got.String() != c.in {
				t.Errorf("round trip of %q gave %q", c.in, got.String())
			}
		} else if err == nil {
			t.Errorf("ParseCredential(%q) should have failed", c.in)
		}
	}
}

func TestScopeSetOperations(t *testing.T) {
	parsed := kernel.ParseScopes("profile, play,,profile")
	if len(parsed) != 2 {
		t.Fatalf("ParseScopes dedup failed: %v", parsed)
	}

	a := kernel.NewScopeSet("profile", "play")
	b := kernel.NewScopeSet("play", "admin")

	union := a.Union(b)
	if len(union) != 3 {
		t.Fatalf("union = %v", union)
	}
	intersect := a.Intersect(b)
	if len(intersect) != 1 || !intersect.Contains("play") {
		t.Fatalf("intersect = %v", intersect)
	}

	if got := b.String(); got != "admin,play" {
		t.Fatalf("String should be sorted, got %q", got)
	}
}

func TestValidateTokenName(t *testing.T) {
	for _, valid := range []string{"def", "launcher", "_x", "Game2"} {
		if !kernel.ValidateTokenName(valid) {
			t.Errorf("%q should be a valid token name", valid)
		}
	}
	for _, invalid := range []string{"", "2fast", "with space", "dash-ed"} {
		if kernel.ValidateTokenName(invalid) {
			t.Errorf("%q should not be a valid token name", invalid)
		}
	}
}
