package account_test

import (
	"testing"

	"github.com/playforge/login/pkg/account"
)

func TestMergeInfo(t *testing.T) {
	dst := map[string]interface{}{
		"name": "alice",
		"settings": map[string]interface{}{
			"volume": 1.0,
			"voice":  true,
		},
	}
	patch := map[string]interface{}{
		"settings": map[string]interface{}{
			"volume": 0.5,
			"locale": "en",
		},
		"level": 3.0,
	}

	got := account.MergeInfo(dst, patch)

	if got["name"] != "alice" || got["level"] != 3.0 {
		t.Fatalf("top level wrong: %v", got)
	}
	settings := got["settings"].(map[string]interface{})
	if settings["volume"] != 0.5 {
		t.Fatalf("patch should overwrite scalars: %v", settings)
	}
	if settings["voice"] != true || settings["locale"] != "en" {
		t.Fatalf("nested merge lost fields: %v", settings)
	}
}

func TestMergeInfoReplacesMismatchedTypes(t *testing.T) {
	dst := map[string]interface{}{"value": map[string]interface{}{"a": 1.0}}
	patch := map[string]interface{}{"value": "plain"}

	got := account.MergeInfo(dst, patch)
	if got["value"] != "plain" {
		t.Fatalf("non-object patch should replace: %v", got)
	}
}

func TestMergeInfoNilDestination(t *testing.T) {
	got := account.MergeInfo(nil, map[string]interface{}{"a": 1.0})
	if got == nil || got["a"] != 1.0 {
		t.Fatalf("nil dst should be created: %v", got)
	}
}

func TestParseResolve(t *testing.T) {
	cases := map[string]account.Resolve{
		"local":    account.ResolveLocal,
		"remote":   account.ResolveRemote,
		"not_mine": account.ResolveNotMine,
	}
	for in, want := range cases {
		got, ok := account.ParseResolve(in)
		if !ok || got != want {
			t.Errorf("ParseResolve(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := account.ParseResolve("sideways"); ok {
		t.Error("unknown option should not parse")
	}
}
