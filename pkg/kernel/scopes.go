package kernel

import (
	"regexp"
	"sort"
	"strings"
)

// ScopeSet is a set of capability scope labels
type ScopeSet map[string]struct{}

// ParseScopes parses a comma-separated scope list into a set. Blank entries
// are dropped.
func ParseScopes(s string) ScopeSet {
	set := make(ScopeSet)
	for _, scope := range strings.Split(s, ",") {
		scope = strings.TrimSpace(scope)
		if scope != "" {
			set[scope] = struct{}{}
		}
	}
	return set
}

// NewScopeSet builds a set from individual scopes
func NewScopeSet(scopes ...string) ScopeSet {
	set := make(ScopeSet, len(scopes))
	for _, scope := range scopes {
		if scope != "" {
			set[scope] = struct{}{}
		}
	}
	return set
}

// Contains reports whether the scope is in the set
func (s ScopeSet) Contains(scope string) bool {
	_, ok := s[scope]
	return ok
}

// Union merges other into a new set
func (s ScopeSet) Union(other ScopeSet) ScopeSet {
	out := make(ScopeSet, len(s)+len(other))
	for scope := range s {
		out[scope] = struct{}{}
	}
	for scope := range other {
		out[scope] = struct{}{}
	}
	return out
}

// Intersect returns the scopes present in both sets
func (s ScopeSet) Intersect(other ScopeSet) ScopeSet {
	out := make(ScopeSet)
	for scope := range s {
		if other.Contains(scope) {
			out[scope] = struct{}{}
		}
	}
	return out
}

// Slice returns the scopes as a sorted slice
func (s ScopeSet) Slice() []string {
	out := make([]string, 0, len(s))
	for scope := range s {
		out = append(out, scope)
	}
	sort.Strings(out)
	return out
}

// String returns the comma-separated form
func (s ScopeSet) String() string {
	return strings.Join(s.Slice(), ",")
}

var tokenNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateTokenName reports whether a system-name (the "as" argument) is a
// plain identifier.
func ValidateTokenName(name string) bool {
	return tokenNameRe.MatchString(name)
}
