package kernel

import (
	"fmt"
	"regexp"
	"strings"
)

// Credential is an externally verifiable identifier of the form
// "{type}:{username}". The username is opaque and may itself contain colons;
// only the first colon separates the two parts.
type Credential struct {
	Type     string
	Username string
}

var credTypeRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// LocalCredentialTypes returns the auto-creatable credential types whose
// links move along during merges.
func LocalCredentialTypes() []string {
	return []string{"anonymous", "dev"}
}

// NewCredential builds a credential from its parts
func NewCredential(credType, username string) Credential {
	return Credential{Type: credType, Username: username}
}

// ParseCredential parses the textual "{type}:{username}" form
func ParseCredential(s string) (Credential, error) {
	idx := strings.Index(s, ":")
	if idx <= 0 || idx == len(s)-1 {
		return Credential{}, fmt.Errorf("malformed credential %q", s)
	}
	c := Credential{Type: s[:idx], Username: s[idx+1:]}
	if !credTypeRe.MatchString(c.Type) {
		return Credential{}, fmt.Errorf("malformed credential type %q", c.Type)
	}
	return c, nil
}

// String returns the textual form used at storage and protocol boundaries
func (c Credential) String() string {
	return c.Type + ":" + c.Username
}

// IsZero reports whether the credential is empty
func (c Credential) IsZero() bool {
	return c.Type == "" && c.Username == ""
}
