package kernel

import "strconv"

// AccountID is the stable internal identifier of a user account. It is the
// decimal string form of a positive integer assigned by the database.
type AccountID string

// String returns the string representation
func (id AccountID) String() string {
	return string(id)
}

// IsValid reports whether the id is a positive integer string
func (id AccountID) IsValid() bool {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil && n > 0
}

// GamespaceID identifies a tenant (a game) with its own scope grants
type GamespaceID string

// String returns the string representation
func (id GamespaceID) String() string {
	return string(id)
}

// IsValid reports whether the id is non-empty
func (id GamespaceID) IsValid() bool {
	return id != ""
}
