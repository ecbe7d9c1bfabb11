// Package normalize provides canonical forms for user-entered identity
// fields, applied before any store write or lookup.
package normalize

import "strings"

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace; case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// AuthMethod trims and lowercases an auth method identifier.
func AuthMethod(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
