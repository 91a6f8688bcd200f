package auth

import "crypto/subtle"

// AdminKeyHeader carries the shared admin secret.
const AdminKeyHeader = "x-admin-key"

// AdminKeyMatches reports whether provided equals the configured shared
// secret. An unset secret never matches.
func AdminKeyMatches(expected, provided string) bool {
	if expected == "" || provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}
