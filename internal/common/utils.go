package common

import "strings"

// Normalize trims s and lowercases it so selector values can be matched
// regardless of how the client spelled them.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
