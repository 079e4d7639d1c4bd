package util

import "strings"

// NormalizeHandle trims whitespace and strips a single leading "@".
// Match comparisons use the lower-cased normalized form.
func NormalizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	handle = strings.TrimPrefix(handle, "@")
	return strings.TrimSpace(handle)
}
