package shared

import "strings"

// ToTitle upper-cases the first byte of s.
func ToTitle(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// TrimRelative strips a leading "./" and any leading slashes from an import path.
func TrimRelative(p string) string {
	return strings.TrimLeft(strings.TrimPrefix(p, "./"), "/")
}
