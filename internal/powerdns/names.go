package powerdns

import "strings"

// Canonical returns name with exactly one trailing dot, as the API expects.
func Canonical(name string) string {
	return strings.TrimRight(name, ".") + "."
}

// Relative strips the trailing dot of a canonical name.
func Relative(name string) string {
	return strings.TrimRight(name, ".")
}
