package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is applied to record display names when a record set is loaded.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
