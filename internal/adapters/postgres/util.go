package postgres

import (
	"strings"
)

// isUniqueViolation matches the unique-key errors surfaced by duplicate
// record creates and contested idempotency reservations.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
