package repository

import "strings"

// isUniqueViolation detects duplicate-key failures from either backend.
// SQLite reports "UNIQUE constraint failed", Postgres SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
