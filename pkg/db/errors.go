package db

import "strings"

// IsUniqueViolation reports whether err is a unique-constraint violation from
// either supported driver (postgres or sqlite). With a constraintName it
// additionally requires that constraint to be the one named in the error;
// sqlite reports the column list rather than the constraint name, so callers
// that must work on both drivers should pass "".
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	unique := strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
	if !unique {
		return false
	}
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return true
}
