package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Sanket3107/Rupaya/internal/apperr"
)

// SQLSTATE codes we map.
const (
	pgUniqueViolation = "23505"
	pgInvalidText     = "22P02" // e.g. a malformed UUID
)

// isUniqueViolation reports whether err is a unique-constraint failure on
// either backend.
func isUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	return false
}

// insertErr maps an INSERT failure, turning unique violations into conflicts.
func insertErr(err error, what string) error {
	if isUniqueViolation(err) {
		return apperr.Wrap(apperr.KindConflict, err, what+" already exists")
	}
	return fmt.Errorf("failed to create %s: %w", what, err)
}

// getErr maps a single-row lookup failure.
func getErr(err error, what, id string) error {
	var pqErr *pq.Error
	if errors.Is(err, sql.ErrNoRows) || (errors.As(err, &pqErr) && pqErr.Code == pgInvalidText) {
		return apperr.NotFound("%s %s not found", what, id)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// mustAffect turns a zero-row UPDATE on an active row into NotFound.
func mustAffect(n int64, err error, what, id string) error {
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", what, err)
	}
	if n == 0 {
		return apperr.NotFound("%s %s not found", what, id)
	}
	return nil
}
