// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services to distinguish between different failure scenarios without
// inspecting driver errors. Every lookup that finds nothing returns one
// of the *NotFound sentinels rather than a zero value.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup key.
	ErrUserNotFound = errors.New("user not found")
	// ErrMovieNotFound is returned when no movie matches the lookup key
	// (or, for owner-scoped operations, when it is not owned by the caller).
	ErrMovieNotFound = errors.New("movie not found")
	// ErrCommentNotFound is returned when a parent comment id does not exist.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrNoRatings is returned when a movie exists but has not been rated.
	ErrNoRatings = errors.New("no ratings")
	// ErrDuplicate is returned when an insert or update violates a unique
	// constraint. Services translate this into a conflict.
	ErrDuplicate = errors.New("duplicate entry")
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a unique constraint violation
// raised by either supported driver.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique constraint failed")
}
