package dberrors

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes we branch on
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeSerialization       = "40001"
	codeDeadlockDetected    = "40P01"
)

func pgCode(err error) (string, string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	return "", "", false
}

// IsDuplicateConstraintError checks if the error is a unique violation on the named constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	code, constraint, ok := pgCode(err)
	return ok && code == codeUniqueViolation && constraint == constraintName
}

// IsForeignKeyViolation reports a reference to a missing parent row
func IsForeignKeyViolation(err error) bool {
	code, _, ok := pgCode(err)
	return ok && code == codeForeignKeyViolation
}

// IsCheckViolation reports a CHECK constraint failure, e.g. filled_slots exceeding capacity.
func IsCheckViolation(err error) bool {
	code, _, ok := pgCode(err)
	return ok && code == codeCheckViolation
}

// IsRetryable reports serialization failures and deadlocks.
func IsRetryable(err error) bool {
	code, _, ok := pgCode(err)
	return ok && (code == codeSerialization || code == codeDeadlockDetected)
}

// IsNoRows reports pgx.ErrNoRows
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsConnectionError reports failures that mean the database is unreachable,
// as opposed to a problem with one statement.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
