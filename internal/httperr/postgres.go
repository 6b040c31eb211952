package httperr

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the booking path cares about.
const (
	pgExclusionViolation  = "23P01"
	pgForeignKeyViolation = "23503"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"
	pgQueryCanceled       = "57014"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsExclusionConflict reports whether the error is the overlap exclusion
// constraint firing — the storage-level backstop behind the application's
// availability check.
func IsExclusionConflict(err error) bool {
	return pgCode(err) == pgExclusionViolation
}

func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == pgForeignKeyViolation
}

// IsRetryable reports whether the whole transaction is safe to run again:
// serialization failures, deadlocks, and bounded-timeout cancellations.
func IsRetryable(err error) bool {
	switch pgCode(err) {
	case pgSerializationFail, pgDeadlockDetected, pgQueryCanceled:
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
