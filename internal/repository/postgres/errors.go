package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"docarchive/internal/domain"
)

// SQLSTATE codes the archive maps to domain errors
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	return pgErrorCode(err) == pgUniqueViolation
}

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError checks if error is a foreign key violation
func IsPgForeignKeyError(err error) bool {
	return pgErrorCode(err) == pgForeignKeyViolation
}

// IsPgCheckError checks if error is a CHECK constraint violation
func IsPgCheckError(err error) bool {
	return pgErrorCode(err) == pgCheckViolation
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// StorageError converts an engine error into the domain StorageError unless
// it already carries a domain meaning. Context cancellation passes through
// untouched so callers can tell a timeout from a broken database.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	for _, known := range []error{
		domain.ErrNotFound, domain.ErrConflict, domain.ErrGuarded,
		domain.ErrValidation, domain.ErrForbidden, domain.ErrUnauthorized,
		domain.ErrStorageUnavailable,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return &domain.StorageError{Op: op, Err: err}
}

// commitConstraintError maps deferred constraint failures reported at commit.
// A foreign key failure here means a folder referenced by the transaction
// disappeared concurrently.
func commitConstraintError(err error) error {
	if IsPgDuplicateError(err) {
		return &domain.ConflictError{
			Message:      "path already exists",
			ResourceType: "folder",
		}
	}
	return &domain.NotFoundError{Message: "referenced folder no longer exists"}
}
