package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"docarchive/internal/domain/repositories"
)

// TransactionManager implements the TransactionManager interface
type TransactionManager struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(pool *pgxpool.Pool, logger *slog.Logger) repositories.TransactionManager {
	return &TransactionManager{pool: pool, logger: logger}
}

// ExecTx runs fn inside a transaction stored in the context. Nested calls
// reuse the outer transaction so a service method can compose repository
// calls that each expect to be atomic.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if repositories.InTx(ctx) {
		return fn(ctx)
	}

	tx, err := tm.pool.Begin(ctx)
	if err != nil {
		return StorageError("begin transaction", err)
	}

	// Rollback is a no-op after a successful commit
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			tm.logger.Error("rollback failed", "error", err)
		}
	}()

	if err := fn(repositories.SetTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		// Deferred constraints are checked at commit
		if IsPgForeignKeyError(err) || IsPgDuplicateError(err) {
			return commitConstraintError(err)
		}
		return StorageError("commit transaction", err)
	}

	return nil
}

// WithSavepoint runs fn inside a savepoint of the transaction stored in ctx,
// so a failed statement is rolled back without aborting the transaction.
// Outside a transaction fn runs directly against the pool. fn's error is
// returned unwrapped for SQLSTATE inspection.
func WithSavepoint(ctx context.Context, pool *pgxpool.Pool, fn func(exec repositories.DBTX) error) error {
	tx := repositories.GetTx(ctx)
	if tx == nil {
		return fn(pool)
	}

	sp, err := tx.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(sp); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return sp.Commit(ctx)
}
