package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes mapped by storageError.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// PgxPool is the part of *pgxpool.Pool the repositories use.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// querier is satisfied by both the pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool PgxPool
	// Timeout bounds every store call, or the whole unit of work for RunInTx. Zero disables it.
	Timeout time.Duration
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", storageError("begin", err))
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", storageError("commit", err))
	}
	return nil
}

// Rollback rolls back a transaction. It still runs when ctx is already done.
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", storageError("rollback", err))
	}
	return nil
}

// withTimeout derives the per-call deadline.
func (r *BaseRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.Timeout)
}

// storageError classifies a driver error as apperrors.ErrStorageFailure,
// additionally tagging unique and foreign key violations.
func storageError(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %w: %s (%s): %w", apperrors.ErrStorageFailure, apperrors.ErrDuplicate, msg, pgErr.ConstraintName, err)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s: referenced row missing (%s): %w", apperrors.ErrStorageFailure, msg, pgErr.ConstraintName, err)
		}
	}
	return fmt.Errorf("%w: %s: %w", apperrors.ErrStorageFailure, msg, err)
}
