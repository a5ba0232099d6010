package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/SscSPs/account_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/account_ledger/internal/models"
	"github.com/SscSPs/account_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const findAccountByIDQuery = `
		SELECT c.customer_id, c.name, c.tax_id, c.created_at, c.last_updated_at,
			a.account_id, a.balance, a.available_credit, a.version, a.created_at, a.last_updated_at
		FROM accounts a
		JOIN customers c ON a.customer_id = c.customer_id
		WHERE a.account_id = $1`

type PgxAccountRepository struct {
	BaseRepository
	tx    pgx.Tx          // set for the repository view handed out by RunInTx
	txCtx context.Context // carries the unit-of-work deadline of tx
	now   func() time.Time
}

// NewAccountRepository creates a new repository for account and customer data.
func NewAccountRepository(pool *pgxpool.Pool, timeout time.Duration) portsrepo.AccountRepositoryWithTx {
	return newPgxAccountRepository(pool, timeout, time.Now)
}

func newPgxAccountRepository(pool PgxPool, timeout time.Duration, now func() time.Time) *PgxAccountRepository {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool, Timeout: timeout},
		now:            now,
	}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryWithTx
var _ portsrepo.AccountRepositoryWithTx = (*PgxAccountRepository)(nil)

func (r *PgxAccountRepository) q() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.Pool
}

// callContext bounds a single store call. Outside a transaction it applies the
// store timeout; inside one the call ends when either ctx or the transaction's
// deadline is done.
func (r *PgxAccountRepository) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.tx == nil {
		return r.withTimeout(ctx)
	}
	callCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(r.txCtx, cancel)
	return callCtx, func() {
		stop()
		cancel()
	}
}

// RunInTx runs fn inside a single database transaction bounded by the store timeout.
func (r *PgxAccountRepository) RunInTx(ctx context.Context, fn func(repo portsrepo.AccountRepositoryFacade) error) error {
	if r.tx != nil {
		return fn(r)
	}

	txCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.Begin(txCtx)
	if err != nil {
		return err
	}

	txRepo := &PgxAccountRepository{BaseRepository: r.BaseRepository, tx: tx, txCtx: txCtx, now: r.now}
	if err := fn(txRepo); err != nil {
		_ = r.Rollback(txCtx, tx)
		return err
	}
	return r.Commit(txCtx, tx)
}

// FindAccountByID retrieves an account joined with its customer.
// Inside a transaction the account row is locked until commit.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	ctx, cancel := r.callContext(ctx)
	defer cancel()

	query := findAccountByIDQuery
	if r.tx != nil {
		query += "\n\t\tFOR UPDATE OF a"
	}

	var modelAcc models.Account
	var modelCust models.Customer
	err := r.q().QueryRow(ctx, query, accountID).Scan(
		&modelCust.CustomerID,
		&modelCust.Name,
		&modelCust.TaxID,
		&modelCust.CreatedAt,
		&modelCust.LastUpdatedAt,
		&modelAcc.AccountID,
		&modelAcc.Balance,
		&modelAcc.AvailableCredit,
		&modelAcc.Version,
		&modelAcc.CreatedAt,
		&modelAcc.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, storageError(fmt.Sprintf("failed to find account by ID %s", accountID), err)
	}
	modelAcc.CustomerID = modelCust.CustomerID

	domainAcc := mapping.ToDomainAccount(modelAcc, modelCust)
	return &domainAcc, nil
}

// savedRow holds the values the database assigned during a save.
type savedRow struct {
	version           int64
	createdAt         time.Time
	customerCreatedAt time.Time
	updatedAt         time.Time
}

// SaveAccount upserts the customer and the account inside one transaction.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account *domain.Account) error {
	ctx, cancel := r.callContext(ctx)
	defer cancel()

	if r.tx != nil {
		saved, err := r.saveInTx(ctx, r.tx, account)
		if err != nil {
			return err
		}
		applySaved(account, saved)
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}

	saved, err := r.saveInTx(ctx, tx, account)
	if err != nil {
		_ = r.Rollback(ctx, tx)
		return err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return err
	}
	applySaved(account, saved)
	return nil
}

func (r *PgxAccountRepository) saveInTx(ctx context.Context, tx pgx.Tx, account *domain.Account) (savedRow, error) {
	modelAcc, modelCust := mapping.ToModelAccount(*account)
	now := r.now().UTC()
	saved := savedRow{updatedAt: now}

	// 1. Customer first so the account's foreign key always resolves.
	customerQuery := `
		INSERT INTO customers (customer_id, name, tax_id, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (customer_id) DO UPDATE
		SET name = EXCLUDED.name, tax_id = EXCLUDED.tax_id, last_updated_at = EXCLUDED.last_updated_at
		RETURNING created_at;
	`
	err := tx.QueryRow(ctx, customerQuery,
		modelCust.CustomerID,
		modelCust.Name,
		modelCust.TaxID,
		now,
	).Scan(&saved.customerCreatedAt)
	if err != nil {
		return saved, storageError(fmt.Sprintf("failed to upsert customer %s", modelCust.CustomerID), err)
	}

	// 2. Account: lock the current row (if any) and compare versions.
	var storedVersion int64
	var storedCreatedAt time.Time
	err = tx.QueryRow(ctx,
		`SELECT version, created_at FROM accounts WHERE account_id = $1 FOR UPDATE;`,
		modelAcc.AccountID,
	).Scan(&storedVersion, &storedCreatedAt)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if modelAcc.Version != 0 {
			return saved, fmt.Errorf("%w: account %s no longer exists", apperrors.ErrConcurrentUpdate, modelAcc.AccountID)
		}
		insertQuery := `
			INSERT INTO accounts (account_id, customer_id, balance, available_credit, version, created_at, last_updated_at)
			VALUES ($1, $2, $3, $4, 1, $5, $5);
		`
		if _, err := tx.Exec(ctx, insertQuery,
			modelAcc.AccountID,
			modelAcc.CustomerID,
			modelAcc.Balance,
			modelAcc.AvailableCredit,
			now,
		); err != nil {
			return saved, storageError(fmt.Sprintf("failed to insert account %s", modelAcc.AccountID), err)
		}
		saved.version = 1
		saved.createdAt = now
		return saved, nil

	case err != nil:
		return saved, storageError(fmt.Sprintf("failed to check account %s", modelAcc.AccountID), err)
	}

	if storedVersion != modelAcc.Version {
		return saved, fmt.Errorf("%w: account %s expected version %d, found %d",
			apperrors.ErrConcurrentUpdate, modelAcc.AccountID, modelAcc.Version, storedVersion)
	}

	updateQuery := `
		UPDATE accounts
		SET customer_id = $2, balance = $3, available_credit = $4, version = version + 1, last_updated_at = $5
		WHERE account_id = $1 AND version = $6;
	`
	tag, err := tx.Exec(ctx, updateQuery,
		modelAcc.AccountID,
		modelAcc.CustomerID,
		modelAcc.Balance,
		modelAcc.AvailableCredit,
		now,
		modelAcc.Version,
	)
	if err != nil {
		return saved, storageError(fmt.Sprintf("failed to update account %s", modelAcc.AccountID), err)
	}
	if tag.RowsAffected() == 0 {
		return saved, fmt.Errorf("%w: account %s", apperrors.ErrConcurrentUpdate, modelAcc.AccountID)
	}

	saved.version = storedVersion + 1
	saved.createdAt = storedCreatedAt
	return saved, nil
}

func applySaved(account *domain.Account, saved savedRow) {
	account.Version = saved.version
	account.CreatedAt = saved.createdAt
	account.LastUpdatedAt = saved.updatedAt
	account.Owner.CreatedAt = saved.customerCreatedAt
	account.Owner.LastUpdatedAt = saved.updatedAt
}

// DeleteAccount removes the account and then its customer, unless another account
// still references the customer. Missing rows are not an error.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, accountID string, customerID string) error {
	ctx, cancel := r.callContext(ctx)
	defer cancel()

	if r.tx != nil {
		return deleteInTx(ctx, r.tx, accountID, customerID)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}

	if err := deleteInTx(ctx, tx, accountID, customerID); err != nil {
		_ = r.Rollback(ctx, tx)
		return err
	}
	return r.Commit(ctx, tx)
}

func deleteInTx(ctx context.Context, tx pgx.Tx, accountID string, customerID string) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM accounts WHERE account_id = $1;`,
		accountID,
	); err != nil {
		return storageError(fmt.Sprintf("failed to delete account %s", accountID), err)
	}

	customerQuery := `
		DELETE FROM customers c
		WHERE c.customer_id = $1
		AND NOT EXISTS (SELECT 1 FROM accounts a WHERE a.customer_id = c.customer_id);
	`
	if _, err := tx.Exec(ctx, customerQuery, customerID); err != nil {
		return storageError(fmt.Sprintf("failed to delete customer %s", customerID), err)
	}
	return nil
}
