// Package memory holds in-process repositories. They keep every row in maps
// guarded by a mutex and follow the same contracts as the PostgreSQL ones.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/SscSPs/account_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/account_ledger/internal/models"
	"github.com/SscSPs/account_ledger/internal/utils/mapping"
)

// tables mirrors the two tables of the relational schema.
type tables struct {
	customers map[string]models.Customer
	accounts  map[string]models.Account
}

func newTables() *tables {
	return &tables{
		customers: make(map[string]models.Customer),
		accounts:  make(map[string]models.Account),
	}
}

func (t *tables) clone() *tables {
	return &tables{
		customers: maps.Clone(t.customers),
		accounts:  maps.Clone(t.accounts),
	}
}

type AccountRepository struct {
	mu        *sync.Mutex
	committed *tables
	staged    *tables // non-nil for the view handed out by RunInTx
	now       func() time.Time
}

// NewAccountRepository creates an empty in-memory account repository.
func NewAccountRepository() *AccountRepository {
	return newAccountRepository(time.Now)
}

func newAccountRepository(now func() time.Time) *AccountRepository {
	return &AccountRepository{
		mu:        &sync.Mutex{},
		committed: newTables(),
		now:       now,
	}
}

// Ensure AccountRepository implements portsrepo.AccountRepositoryWithTx
var _ portsrepo.AccountRepositoryWithTx = (*AccountRepository)(nil)

// NewRepositoryProvider wires the in-memory repositories.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo: NewAccountRepository(),
	}
}

// access runs fn against the tables visible to this repository view. Outside a
// transaction the mutex is taken for the duration of fn; inside one it is already held.
func (r *AccountRepository) access(ctx context.Context, fn func(t *tables) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrStorageFailure, err)
	}
	if r.staged != nil {
		return fn(r.staged)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.committed)
}

// RunInTx serialises fn against all other writers and applies its changes only when it returns nil.
func (r *AccountRepository) RunInTx(ctx context.Context, fn func(repo portsrepo.AccountRepositoryFacade) error) error {
	if r.staged != nil {
		return fn(r)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrStorageFailure, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	txRepo := &AccountRepository{mu: r.mu, committed: r.committed, staged: r.committed.clone(), now: r.now}
	if err := fn(txRepo); err != nil {
		return err
	}
	// A context cancelled mid-transaction discards the staged writes.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: transaction aborted: %w", apperrors.ErrStorageFailure, err)
	}
	*r.committed = *txRepo.staged
	return nil
}

// FindAccountByID returns a copy of the stored account joined with its customer.
func (r *AccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	var found domain.Account
	err := r.access(ctx, func(t *tables) error {
		acc, ok := t.accounts[accountID]
		if !ok {
			return apperrors.ErrNotFound
		}
		cust, ok := t.customers[acc.CustomerID]
		if !ok {
			return fmt.Errorf("%w: account %s references missing customer %s",
				apperrors.ErrStorageFailure, accountID, acc.CustomerID)
		}
		found = mapping.ToDomainAccount(acc, cust)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// SaveAccount upserts the customer and the account. Both rows are written or neither is.
func (r *AccountRepository) SaveAccount(ctx context.Context, account *domain.Account) error {
	return r.access(ctx, func(t *tables) error {
		modelAcc, modelCust := mapping.ToModelAccount(*account)
		now := r.now().UTC()

		stored, exists := t.accounts[modelAcc.AccountID]
		switch {
		case !exists && modelAcc.Version != 0:
			return fmt.Errorf("%w: account %s no longer exists", apperrors.ErrConcurrentUpdate, modelAcc.AccountID)
		case exists && stored.Version != modelAcc.Version:
			return fmt.Errorf("%w: account %s expected version %d, found %d",
				apperrors.ErrConcurrentUpdate, modelAcc.AccountID, modelAcc.Version, stored.Version)
		}

		if prev, ok := t.customers[modelCust.CustomerID]; ok {
			modelCust.CreatedAt = prev.CreatedAt
		} else {
			modelCust.CreatedAt = now
		}
		modelCust.LastUpdatedAt = now

		if exists {
			modelAcc.CreatedAt = stored.CreatedAt
			modelAcc.Version = stored.Version + 1
		} else {
			modelAcc.CreatedAt = now
			modelAcc.Version = 1
		}
		modelAcc.LastUpdatedAt = now

		t.customers[modelCust.CustomerID] = modelCust
		t.accounts[modelAcc.AccountID] = modelAcc

		account.Version = modelAcc.Version
		account.AuditFields = mapping.ToDomainAuditFields(modelAcc.AuditFields)
		account.Owner.AuditFields = mapping.ToDomainAuditFields(modelCust.AuditFields)
		return nil
	})
}

// DeleteAccount removes the account and then its customer once no account references it.
func (r *AccountRepository) DeleteAccount(ctx context.Context, accountID string, customerID string) error {
	return r.access(ctx, func(t *tables) error {
		delete(t.accounts, accountID)
		for _, acc := range t.accounts {
			if acc.CustomerID == customerID {
				return nil
			}
		}
		delete(t.customers, customerID)
		return nil
	})
}
