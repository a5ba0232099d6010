package repositories

import (
	"context"

	"github.com/SscSPs/account_ledger/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves an account together with its owning customer.
	// A missing record is reported as apperrors.ErrNotFound; any other error is a storage fault.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount upserts the owning customer and the account as one consistent pair.
	// On success the account's Version and audit timestamps reflect the stored row.
	// A stale Version yields apperrors.ErrConcurrentUpdate.
	SaveAccount(ctx context.Context, account *domain.Account) error

	// DeleteAccount removes the account row and its customer row.
	// Deleting ids that do not exist is not an error.
	DeleteAccount(ctx context.Context, accountID string, customerID string) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
// This is a facade for clients that need access to all operations
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction capabilities
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager[AccountRepositoryFacade]
}
