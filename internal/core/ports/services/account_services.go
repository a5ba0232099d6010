package services

import (
	"context"

	"github.com/SscSPs/account_ledger/internal/core/domain"
	"github.com/SscSPs/account_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	// Returns apperrors.ErrAccountNotFound when no such account exists.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
}

// AccountWriterSvc defines lifecycle operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account and its owning customer.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error)

	// DeleteAccount removes an account and its owning customer.
	DeleteAccount(ctx context.Context, accountID string) error
}

// AccountOperationsSvc defines balance-mutating operations
type AccountOperationsSvc interface {
	// Deposit credits amount to the account balance.
	Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error)

	// Transfer moves amount between two accounts atomically and returns the updated source account.
	Transfer(ctx context.Context, fromAccountID string, toAccountID string, amount decimal.Decimal) (*domain.Account, error)

	// Loan draws amount from the account's credit line into its balance.
	Loan(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error)

	// GrantCredit extends the account's credit line by amount.
	GrantCredit(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountOperationsSvc
}
