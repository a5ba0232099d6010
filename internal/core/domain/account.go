package domain

import (
	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Account represents a ledger account within the core domain.
// Balance and AvailableCredit are tracked independently; a loan moves the same
// amount from the credit line into the balance.
type Account struct {
	AccountID       string          `json:"accountID"`       // Primary Key
	Owner           Customer        `json:"owner"`           // Exactly one owning customer
	Balance         decimal.Decimal `json:"balance"`         // May go negative, entity does not guard it
	AvailableCredit decimal.Decimal `json:"availableCredit"` // Remaining loanable amount
	Version         int64           `json:"version"`         // Optimistic lock, 0 until first save
	AuditFields
}

// NewAccount creates an account with zero balance and zero available credit.
func NewAccount(accountID string, owner Customer) *Account {
	return &Account{
		AccountID:       accountID,
		Owner:           owner,
		Balance:         decimal.Zero,
		AvailableCredit: decimal.Zero,
	}
}

// Deposit adds amount to the balance.
func (a *Account) Deposit(amount decimal.Decimal) {
	a.Balance = a.Balance.Add(amount)
}

// Withdraw subtracts amount from the balance. Sufficiency is checked by callers.
func (a *Account) Withdraw(amount decimal.Decimal) {
	a.Balance = a.Balance.Sub(amount)
}

// CanWithdraw reports whether the balance covers amount.
func (a *Account) CanWithdraw(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// AddAvailableCredit grants amount of additional credit line.
func (a *Account) AddAvailableCredit(amount decimal.Decimal) {
	a.AvailableCredit = a.AvailableCredit.Add(amount)
}

// TakeLoan moves amount from the available credit into the balance.
// It leaves the account untouched and returns an InvalidAccountOperationError
// when amount exceeds the available credit.
func (a *Account) TakeLoan(amount decimal.Decimal) error {
	if amount.GreaterThan(a.AvailableCredit) {
		return apperrors.NewInvalidAccountOperation(a.AccountID, apperrors.ErrInsufficientCredit)
	}
	a.Balance = a.Balance.Add(amount)
	a.AvailableCredit = a.AvailableCredit.Sub(amount)
	return nil
}
