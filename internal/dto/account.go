package dto

import (
	"time"

	"github.com/SscSPs/account_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CustomerRequest describes the owner of a new account.
// CustomerID is optional; one is generated when empty.
type CustomerRequest struct {
	CustomerID string `json:"customerID" validate:"omitempty,max=50"`
	Name       string `json:"name" validate:"required,max=255"`
	TaxID      string `json:"taxID" validate:"max=32"`
}

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	AccountID  string          `json:"accountID" validate:"omitempty,max=50"` // Optional, generated when empty
	Customer   CustomerRequest `json:"customer"`
	CreditLine decimal.Decimal `json:"creditLine"` // Optional initial available credit, must not be negative
}

// CustomerResponse defines the customer data returned with an account.
type CustomerResponse struct {
	CustomerID string `json:"customerID"`
	Name       string `json:"name"`
	TaxID      string `json:"taxID"`
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID       string           `json:"accountID"`
	Owner           CustomerResponse `json:"owner"`
	Balance         decimal.Decimal  `json:"balance"`
	AvailableCredit decimal.Decimal  `json:"availableCredit"`
	Version         int64            `json:"version"`
	CreatedAt       time.Time        `json:"createdAt"`
	LastUpdatedAt   time.Time        `json:"lastUpdatedAt"`
}

// DeleteAccountResponse acknowledges a removed account.
type DeleteAccountResponse struct {
	Deleted string `json:"deleted"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID: acc.AccountID,
		Owner: CustomerResponse{
			CustomerID: acc.Owner.CustomerID,
			Name:       acc.Owner.Name,
			TaxID:      acc.Owner.TaxID,
		},
		Balance:         acc.Balance,
		AvailableCredit: acc.AvailableCredit,
		Version:         acc.Version,
		CreatedAt:       acc.CreatedAt,
		LastUpdatedAt:   acc.LastUpdatedAt,
	}
}
