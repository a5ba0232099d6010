package models

import (
	"github.com/shopspring/decimal"
)

// Account represents a row of the accounts table.
type Account struct {
	AccountID       string          `db:"account_id"`
	CustomerID      string          `db:"customer_id"` // FK -> customers.customer_id
	Balance         decimal.Decimal `db:"balance"`
	AvailableCredit decimal.Decimal `db:"available_credit"`
	Version         int64           `db:"version"` // Incremented on every update
	AuditFields
}
