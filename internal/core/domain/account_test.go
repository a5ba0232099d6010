package domain_test

import (
	"errors"
	"testing"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/SscSPs/account_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccount() *domain.Account {
	return domain.NewAccount("1", domain.Customer{CustomerID: "c1", Name: "Ana", TaxID: "111.111.111-11"})
}

func TestNewAccount_StartsEmpty(t *testing.T) {
	acc := newTestAccount()

	assert.Equal(t, "1", acc.AccountID)
	assert.Equal(t, "c1", acc.Owner.CustomerID)
	assert.True(t, acc.Balance.IsZero())
	assert.True(t, acc.AvailableCredit.IsZero())
	assert.Zero(t, acc.Version)
}

func TestAccount_DepositAndWithdraw(t *testing.T) {
	tests := []struct {
		name     string
		deposit  string
		withdraw string
		want     string
	}{
		{name: "deposit only", deposit: "100", withdraw: "0", want: "100"},
		{name: "deposit then withdraw", deposit: "100", withdraw: "20", want: "80"},
		{name: "fractional amounts", deposit: "10.10", withdraw: "0.20", want: "9.9"},
		{name: "withdraw past zero is allowed at entity level", deposit: "5", withdraw: "7", want: "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := newTestAccount()
			acc.Deposit(decimal.RequireFromString(tt.deposit))
			acc.Withdraw(decimal.RequireFromString(tt.withdraw))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(acc.Balance), "got %s", acc.Balance)
		})
	}
}

func TestAccount_CanWithdraw(t *testing.T) {
	acc := newTestAccount()
	acc.Deposit(decimal.NewFromInt(50))

	assert.True(t, acc.CanWithdraw(decimal.NewFromInt(50)))
	assert.False(t, acc.CanWithdraw(decimal.NewFromInt(51)))
}

func TestAccount_TakeLoan(t *testing.T) {
	tests := []struct {
		name        string
		credit      int64
		loan        int64
		wantErr     bool
		wantBalance int64
		wantCredit  int64
	}{
		{name: "within credit", credit: 1000, loan: 400, wantBalance: 400, wantCredit: 600},
		{name: "exactly the credit", credit: 1000, loan: 1000, wantBalance: 1000, wantCredit: 0},
		{name: "above credit", credit: 1000, loan: 1001, wantErr: true, wantBalance: 0, wantCredit: 1000},
		{name: "no credit line", credit: 0, loan: 1, wantErr: true, wantBalance: 0, wantCredit: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := newTestAccount()
			acc.AddAvailableCredit(decimal.NewFromInt(tt.credit))

			err := acc.TakeLoan(decimal.NewFromInt(tt.loan))

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrInvalidAccountOperation)
				assert.ErrorIs(t, err, apperrors.ErrInsufficientCredit)
				assert.Equal(t, "Invalid account - [id: 1]", err.Error())

				var opErr *apperrors.InvalidAccountOperationError
				require.True(t, errors.As(err, &opErr))
				assert.Equal(t, "1", opErr.AccountID)
			} else {
				require.NoError(t, err)
			}
			assert.True(t, decimal.NewFromInt(tt.wantBalance).Equal(acc.Balance))
			assert.True(t, decimal.NewFromInt(tt.wantCredit).Equal(acc.AvailableCredit))
		})
	}
}

func TestAccount_TakeLoanPreservesCreditBalanceInvariant(t *testing.T) {
	acc := newTestAccount()
	acc.Deposit(decimal.NewFromInt(80))
	acc.AddAvailableCredit(decimal.NewFromInt(1000))

	balanceBefore, creditBefore := acc.Balance, acc.AvailableCredit
	require.NoError(t, acc.TakeLoan(decimal.RequireFromString("333.33")))

	creditDelta := creditBefore.Sub(acc.AvailableCredit)
	balanceDelta := acc.Balance.Sub(balanceBefore)
	assert.True(t, creditDelta.Equal(balanceDelta))
}

func TestFitsMoneyScale(t *testing.T) {
	testCases := []struct {
		amount string
		fits   bool
	}{
		{"1", true},
		{"0.0001", true},
		{"12.3400000", true},
		{"-7.25", true},
		{"0.00005", false},
		{"100.12345", false},
	}

	for _, tc := range testCases {
		t.Run(tc.amount, func(t *testing.T) {
			assert.Equal(t, tc.fits, domain.FitsMoneyScale(decimal.RequireFromString(tc.amount)))
		})
	}
}
