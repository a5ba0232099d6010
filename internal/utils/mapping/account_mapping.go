package mapping

import (
	"github.com/SscSPs/account_ledger/internal/core/domain"
	"github.com/SscSPs/account_ledger/internal/models"
)

// ToModelAccount converts a domain Account to the account and customer rows it is stored as
func ToModelAccount(d domain.Account) (models.Account, models.Customer) {
	account := models.Account{
		AccountID:       d.AccountID,
		CustomerID:      d.Owner.CustomerID,
		Balance:         d.Balance,
		AvailableCredit: d.AvailableCredit,
		Version:         d.Version,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
	customer := models.Customer{
		CustomerID:  d.Owner.CustomerID,
		Name:        d.Owner.Name,
		TaxID:       d.Owner.TaxID,
		AuditFields: ToModelAuditFields(d.Owner.AuditFields),
	}
	return account, customer
}

// ToDomainAccount joins an account row with its customer row
func ToDomainAccount(a models.Account, c models.Customer) domain.Account {
	return domain.Account{
		AccountID: a.AccountID,
		Owner: domain.Customer{
			CustomerID:  c.CustomerID,
			Name:        c.Name,
			TaxID:       c.TaxID,
			AuditFields: ToDomainAuditFields(c.AuditFields),
		},
		Balance:         a.Balance,
		AvailableCredit: a.AvailableCredit,
		Version:         a.Version,
		AuditFields:     ToDomainAuditFields(a.AuditFields),
	}
}
