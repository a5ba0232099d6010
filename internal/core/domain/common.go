package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds standard audit timestamps for domain entities.
// Repositories set them on save.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// MoneyScale is the number of decimal places stored for monetary values.
const MoneyScale int32 = 4

// FitsMoneyScale reports whether amount can be stored without rounding.
func FitsMoneyScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(MoneyScale))
}
