package repositories

import (
	"context"
)

// TransactionManager defines methods for transaction management.
// R is the repository view handed to fn; every call made through it joins the
// same transaction. The transaction commits when fn returns nil and rolls back otherwise.
type TransactionManager[R any] interface {
	RunInTx(ctx context.Context, fn func(repo R) error) error
}
