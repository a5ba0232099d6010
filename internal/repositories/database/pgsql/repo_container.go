package pgsql

import (
	"time"

	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the PostgreSQL-backed repositories.
func NewRepositoryProvider(dbPool *pgxpool.Pool, timeout time.Duration) portsrepo.RepositoryProvider {
	accountRepo := NewAccountRepository(dbPool, timeout)

	return portsrepo.RepositoryProvider{
		AccountRepo: accountRepo,
	}
}
