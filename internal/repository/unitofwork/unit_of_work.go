package unitofwork

import (
	"context"

	"welcomeapp-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AccountRepository() contract.AccountRepository
	CreditTransactionRepository() contract.CreditTransactionRepository
	CronRunRepository() contract.CronRunRepository
}
