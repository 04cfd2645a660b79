package contract

import (
	"context"

	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/repository/specification"
)

// CreditTransactionRepository is append-only: the ledger is never updated or deleted
type CreditTransactionRepository interface {
	Create(ctx context.Context, tx *entity.CreditTransaction) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CreditTransaction, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
