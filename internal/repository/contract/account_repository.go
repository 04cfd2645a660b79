package contract

import (
	"context"
	"time"

	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/repository/specification"
)

type AccountRepository interface {
	// Welcome book rows
	CreateWelcomeBook(ctx context.Context, book *entity.WelcomeBook) error
	FindWelcomeBooks(ctx context.Context, specs ...specification.Specification) ([]*entity.WelcomeBook, error)

	// Billing accounts (rows grouped by owner email)
	FindConsumptionCandidates(ctx context.Context) ([]*entity.Account, error)
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	FindSuspendedAt(ctx context.Context, email string) (*time.Time, error)

	// UpdateByEmail applies the same update to every row of the email and
	// returns how many rows changed.
	UpdateByEmail(ctx context.Context, email string, update entity.AccountUpdate) (int64, error)

	CountByStatus(ctx context.Context, status entity.AccountStatus) (int64, error)
}
