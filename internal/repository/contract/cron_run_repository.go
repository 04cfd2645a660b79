package contract

import (
	"context"

	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/repository/specification"
)

type CronRunRepository interface {
	Create(ctx context.Context, run *entity.CronRun) error
	FindLatest(ctx context.Context, jobName string) (*entity.CronRun, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CronRun, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
