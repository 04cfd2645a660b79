package implementation

import (
	"context"
	"errors"

	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/mapper"
	"welcomeapp-be/internal/model"
	"welcomeapp-be/internal/repository/contract"
	"welcomeapp-be/internal/repository/scope"
	"welcomeapp-be/internal/repository/specification"

	"gorm.io/gorm"
)

type CronRunRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CronRunMapper
}

func NewCronRunRepository(db *gorm.DB) contract.CronRunRepository {
	return &CronRunRepositoryImpl{
		db:     db,
		mapper: mapper.NewCronRunMapper(),
	}
}

func (r *CronRunRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CronRunRepositoryImpl) Create(ctx context.Context, run *entity.CronRun) error {
	m := r.mapper.ToModel(run)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return wrapDBError("insert cron run", err)
	}
	*run = *r.mapper.ToEntity(m)
	return nil
}

func (r *CronRunRepositoryImpl) FindLatest(ctx context.Context, jobName string) (*entity.CronRun, error) {
	var m model.CronRun
	err := r.db.WithContext(ctx).
		Scopes(scope.OrderByStartedDesc).
		Where("job_name = ?", jobName).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapDBError("find latest cron run", err)
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CronRunRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CronRun, error) {
	var rows []*model.CronRun
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&rows).Error; err != nil {
		return nil, wrapDBError("list cron runs", err)
	}
	return r.mapper.ToEntities(rows), nil
}

func (r *CronRunRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.CronRun{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, wrapDBError("count cron runs", err)
	}
	return count, nil
}
