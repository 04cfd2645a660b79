package implementation

import (
	"context"

	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/mapper"
	"welcomeapp-be/internal/model"
	"welcomeapp-be/internal/repository/contract"
	"welcomeapp-be/internal/repository/specification"

	"gorm.io/gorm"
)

type CreditTransactionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CreditTransactionMapper
}

func NewCreditTransactionRepository(db *gorm.DB) contract.CreditTransactionRepository {
	return &CreditTransactionRepositoryImpl{
		db:     db,
		mapper: mapper.NewCreditTransactionMapper(),
	}
}

func (r *CreditTransactionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CreditTransactionRepositoryImpl) Create(ctx context.Context, tx *entity.CreditTransaction) error {
	m, err := r.mapper.ToModel(tx)
	if err != nil {
		return wrapDBError("encode ledger metadata", err)
	}
	m.UserEmail = normalizeEmail(m.UserEmail)

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return wrapDBError("insert credit transaction", err)
	}
	*tx = *r.mapper.ToEntity(m)
	return nil
}

func (r *CreditTransactionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CreditTransaction, error) {
	var rows []*model.CreditTransaction
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&rows).Error; err != nil {
		return nil, wrapDBError("list credit transactions", err)
	}
	return r.mapper.ToEntities(rows), nil
}

func (r *CreditTransactionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.CreditTransaction{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, wrapDBError("count credit transactions", err)
	}
	return count, nil
}
