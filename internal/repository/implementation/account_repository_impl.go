package implementation

import (
	"context"
	"errors"
	"strings"
	"time"

	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/mapper"
	"welcomeapp-be/internal/model"
	"welcomeapp-be/internal/repository/contract"
	"welcomeapp-be/internal/repository/specification"

	"gorm.io/gorm"
)

type AccountRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AccountMapper
}

func NewAccountRepository(db *gorm.DB) contract.AccountRepository {
	return &AccountRepositoryImpl{
		db:     db,
		mapper: mapper.NewAccountMapper(),
	}
}

func (r *AccountRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AccountRepositoryImpl) CreateWelcomeBook(ctx context.Context, book *entity.WelcomeBook) error {
	m := r.mapper.WelcomeBookToModel(book)
	m.UserEmail = normalizeEmail(m.UserEmail)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return wrapDBError("create welcome book", err)
	}
	*book = *r.mapper.WelcomeBookToEntity(m)
	return nil
}

func (r *AccountRepositoryImpl) FindWelcomeBooks(ctx context.Context, specs ...specification.Specification) ([]*entity.WelcomeBook, error) {
	var rows []*model.WelcomeBook
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&rows).Error; err != nil {
		return nil, wrapDBError("find welcome books", err)
	}

	books := make([]*entity.WelcomeBook, 0, len(rows))
	for _, row := range rows {
		books = append(books, r.mapper.WelcomeBookToEntity(row))
	}
	return books, nil
}

func (r *AccountRepositoryImpl) FindConsumptionCandidates(ctx context.Context) ([]*entity.Account, error) {
	var rows []*model.WelcomeBook
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ConsumptionCandidates{})
	if err := query.Find(&rows).Error; err != nil {
		return nil, wrapDBError("list consumption candidates", err)
	}

	accounts := r.mapper.GroupByEmail(rows)
	if len(accounts) == 0 {
		return accounts, nil
	}

	// The interval depends on every book the host owns, including rows the
	// candidate filter left out
	counts, err := r.countBooks(ctx, accounts)
	if err != nil {
		return nil, err
	}
	r.mapper.ApplyBookCounts(accounts, counts)
	return accounts, nil
}

func (r *AccountRepositoryImpl) countBooks(ctx context.Context, accounts []*entity.Account) (map[string]int, error) {
	emails := make([]string, 0, len(accounts))
	for _, acc := range accounts {
		emails = append(emails, acc.UserEmail)
	}

	var rows []struct {
		UserEmail string
		Books     int
	}
	err := r.db.WithContext(ctx).
		Model(&model.WelcomeBook{}).
		Select("user_email, COUNT(*) AS books").
		Where("user_email IN ?", emails).
		Group("user_email").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDBError("count welcome books", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.UserEmail] = row.Books
	}
	return counts, nil
}

func (r *AccountRepositoryImpl) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	var rows []*model.WelcomeBook
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ByUserEmail{Email: normalizeEmail(email)})
	if err := query.Find(&rows).Error; err != nil {
		return nil, wrapDBError("find account", err)
	}

	accounts := r.mapper.GroupByEmail(rows)
	if len(accounts) == 0 {
		return nil, nil
	}
	return accounts[0], nil
}

func (r *AccountRepositoryImpl) FindSuspendedAt(ctx context.Context, email string) (*time.Time, error) {
	var stamps []time.Time
	err := r.db.WithContext(ctx).
		Model(&model.WelcomeBook{}).
		Where("user_email = ?", normalizeEmail(email)).
		Where("suspended_at IS NOT NULL").
		Order("suspended_at ASC").
		Limit(1).
		Pluck("suspended_at", &stamps).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapDBError("fetch suspended_at", err)
	}
	if len(stamps) == 0 {
		return nil, nil
	}
	return &stamps[0], nil
}

func (r *AccountRepositoryImpl) UpdateByEmail(ctx context.Context, email string, update entity.AccountUpdate) (int64, error) {
	cols := r.mapper.UpdateToColumns(update)
	if len(cols) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Model(&model.WelcomeBook{}).
		Where("user_email = ?", normalizeEmail(email)).
		Updates(cols)
	if res.Error != nil {
		return 0, wrapDBError("update account", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *AccountRepositoryImpl) CountByStatus(ctx context.Context, status entity.AccountStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.WelcomeBook{})
	err := specification.ByAccountStatus{Status: status}.Apply(query).
		Distinct("user_email").
		Count(&count).Error
	if err != nil {
		return 0, wrapDBError("count accounts by status", err)
	}
	return count, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
