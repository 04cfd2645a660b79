package specification

import (
	"welcomeapp-be/internal/entity"

	"gorm.io/gorm"
)

type ByUserEmail struct {
	Email string
}

func (s ByUserEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_email = ?", s.Email)
}

type ByAccountStatus struct {
	Status entity.AccountStatus
}

func (s ByAccountStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("account_status = ?", string(s.Status))
}

// ConsumptionCandidates selects rows still spending credits or sitting in grace period.
// Suspended and to_delete rows never spend, whatever their balance.
type ConsumptionCandidates struct{}

func (s ConsumptionCandidates) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(
		"(credits_balance > 0 AND account_status NOT IN ?) OR account_status = ?",
		[]string{string(entity.AccountStatusSuspended), string(entity.AccountStatusToDelete)},
		string(entity.AccountStatusGracePeriod),
	)
}

type ByTransactionType struct {
	Type entity.CreditTransactionType
}

func (s ByTransactionType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("transaction_type = ?", string(s.Type))
}

type ByJobName struct {
	Name string
}

func (s ByJobName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("job_name = ?", s.Name)
}
