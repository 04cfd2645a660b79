package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CreditTransaction struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserEmail       string         `gorm:"type:varchar(255);not null;index:idx_credit_transactions_email_created,priority:1"`
	Amount          int            `gorm:"not null"`
	BalanceAfter    int            `gorm:"not null"`
	TransactionType string         `gorm:"type:varchar(50);not null;index"`
	Description     string         `gorm:"type:text"`
	Metadata        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt       time.Time      `gorm:"default:now();not null;index:idx_credit_transactions_email_created,priority:2"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}
