package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WelcomeBook struct {
	Id                    uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserEmail             string         `gorm:"type:varchar(255);not null;index:idx_welcome_books_email_status,priority:1"`
	Name                  string         `gorm:"type:varchar(255);not null"`
	Slug                  string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	CreditsBalance        int            `gorm:"not null;default:0;check:chk_welcome_books_credits_non_negative,credits_balance >= 0"`
	LastCreditConsumption time.Time      `gorm:"not null;default:now()"`
	AccountStatus         string         `gorm:"type:varchar(50);not null;default:'active';index:idx_welcome_books_email_status,priority:2"`
	SuspendedAt           *time.Time     `gorm:"index"`
	CreatedAt             time.Time      `gorm:"autoCreateTime"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime"`
	DeletedAt             gorm.DeletedAt `gorm:"index"`
}

func (WelcomeBook) TableName() string {
	return "welcome_books"
}

