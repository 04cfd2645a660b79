// FILE: internal/entity/account_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type AccountStatus string
type CreditTransactionType string

const (
	AccountStatusActive      AccountStatus = "active"
	AccountStatusGracePeriod AccountStatus = "grace_period"
	AccountStatusSuspended   AccountStatus = "suspended"
	AccountStatusToDelete    AccountStatus = "to_delete"

	CreditTransactionSpendDaily  CreditTransactionType = "spend_daily"
	CreditTransactionPurchase    CreditTransactionType = "purchase"
	CreditTransactionBonus       CreditTransactionType = "bonus"
	CreditTransactionSocialShare CreditTransactionType = "social_share"
	CreditTransactionRefund      CreditTransactionType = "refund"
	CreditTransactionAdjustment  CreditTransactionType = "adjustment"
)

// WelcomeBook is one published guest site. Billing fields are duplicated on
// every book of the same owner email and always move together.
type WelcomeBook struct {
	Id                    uuid.UUID
	UserEmail             string
	Name                  string
	Slug                  string
	CreditsBalance        int
	LastCreditConsumption time.Time
	AccountStatus         AccountStatus
	SuspendedAt           *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Account is the billing account behind all welcome books sharing an email
type Account struct {
	UserEmail             string
	CreditsBalance        int
	WelcomebookCount      int
	LastCreditConsumption time.Time
	AccountStatus         AccountStatus
	SuspendedAt           *time.Time
}

// AccountUpdate is applied to every row of an email in one statement.
// Nil fields are left untouched.
type AccountUpdate struct {
	CreditsBalance        *int
	AccountStatus         *AccountStatus
	SuspendedAt           *time.Time
	LastCreditConsumption *time.Time
}

type CreditTransaction struct {
	Id              uuid.UUID
	UserEmail       string
	Amount          int
	BalanceAfter    int
	TransactionType CreditTransactionType
	Description     string
	Metadata        map[string]interface{}
	CreatedAt       time.Time
}
