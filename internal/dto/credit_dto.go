// FILE: internal/dto/credit_dto.go
// DTOs for the admin credit ledger endpoints
package dto

import (
	"time"

	"github.com/google/uuid"
)

type AccountResponse struct {
	UserEmail             string     `json:"user_email"`
	CreditsBalance        int        `json:"credits_balance"`
	WelcomebookCount      int        `json:"welcomebook_count"`
	LastCreditConsumption time.Time  `json:"last_credit_consumption"`
	AccountStatus         string     `json:"account_status"`
	SuspendedAt           *time.Time `json:"suspended_at,omitempty"`
	ConsumptionInterval   float64    `json:"consumption_interval_hours"`
	NextConsumptionAt     *time.Time `json:"next_consumption_at,omitempty"`
	GracePeriodEndsAt     *time.Time `json:"grace_period_ends_at,omitempty"`
}

// AccountStatusCounts holds the number of distinct accounts per lifecycle status
type AccountStatusCounts struct {
	Active      int64 `json:"active"`
	GracePeriod int64 `json:"grace_period"`
	Suspended   int64 `json:"suspended"`
	ToDelete    int64 `json:"to_delete"`
}

type ListTransactionsQuery struct {
	Email string `query:"email" validate:"required,email"`
	Type  string `query:"type" validate:"omitempty,oneof=spend_daily purchase bonus social_share refund adjustment"`
	Page  int    `query:"page" validate:"min=1"`
	Limit int    `query:"limit" validate:"min=1,max=100"`
}

type CreditTransactionResponse struct {
	Id              uuid.UUID              `json:"id"`
	UserEmail       string                 `json:"user_email"`
	Amount          int                    `json:"amount"`
	BalanceAfter    int                    `json:"balance_after"`
	TransactionType string                 `json:"transaction_type"`
	Description     string                 `json:"description"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

type PaginatedResponse[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type CronRunResponse struct {
	Id                      uuid.UUID `json:"id"`
	JobName                 string    `json:"job_name"`
	Trigger                 string    `json:"trigger"`
	StartedAt               time.Time `json:"started_at"`
	FinishedAt              time.Time `json:"finished_at"`
	Success                 bool      `json:"success"`
	UsersProcessed          int       `json:"users_processed"`
	CreditsConsumed         int       `json:"credits_consumed"`
	UsersEnteredGracePeriod int       `json:"users_entered_grace_period"`
	UsersSuspended          int       `json:"users_suspended"`
	ExecutionTimeMs         int64     `json:"execution_time_ms"`
	Errors                  []string  `json:"errors,omitempty"`
	FatalError              *string   `json:"fatal_error,omitempty"`
}

// AccountLifecycleEvent travels on the in-process bus and then to NATS
type AccountLifecycleEvent struct {
	Type           string     `json:"type"`
	UserEmail      string     `json:"user_email"`
	CreditsBalance int        `json:"credits_balance"`
	AccountStatus  string     `json:"account_status"`
	GraceEndsAt    *time.Time `json:"grace_ends_at,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}
