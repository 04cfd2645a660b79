// FILE: internal/dto/cron_dto.go
// DTOs for the credit consumption cron endpoint
package dto

import "time"

// ConsumptionRunSummary is the body returned to the scheduler after a completed run
type ConsumptionRunSummary struct {
	Success                 bool     `json:"success"`
	UsersProcessed          int      `json:"usersProcessed"`
	CreditsConsumed         int      `json:"creditsConsumed"`
	UsersEnteredGracePeriod int      `json:"usersEnteredGracePeriod"`
	UsersSuspended          int      `json:"usersSuspended"`
	ExecutionTimeMs         int64    `json:"executionTimeMs"`
	Errors                  []string `json:"errors,omitempty"`

	StartedAt time.Time `json:"-"`
	Trigger   string    `json:"-"`
}

// CronFailureResponse is returned when a run could not start or fetch its accounts
type CronFailureResponse struct {
	Success         bool   `json:"success"`
	Error           string `json:"error"`
	ExecutionTimeMs int64  `json:"executionTimeMs"`
}

// AccountDecision is one line of a dry run
type AccountDecision struct {
	UserEmail        string  `json:"user_email"`
	WelcomebookCount int     `json:"welcomebook_count"`
	Action           string  `json:"action"`
	PreviousBalance  int     `json:"previous_balance"`
	NewBalance       int     `json:"new_balance"`
	PreviousStatus   string  `json:"previous_status"`
	NewStatus        string  `json:"new_status"`
	IntervalHours    float64 `json:"interval_hours"`
	Error            string  `json:"error,omitempty"`
}
