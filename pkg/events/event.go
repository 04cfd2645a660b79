package events

import "time"

// Event types emitted by the credit lifecycle engine
const (
	TypeGracePeriodStarted = "ACCOUNT_GRACE_PERIOD_STARTED"
	TypeAccountSuspended   = "ACCOUNT_SUSPENDED"
)

// Event is anything that can be forwarded to the event bus.
type Event interface {
	// EventType is also the last token of the NATS subject.
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// AccountEvent reports a lifecycle transition of one billing account.
type AccountEvent struct {
	Type           string
	UserEmail      string
	CreditsBalance int
	AccountStatus  string
	GraceEndsAt    *time.Time
	OccurredAt     time.Time
}

func (e AccountEvent) EventType() string {
	return e.Type
}

func (e AccountEvent) Payload() map[string]interface{} {
	data := map[string]interface{}{
		"user_email":      e.UserEmail,
		"credits_balance": e.CreditsBalance,
		"account_status":  e.AccountStatus,
		"occurred_at":     e.OccurredAt.UTC().Format(time.RFC3339),
	}
	if e.GraceEndsAt != nil {
		data["grace_ends_at"] = e.GraceEndsAt.UTC().Format(time.RFC3339)
	}
	return data
}

func (e AccountEvent) Timestamp() time.Time {
	return e.OccurredAt
}
