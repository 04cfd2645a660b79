package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccountEvent_Payload(t *testing.T) {
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ends := at.Add(7 * 24 * time.Hour)

	grace := AccountEvent{
		Type:          TypeGracePeriodStarted,
		UserEmail:     "host@example.com",
		AccountStatus: "grace_period",
		GraceEndsAt:   &ends,
		OccurredAt:    at,
	}
	assert.Equal(t, TypeGracePeriodStarted, grace.EventType())
	assert.Equal(t, at, grace.Timestamp())
	assert.Equal(t, map[string]interface{}{
		"user_email":      "host@example.com",
		"credits_balance": 0,
		"account_status":  "grace_period",
		"occurred_at":     "2026-03-10T12:00:00Z",
		"grace_ends_at":   "2026-03-17T12:00:00Z",
	}, grace.Payload())

	suspended := AccountEvent{Type: TypeAccountSuspended, UserEmail: "host@example.com", OccurredAt: at}
	assert.NotContains(t, suspended.Payload(), "grace_ends_at")
}
