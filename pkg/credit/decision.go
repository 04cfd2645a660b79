package credit

import (
	"fmt"
	"time"
)

// Action is the single policy step applied to an account during a run
type Action int

const (
	ActionNone Action = iota
	ActionConsume
	ActionSuspend
)

func (a Action) String() string {
	switch a {
	case ActionConsume:
		return "consume"
	case ActionSuspend:
		return "suspend"
	default:
		return "none"
	}
}

// Snapshot is the account state the policy needs
type Snapshot struct {
	CreditsBalance        int
	WelcomebookCount      int
	LastCreditConsumption time.Time
	Status                string
	SuspendedAt           *time.Time
}

// Decision is the outcome of Decide. For ActionNone the state fields echo the input.
type Decision struct {
	Action           Action
	PreviousBalance  int
	NewBalance       int
	NewStatus        string
	NewSuspendedAt   *time.Time
	EnteredGrace     bool
	ConsumedAt       *time.Time
	IntervalHours    float64
	GraceElapsedDays float64
}

// Decide applies one lifecycle step to an account.
//
// Order matters: an expired grace period suspends the account and nothing else
// happens this run; otherwise a positive balance is decayed when due.
func Decide(s Snapshot, now time.Time) (Decision, error) {
	d := Decision{
		Action:          ActionNone,
		PreviousBalance: s.CreditsBalance,
		NewBalance:      s.CreditsBalance,
		NewStatus:       s.Status,
		NewSuspendedAt:  s.SuspendedAt,
		IntervalHours:   ConsumptionIntervalHours(s.WelcomebookCount),
	}

	if s.CreditsBalance < 0 {
		return d, fmt.Errorf("negative credits balance %d", s.CreditsBalance)
	}

	switch s.Status {
	case StatusSuspended, StatusToDelete:
		return d, nil
	case StatusGracePeriod:
		if s.SuspendedAt == nil {
			return d, fmt.Errorf("account in grace period has no suspended_at")
		}
		d.GraceElapsedDays = now.Sub(*s.SuspendedAt).Hours() / 24
		if GracePeriodElapsed(*s.SuspendedAt, now) {
			d.Action = ActionSuspend
			d.NewStatus = StatusSuspended
			return d, nil
		}
	}

	if s.CreditsBalance <= 0 || !ShouldConsumeCredit(s.LastCreditConsumption, s.WelcomebookCount, now) {
		return d, nil
	}

	consumedAt := now
	d.Action = ActionConsume
	d.NewBalance = s.CreditsBalance - 1
	d.ConsumedAt = &consumedAt

	if d.NewBalance == 0 && s.Status != StatusGracePeriod {
		d.NewStatus = StatusGracePeriod
		d.NewSuspendedAt = &consumedAt
		d.EnteredGrace = true
	}

	return d, nil
}
