// Package credit holds the credit decay and account lifecycle rules.
// Everything here is pure: callers pass "now" in, nothing reads the clock or the database.
package credit

import (
	"math"
	"time"
)

// Account lifecycle states as stored in welcome_books.account_status
const (
	StatusActive      = "active"
	StatusGracePeriod = "grace_period"
	StatusSuspended   = "suspended"
	StatusToDelete    = "to_delete"
)

const (
	// BaseInterval is the consumption interval of a single-welcome-book account
	BaseInterval = 24 * time.Hour

	// ReductionPerExtraBook shortens the interval for every welcome book beyond the first
	ReductionPerExtraBook = 0.1

	// MaxReduction caps the interval reduction
	MaxReduction = 0.5

	// FloorBookCount is the welcome book count from which MaxReduction applies
	FloorBookCount = 5

	// GracePeriod is how long an exhausted account stays reachable before suspension
	GracePeriod = 7 * 24 * time.Hour
)

// ConsumptionInterval returns how often one credit is consumed for an account
// owning welcomebookCount welcome books.
func ConsumptionInterval(welcomebookCount int) time.Duration {
	if welcomebookCount < 1 {
		welcomebookCount = 1
	}

	// Linear below the floor count, 12h at 5 books and above
	reduction := math.Min(ReductionPerExtraBook*float64(welcomebookCount-1), MaxReduction)
	if welcomebookCount >= FloorBookCount {
		reduction = MaxReduction
	}

	// Rounded to the second so 21.6h stays 21h36m and not 21h35m59.999s
	seconds := math.Round(BaseInterval.Seconds() * (1 - reduction))
	return time.Duration(seconds) * time.Second
}

// ConsumptionIntervalHours is ConsumptionInterval expressed in hours, as stored in ledger metadata.
func ConsumptionIntervalHours(welcomebookCount int) float64 {
	return ConsumptionInterval(welcomebookCount).Hours()
}

// ShouldConsumeCredit reports whether a credit is due.
func ShouldConsumeCredit(lastConsumption time.Time, welcomebookCount int, now time.Time) bool {
	return now.Sub(lastConsumption) >= ConsumptionInterval(welcomebookCount)
}

// GracePeriodElapsed reports whether an account that entered grace at suspendedAt
// has used up its seven days.
func GracePeriodElapsed(suspendedAt, now time.Time) bool {
	return now.Sub(suspendedAt) >= GracePeriod
}
