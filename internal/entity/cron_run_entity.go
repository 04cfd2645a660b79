// FILE: internal/entity/cron_run_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type CronTrigger string

const (
	CronTriggerHTTP      CronTrigger = "http"
	CronTriggerScheduler CronTrigger = "scheduler"
	CronTriggerCLI       CronTrigger = "cli"
	CronTriggerAdmin     CronTrigger = "admin"
)

// CronRun is the persisted outcome of one engine pass
type CronRun struct {
	Id                      uuid.UUID
	JobName                 string
	Trigger                 CronTrigger
	StartedAt               time.Time
	FinishedAt              time.Time
	Success                 bool
	UsersProcessed          int
	CreditsConsumed         int
	UsersEnteredGracePeriod int
	UsersSuspended          int
	ExecutionTimeMs         int64
	Errors                  []string
	FatalError              *string
}
