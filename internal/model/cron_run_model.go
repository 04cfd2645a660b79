package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CronRun struct {
	Id                      uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	JobName                 string                      `gorm:"type:varchar(100);not null;index:idx_cron_runs_job_started,priority:1"`
	Trigger                 string                      `gorm:"type:varchar(20);not null"`
	StartedAt               time.Time                   `gorm:"not null;index:idx_cron_runs_job_started,priority:2"`
	FinishedAt              time.Time                   `gorm:"not null"`
	Success                 bool                        `gorm:"not null"`
	UsersProcessed          int                         `gorm:"not null;default:0"`
	CreditsConsumed         int                         `gorm:"not null;default:0"`
	UsersEnteredGracePeriod int                         `gorm:"not null;default:0"`
	UsersSuspended          int                         `gorm:"not null;default:0"`
	ExecutionTimeMs         int64                       `gorm:"not null;default:0"`
	Errors                  datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	FatalError              *string                     `gorm:"type:text"`
}

func (CronRun) TableName() string {
	return "cron_runs"
}
