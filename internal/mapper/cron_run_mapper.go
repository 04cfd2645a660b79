package mapper

import (
	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/model"

	"gorm.io/datatypes"
)

type CronRunMapper struct{}

func NewCronRunMapper() *CronRunMapper {
	return &CronRunMapper{}
}

func (m *CronRunMapper) ToModel(r *entity.CronRun) *model.CronRun {
	if r == nil {
		return nil
	}
	return &model.CronRun{
		Id:                      r.Id,
		JobName:                 r.JobName,
		Trigger:                 string(r.Trigger),
		StartedAt:               r.StartedAt,
		FinishedAt:              r.FinishedAt,
		Success:                 r.Success,
		UsersProcessed:          r.UsersProcessed,
		CreditsConsumed:         r.CreditsConsumed,
		UsersEnteredGracePeriod: r.UsersEnteredGracePeriod,
		UsersSuspended:          r.UsersSuspended,
		ExecutionTimeMs:         r.ExecutionTimeMs,
		Errors:                  datatypes.JSONSlice[string](r.Errors),
		FatalError:              r.FatalError,
	}
}

func (m *CronRunMapper) ToEntity(r *model.CronRun) *entity.CronRun {
	if r == nil {
		return nil
	}
	return &entity.CronRun{
		Id:                      r.Id,
		JobName:                 r.JobName,
		Trigger:                 entity.CronTrigger(r.Trigger),
		StartedAt:               r.StartedAt,
		FinishedAt:              r.FinishedAt,
		Success:                 r.Success,
		UsersProcessed:          r.UsersProcessed,
		CreditsConsumed:         r.CreditsConsumed,
		UsersEnteredGracePeriod: r.UsersEnteredGracePeriod,
		UsersSuspended:          r.UsersSuspended,
		ExecutionTimeMs:         r.ExecutionTimeMs,
		Errors:                  []string(r.Errors),
		FatalError:              r.FatalError,
	}
}

func (m *CronRunMapper) ToEntities(rs []*model.CronRun) []*entity.CronRun {
	result := make([]*entity.CronRun, 0, len(rs))
	for _, r := range rs {
		result = append(result, m.ToEntity(r))
	}
	return result
}
