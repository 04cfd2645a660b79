// FILE: internal/service/credit_consumption_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"welcomeapp-be/internal/dto"
	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/pkg/logger"
	"welcomeapp-be/internal/pkg/runlock"
	"welcomeapp-be/internal/repository/memory"
	"welcomeapp-be/internal/repository/unitofwork"
	"welcomeapp-be/pkg/credit"
	"welcomeapp-be/pkg/events"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	ConsumeCreditsJob = "consume-credits"

	logModule = "CREDIT"
)

type ICreditConsumptionService interface {
	// ConsumeCredits runs one pass of the engine using the wall clock
	ConsumeCredits(ctx context.Context, trigger entity.CronTrigger) (*dto.ConsumptionRunSummary, error)
	ConsumeCreditsAt(ctx context.Context, trigger entity.CronTrigger, now time.Time) (*dto.ConsumptionRunSummary, error)
	// Preview evaluates every candidate without writing anything
	Preview(ctx context.Context, now time.Time) ([]dto.AccountDecision, error)
	LastRun(ctx context.Context) (*dto.ConsumptionRunSummary, error)
}

type creditConsumptionService struct {
	uowFactory unitofwork.RepositoryFactory
	locker     runlock.Locker
	lockTTL    time.Duration
	publisher  ILifecyclePublisher
	runCache   *memory.RunSummaryRepository
	logger     logger.ILogger
	tracer     trace.Tracer
}

func NewCreditConsumptionService(
	uowFactory unitofwork.RepositoryFactory,
	locker runlock.Locker,
	lockTTL time.Duration,
	publisher ILifecyclePublisher,
	runCache *memory.RunSummaryRepository,
	logger logger.ILogger,
) ICreditConsumptionService {
	return &creditConsumptionService{
		uowFactory: uowFactory,
		locker:     locker,
		lockTTL:    lockTTL,
		publisher:  publisher,
		runCache:   runCache,
		logger:     logger,
		tracer:     otel.Tracer("welcomeapp-be/credit"),
	}
}

// accountOutcome is what a single account contributed to the run
type accountOutcome struct {
	decision credit.Decision
	events   []dto.AccountLifecycleEvent
}

func (s *creditConsumptionService) ConsumeCredits(ctx context.Context, trigger entity.CronTrigger) (*dto.ConsumptionRunSummary, error) {
	return s.ConsumeCreditsAt(ctx, trigger, time.Now().UTC())
}

func (s *creditConsumptionService) ConsumeCreditsAt(ctx context.Context, trigger entity.CronTrigger, now time.Time) (*dto.ConsumptionRunSummary, error) {
	started := time.Now()

	ctx, span := s.tracer.Start(ctx, "credit.ConsumeCredits", trace.WithAttributes(
		attribute.String("cron.trigger", string(trigger)),
	))
	defer span.End()

	lease, err := s.locker.Acquire(ctx, ConsumeCreditsJob, s.lockTTL)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, runlock.ErrLocked) {
			s.logger.Warn(logModule, "Run skipped, another run holds the lock", map[string]interface{}{
				"trigger": trigger,
			})
			return nil, ErrRunInProgress
		}
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	defer func() {
		// The lock outlives a cancelled request context, release on a fresh one
		if err := lease.Release(context.Background()); err != nil {
			s.logger.Warn(logModule, "Failed to release run lock", map[string]interface{}{"error": err.Error()})
		}
	}()

	s.logger.Info(logModule, "Credit consumption run started", map[string]interface{}{
		"trigger": trigger,
		"now":     now.Format(time.RFC3339),
	})

	accounts, err := s.uowFactory.NewUnitOfWork(ctx).AccountRepository().FindConsumptionCandidates(ctx)
	if err != nil {
		fetchErr := &FetchError{Err: err}
		span.SetStatus(codes.Error, fetchErr.Error())
		s.logger.Error(logModule, "Failed to fetch consumption candidates", map[string]interface{}{
			"error": err.Error(),
		})
		s.recordFailure(ctx, trigger, now, started, fetchErr)
		return nil, fetchErr
	}
	span.SetAttributes(attribute.Int("cron.candidates", len(accounts)))

	summary := &dto.ConsumptionRunSummary{
		Success:   true,
		StartedAt: now,
		Trigger:   string(trigger),
	}
	var pending []dto.AccountLifecycleEvent

	for _, account := range accounts {
		outcome, err := s.processAccount(ctx, account, now)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", account.UserEmail, err))
			s.logger.Error(logModule, "Failed to process account", map[string]interface{}{
				"user_email": account.UserEmail,
				"error":      err.Error(),
			})
			continue
		}

		summary.UsersProcessed++
		switch outcome.decision.Action {
		case credit.ActionConsume:
			summary.CreditsConsumed++
			if outcome.decision.EnteredGrace {
				summary.UsersEnteredGracePeriod++
			}
		case credit.ActionSuspend:
			summary.UsersSuspended++
		}
		pending = append(pending, outcome.events...)
	}

	for _, event := range pending {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn(logModule, "Failed to publish lifecycle event", map[string]interface{}{
				"type":       event.Type,
				"user_email": event.UserEmail,
				"error":      err.Error(),
			})
		}
	}

	summary.ExecutionTimeMs = time.Since(started).Milliseconds()

	span.SetAttributes(
		attribute.Int("cron.users_processed", summary.UsersProcessed),
		attribute.Int("cron.credits_consumed", summary.CreditsConsumed),
		attribute.Int("cron.users_entered_grace_period", summary.UsersEnteredGracePeriod),
		attribute.Int("cron.users_suspended", summary.UsersSuspended),
		attribute.Int("cron.errors", len(summary.Errors)),
	)

	s.logger.Info(logModule, "Credit consumption run finished", map[string]interface{}{
		"trigger":                    trigger,
		"users_processed":            summary.UsersProcessed,
		"credits_consumed":           summary.CreditsConsumed,
		"users_entered_grace_period": summary.UsersEnteredGracePeriod,
		"users_suspended":            summary.UsersSuspended,
		"errors":                     len(summary.Errors),
		"execution_time_ms":          summary.ExecutionTimeMs,
	})

	s.recordRun(ctx, summary)
	return summary, nil
}

// processAccount applies one policy step to one account. Any error leaves the
// account exactly as it was.
func (s *creditConsumptionService) processAccount(ctx context.Context, account *entity.Account, now time.Time) (outcome *accountOutcome, err error) {
	ctx, span := s.tracer.Start(ctx, "credit.processAccount", trace.WithAttributes(
		attribute.String("account.status", string(account.AccountStatus)),
		attribute.Int("account.welcomebook_count", account.WelcomebookCount),
	))
	defer span.End()

	// A panic on one account becomes that account's error; open transactions
	// are rolled back by their deferred Rollback while unwinding.
	defer func() {
		if r := recover(); r != nil {
			outcome = nil
			err = fmt.Errorf("panic: %v", r)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	decision, err := s.decide(ctx, account, now)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("credit.action", decision.Action.String()))

	outcome = &accountOutcome{decision: decision}

	switch decision.Action {
	case credit.ActionSuspend:
		if err := s.suspend(ctx, account); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		outcome.events = append(outcome.events, dto.AccountLifecycleEvent{
			Type:           events.TypeAccountSuspended,
			UserEmail:      account.UserEmail,
			CreditsBalance: decision.NewBalance,
			AccountStatus:  decision.NewStatus,
			OccurredAt:     now,
		})

		s.logger.Info(logModule, "Account suspended after grace period", map[string]interface{}{
			"user_email":   account.UserEmail,
			"grace_days":   decision.GraceElapsedDays,
			"suspended_at": account.SuspendedAt,
		})

	case credit.ActionConsume:
		if err := s.consume(ctx, account, decision); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if decision.EnteredGrace {
			graceEndsAt := decision.NewSuspendedAt.Add(credit.GracePeriod)
			outcome.events = append(outcome.events, dto.AccountLifecycleEvent{
				Type:           events.TypeGracePeriodStarted,
				UserEmail:      account.UserEmail,
				CreditsBalance: decision.NewBalance,
				AccountStatus:  decision.NewStatus,
				GraceEndsAt:    &graceEndsAt,
				OccurredAt:     now,
			})

			s.logger.Info(logModule, "Account entered grace period", map[string]interface{}{
				"user_email":    account.UserEmail,
				"grace_ends_at": graceEndsAt.Format(time.RFC3339),
			})
		}
	}

	return outcome, nil
}

// decide builds the policy snapshot. Grace accounts re-read suspended_at so the
// seven days are measured from the stored timestamp.
func (s *creditConsumptionService) decide(ctx context.Context, account *entity.Account, now time.Time) (credit.Decision, error) {
	snapshot := credit.Snapshot{
		CreditsBalance:        account.CreditsBalance,
		WelcomebookCount:      account.WelcomebookCount,
		LastCreditConsumption: account.LastCreditConsumption,
		Status:                string(account.AccountStatus),
		SuspendedAt:           account.SuspendedAt,
	}

	if account.AccountStatus == entity.AccountStatusGracePeriod {
		suspendedAt, err := s.uowFactory.NewUnitOfWork(ctx).AccountRepository().FindSuspendedAt(ctx, account.UserEmail)
		if err != nil {
			return credit.Decision{}, err
		}
		snapshot.SuspendedAt = suspendedAt
	}

	return credit.Decide(snapshot, now)
}

func (s *creditConsumptionService) suspend(ctx context.Context, account *entity.Account) error {
	status := entity.AccountStatusSuspended

	rows, err := s.uowFactory.NewUnitOfWork(ctx).AccountRepository().UpdateByEmail(ctx, account.UserEmail, entity.AccountUpdate{
		AccountStatus: &status,
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("no welcome books updated")
	}
	return nil
}

// consume writes the decrement and its ledger row in one transaction
func (s *creditConsumptionService) consume(ctx context.Context, account *entity.Account, decision credit.Decision) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	newBalance := decision.NewBalance
	newStatus := entity.AccountStatus(decision.NewStatus)
	update := entity.AccountUpdate{
		CreditsBalance:        &newBalance,
		AccountStatus:         &newStatus,
		LastCreditConsumption: decision.ConsumedAt,
	}
	if decision.EnteredGrace {
		update.SuspendedAt = decision.NewSuspendedAt
	}

	rows, err := uow.AccountRepository().UpdateByEmail(ctx, account.UserEmail, update)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("no welcome books updated")
	}

	ledger := &entity.CreditTransaction{
		Id:              uuid.New(),
		UserEmail:       account.UserEmail,
		Amount:          -1,
		BalanceAfter:    decision.NewBalance,
		TransactionType: entity.CreditTransactionSpendDaily,
		Description:     fmt.Sprintf("Daily consumption (%d welcome books)", account.WelcomebookCount),
		Metadata: map[string]interface{}{
			"welcomebook_count": account.WelcomebookCount,
			"previous_balance":  decision.PreviousBalance,
			"interval_hours":    decision.IntervalHours,
		},
		CreatedAt: *decision.ConsumedAt,
	}
	if err := uow.CreditTransactionRepository().Create(ctx, ledger); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *creditConsumptionService) Preview(ctx context.Context, now time.Time) ([]dto.AccountDecision, error) {
	accounts, err := s.uowFactory.NewUnitOfWork(ctx).AccountRepository().FindConsumptionCandidates(ctx)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	result := make([]dto.AccountDecision, 0, len(accounts))
	for _, account := range accounts {
		line := dto.AccountDecision{
			UserEmail:        account.UserEmail,
			WelcomebookCount: account.WelcomebookCount,
			PreviousBalance:  account.CreditsBalance,
			PreviousStatus:   string(account.AccountStatus),
		}

		decision, err := s.decide(ctx, account, now)
		if err != nil {
			line.Action = credit.ActionNone.String()
			line.NewBalance = account.CreditsBalance
			line.NewStatus = string(account.AccountStatus)
			line.Error = err.Error()
		} else {
			line.Action = decision.Action.String()
			line.NewBalance = decision.NewBalance
			line.NewStatus = decision.NewStatus
			line.IntervalHours = decision.IntervalHours
		}
		result = append(result, line)
	}

	return result, nil
}

func (s *creditConsumptionService) LastRun(ctx context.Context) (*dto.ConsumptionRunSummary, error) {
	if summary, ok := s.runCache.Get(ConsumeCreditsJob); ok {
		return summary, nil
	}

	run, err := s.uowFactory.NewUnitOfWork(ctx).CronRunRepository().FindLatest(ctx, ConsumeCreditsJob)
	if err != nil {
		return nil, err
	}
	if run == nil || !run.Success {
		return nil, nil
	}

	summary := &dto.ConsumptionRunSummary{
		Success:                 run.Success,
		UsersProcessed:          run.UsersProcessed,
		CreditsConsumed:         run.CreditsConsumed,
		UsersEnteredGracePeriod: run.UsersEnteredGracePeriod,
		UsersSuspended:          run.UsersSuspended,
		ExecutionTimeMs:         run.ExecutionTimeMs,
		Errors:                  run.Errors,
		StartedAt:               run.StartedAt,
		Trigger:                 string(run.Trigger),
	}
	s.runCache.Save(ConsumeCreditsJob, summary)
	return summary, nil
}

// recordRun stores the run history. A failure here never fails the run.
func (s *creditConsumptionService) recordRun(ctx context.Context, summary *dto.ConsumptionRunSummary) {
	s.runCache.Save(ConsumeCreditsJob, summary)

	run := &entity.CronRun{
		Id:                      uuid.New(),
		JobName:                 ConsumeCreditsJob,
		Trigger:                 entity.CronTrigger(summary.Trigger),
		StartedAt:               summary.StartedAt,
		FinishedAt:              summary.StartedAt.Add(time.Duration(summary.ExecutionTimeMs) * time.Millisecond),
		Success:                 true,
		UsersProcessed:          summary.UsersProcessed,
		CreditsConsumed:         summary.CreditsConsumed,
		UsersEnteredGracePeriod: summary.UsersEnteredGracePeriod,
		UsersSuspended:          summary.UsersSuspended,
		ExecutionTimeMs:         summary.ExecutionTimeMs,
		Errors:                  summary.Errors,
	}
	if err := s.uowFactory.NewUnitOfWork(ctx).CronRunRepository().Create(ctx, run); err != nil {
		s.logger.Warn(logModule, "Failed to record cron run", map[string]interface{}{"error": err.Error()})
	}
}

func (s *creditConsumptionService) recordFailure(ctx context.Context, trigger entity.CronTrigger, now, started time.Time, cause error) {
	elapsed := time.Since(started)
	fatal := cause.Error()

	run := &entity.CronRun{
		Id:              uuid.New(),
		JobName:         ConsumeCreditsJob,
		Trigger:         trigger,
		StartedAt:       now,
		FinishedAt:      now.Add(elapsed),
		Success:         false,
		ExecutionTimeMs: elapsed.Milliseconds(),
		FatalError:      &fatal,
	}
	if err := s.uowFactory.NewUnitOfWork(ctx).CronRunRepository().Create(ctx, run); err != nil {
		s.logger.Warn(logModule, "Failed to record cron run", map[string]interface{}{"error": err.Error()})
	}
}
