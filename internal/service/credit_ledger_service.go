// FILE: internal/service/credit_ledger_service.go
package service

import (
	"context"
	"strings"

	"welcomeapp-be/internal/dto"
	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/repository/specification"
	"welcomeapp-be/internal/repository/unitofwork"
	"welcomeapp-be/pkg/credit"
)

type ICreditLedgerService interface {
	GetAccount(ctx context.Context, email string) (*dto.AccountResponse, error)
	ListTransactions(ctx context.Context, query dto.ListTransactionsQuery) (*dto.PaginatedResponse[dto.CreditTransactionResponse], error)
	ListRuns(ctx context.Context, page, limit int) (*dto.PaginatedResponse[dto.CronRunResponse], error)
	GetStatusCounts(ctx context.Context) (*dto.AccountStatusCounts, error)
}

type creditLedgerService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewCreditLedgerService(uowFactory unitofwork.RepositoryFactory) ICreditLedgerService {
	return &creditLedgerService{
		uowFactory: uowFactory,
	}
}

func (s *creditLedgerService) GetAccount(ctx context.Context, email string) (*dto.AccountResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	account, err := uow.AccountRepository().FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	res := &dto.AccountResponse{
		UserEmail:             account.UserEmail,
		CreditsBalance:        account.CreditsBalance,
		WelcomebookCount:      account.WelcomebookCount,
		LastCreditConsumption: account.LastCreditConsumption,
		AccountStatus:         string(account.AccountStatus),
		SuspendedAt:           account.SuspendedAt,
		ConsumptionInterval:   credit.ConsumptionIntervalHours(account.WelcomebookCount),
	}

	switch account.AccountStatus {
	case entity.AccountStatusActive:
		if account.CreditsBalance > 0 {
			next := account.LastCreditConsumption.Add(credit.ConsumptionInterval(account.WelcomebookCount))
			res.NextConsumptionAt = &next
		}
	case entity.AccountStatusGracePeriod:
		if account.SuspendedAt != nil {
			ends := account.SuspendedAt.Add(credit.GracePeriod)
			res.GracePeriodEndsAt = &ends
		}
	}

	return res, nil
}

func (s *creditLedgerService) ListTransactions(ctx context.Context, query dto.ListTransactionsQuery) (*dto.PaginatedResponse[dto.CreditTransactionResponse], error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	filters := []specification.Specification{
		specification.ByUserEmail{Email: strings.ToLower(strings.TrimSpace(query.Email))},
	}
	if query.Type != "" {
		filters = append(filters, specification.ByTransactionType{Type: entity.CreditTransactionType(query.Type)})
	}

	total, err := uow.CreditTransactionRepository().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	specs := append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Page: query.Page, Limit: query.Limit},
	)
	rows, err := uow.CreditTransactionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CreditTransactionResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.CreditTransactionResponse{
			Id:              row.Id,
			UserEmail:       row.UserEmail,
			Amount:          row.Amount,
			BalanceAfter:    row.BalanceAfter,
			TransactionType: string(row.TransactionType),
			Description:     row.Description,
			Metadata:        row.Metadata,
			CreatedAt:       row.CreatedAt,
		})
	}

	return &dto.PaginatedResponse[dto.CreditTransactionResponse]{
		Items: items,
		Page:  query.Page,
		Limit: query.Limit,
		Total: total,
	}, nil
}

func (s *creditLedgerService) ListRuns(ctx context.Context, page, limit int) (*dto.PaginatedResponse[dto.CronRunResponse], error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	byJob := specification.ByJobName{Name: ConsumeCreditsJob}
	total, err := uow.CronRunRepository().Count(ctx, byJob)
	if err != nil {
		return nil, err
	}

	runs, err := uow.CronRunRepository().FindAll(ctx,
		byJob,
		specification.OrderBy{Field: "started_at", Desc: true},
		specification.Pagination{Page: page, Limit: limit},
	)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CronRunResponse, 0, len(runs))
	for _, run := range runs {
		items = append(items, dto.CronRunResponse{
			Id:                      run.Id,
			JobName:                 run.JobName,
			Trigger:                 string(run.Trigger),
			StartedAt:               run.StartedAt,
			FinishedAt:              run.FinishedAt,
			Success:                 run.Success,
			UsersProcessed:          run.UsersProcessed,
			CreditsConsumed:         run.CreditsConsumed,
			UsersEnteredGracePeriod: run.UsersEnteredGracePeriod,
			UsersSuspended:          run.UsersSuspended,
			ExecutionTimeMs:         run.ExecutionTimeMs,
			Errors:                  run.Errors,
			FatalError:              run.FatalError,
		})
	}

	return &dto.PaginatedResponse[dto.CronRunResponse]{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	}, nil
}

func (s *creditLedgerService) GetStatusCounts(ctx context.Context) (*dto.AccountStatusCounts, error) {
	repo := s.uowFactory.NewUnitOfWork(ctx).AccountRepository()

	res := &dto.AccountStatusCounts{}
	targets := []struct {
		status entity.AccountStatus
		dst    *int64
	}{
		{entity.AccountStatusActive, &res.Active},
		{entity.AccountStatusGracePeriod, &res.GracePeriod},
		{entity.AccountStatusSuspended, &res.Suspended},
		{entity.AccountStatusToDelete, &res.ToDelete},
	}
	for _, t := range targets {
		n, err := repo.CountByStatus(ctx, t.status)
		if err != nil {
			return nil, err
		}
		*t.dst = n
	}
	return res, nil
}
