package mapper

import (
	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/model"
)

type AccountMapper struct{}

func NewAccountMapper() *AccountMapper {
	return &AccountMapper{}
}

func (m *AccountMapper) WelcomeBookToEntity(b *model.WelcomeBook) *entity.WelcomeBook {
	if b == nil {
		return nil
	}
	return &entity.WelcomeBook{
		Id:                    b.Id,
		UserEmail:             b.UserEmail,
		Name:                  b.Name,
		Slug:                  b.Slug,
		CreditsBalance:        b.CreditsBalance,
		LastCreditConsumption: b.LastCreditConsumption,
		AccountStatus:         entity.AccountStatus(b.AccountStatus),
		SuspendedAt:           b.SuspendedAt,
		CreatedAt:             b.CreatedAt,
		UpdatedAt:             b.UpdatedAt,
	}
}

func (m *AccountMapper) WelcomeBookToModel(b *entity.WelcomeBook) *model.WelcomeBook {
	if b == nil {
		return nil
	}
	return &model.WelcomeBook{
		Id:                    b.Id,
		UserEmail:             b.UserEmail,
		Name:                  b.Name,
		Slug:                  b.Slug,
		CreditsBalance:        b.CreditsBalance,
		LastCreditConsumption: b.LastCreditConsumption,
		AccountStatus:         string(b.AccountStatus),
		SuspendedAt:           b.SuspendedAt,
		CreatedAt:             b.CreatedAt,
		UpdatedAt:             b.UpdatedAt,
	}
}

// GroupByEmail folds welcome book rows into one account per owner email,
// keeping the order in which each email was first seen.
//
// Billing fields are the same on every row of an email. If rows drifted anyway,
// the lowest balance and the most recent consumption win so a run never
// over-credits an account.
func (m *AccountMapper) GroupByEmail(rows []*model.WelcomeBook) []*entity.Account {
	accounts := make([]*entity.Account, 0, len(rows))
	index := make(map[string]*entity.Account, len(rows))

	for _, row := range rows {
		if row == nil {
			continue
		}

		acc, ok := index[row.UserEmail]
		if !ok {
			acc = &entity.Account{
				UserEmail:             row.UserEmail,
				CreditsBalance:        row.CreditsBalance,
				LastCreditConsumption: row.LastCreditConsumption,
				AccountStatus:         entity.AccountStatus(row.AccountStatus),
				SuspendedAt:           row.SuspendedAt,
			}
			index[row.UserEmail] = acc
			accounts = append(accounts, acc)
		}

		acc.WelcomebookCount++
		if row.CreditsBalance < acc.CreditsBalance {
			acc.CreditsBalance = row.CreditsBalance
		}
		if row.LastCreditConsumption.After(acc.LastCreditConsumption) {
			acc.LastCreditConsumption = row.LastCreditConsumption
		}
	}

	return accounts
}

// ApplyBookCounts overwrites WelcomebookCount with counts taken over every live
// row of the email, not only the rows that matched a filter.
func (m *AccountMapper) ApplyBookCounts(accounts []*entity.Account, counts map[string]int) {
	for _, acc := range accounts {
		if n, ok := counts[acc.UserEmail]; ok && n > 0 {
			acc.WelcomebookCount = n
		}
	}
}

// UpdateToColumns converts a partial account update into a gorm column map
func (m *AccountMapper) UpdateToColumns(u entity.AccountUpdate) map[string]interface{} {
	cols := make(map[string]interface{})
	if u.CreditsBalance != nil {
		cols["credits_balance"] = *u.CreditsBalance
	}
	if u.AccountStatus != nil {
		cols["account_status"] = string(*u.AccountStatus)
	}
	if u.SuspendedAt != nil {
		cols["suspended_at"] = *u.SuspendedAt
	}
	if u.LastCreditConsumption != nil {
		cols["last_credit_consumption"] = *u.LastCreditConsumption
	}
	return cols
}
