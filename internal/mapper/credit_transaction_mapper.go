package mapper

import (
	"encoding/json"

	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/model"

	"gorm.io/datatypes"
)

type CreditTransactionMapper struct{}

func NewCreditTransactionMapper() *CreditTransactionMapper {
	return &CreditTransactionMapper{}
}

func (m *CreditTransactionMapper) ToModel(t *entity.CreditTransaction) (*model.CreditTransaction, error) {
	if t == nil {
		return nil, nil
	}

	var metadata datatypes.JSON
	if t.Metadata != nil {
		raw, err := json.Marshal(t.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = datatypes.JSON(raw)
	}

	return &model.CreditTransaction{
		Id:              t.Id,
		UserEmail:       t.UserEmail,
		Amount:          t.Amount,
		BalanceAfter:    t.BalanceAfter,
		TransactionType: string(t.TransactionType),
		Description:     t.Description,
		Metadata:        metadata,
		CreatedAt:       t.CreatedAt,
	}, nil
}

func (m *CreditTransactionMapper) ToEntity(t *model.CreditTransaction) *entity.CreditTransaction {
	if t == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(t.Metadata) > 0 {
		// Unreadable metadata is left empty; the row itself is still valid ledger history
		_ = json.Unmarshal(t.Metadata, &metadata)
	}

	return &entity.CreditTransaction{
		Id:              t.Id,
		UserEmail:       t.UserEmail,
		Amount:          t.Amount,
		BalanceAfter:    t.BalanceAfter,
		TransactionType: entity.CreditTransactionType(t.TransactionType),
		Description:     t.Description,
		Metadata:        metadata,
		CreatedAt:       t.CreatedAt,
	}
}

func (m *CreditTransactionMapper) ToEntities(ts []*model.CreditTransaction) []*entity.CreditTransaction {
	result := make([]*entity.CreditTransaction, 0, len(ts))
	for _, t := range ts {
		result = append(result, m.ToEntity(t))
	}
	return result
}
