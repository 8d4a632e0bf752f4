package memory

import (
	"context"

	"github.com/joker-bingo/payment-bot/src/internal/domain"
)

type PayoutMethodRepository struct{}

func NewPayoutMethodRepository() *PayoutMethodRepository {
	return &PayoutMethodRepository{}
}

func (r *PayoutMethodRepository) GetAll(_ context.Context) ([]domain.PayoutMethod, error) {
	methods := []domain.PayoutMethod{
		{ID: "855", Name: "Telebirr"},
		{ID: "656", Name: "Awash Bank"},
		{ID: "946", Name: "Commercial Bank of Ethiopia"},
		{ID: "128", Name: "CBE Birr"},
		{ID: "880", Name: "Dashen Bank"},
		{ID: "347", Name: "Bank of Abyssinia"},
	}

	return methods, nil
}

func (r *PayoutMethodRepository) GetByID(ctx context.Context, id string) (domain.PayoutMethod, error) {
	methods, err := r.GetAll(ctx)
	if err != nil {
		return domain.PayoutMethod{}, err
	}

	for _, method := range methods {
		if method.ID == id {
			return method, nil
		}
	}

	return domain.PayoutMethod{}, domain.ErrRecordNotFound
}
