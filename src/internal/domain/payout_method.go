package domain

import "context"

// PayoutMethod is a bank or mobile wallet the gateway can pay out to.
type PayoutMethod struct {
	ID   string
	Name string
}

type PayoutMethodRepository interface {
	GetAll(ctx context.Context) ([]PayoutMethod, error)
	GetByID(ctx context.Context, id string) (PayoutMethod, error)
}
