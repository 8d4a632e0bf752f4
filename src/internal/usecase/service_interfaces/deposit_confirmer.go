package service_interfaces

import (
	"context"

	"github.com/shopspring/decimal"
)

// DepositConfirmer settles deposits reported paid by the payment provider.
type DepositConfirmer interface {
	Confirm(ctx context.Context, reference string, amount decimal.Decimal) error
}
