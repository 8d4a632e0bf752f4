package service_interfaces

import (
	"context"

	"github.com/joker-bingo/payment-bot/src/internal/domain"
	"github.com/shopspring/decimal"
)

type PaymentGateway interface {
	InitializeDeposit(ctx context.Context, amount decimal.Decimal, payerName, payerPhone string) (domain.Checkout, error)
	InitiateWithdrawal(ctx context.Context, amount decimal.Decimal, accountName, accountNumber, methodID string) (domain.WithdrawalAccepted, error)
	VerifyWithdrawal(ctx context.Context, reference string) (domain.WithdrawalVerification, error)

	// AwaitSettlement applies the gateway's settling delay, then verifies.
	AwaitSettlement(ctx context.Context, reference string) (domain.WithdrawalVerification, error)
}
