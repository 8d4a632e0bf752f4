package repo_interfaces

import (
	"context"

	"github.com/joker-bingo/payment-bot/src/internal/domain"
)

type TransactionRepository interface {
	GetByReference(ctx context.Context, reference string) (domain.TransactionRecord, error)
	ListByChatID(ctx context.Context, chatID int64, limit int) ([]domain.TransactionRecord, error)
	UpdateStatus(ctx context.Context, reference string, status domain.TransactionStatus) error
}
