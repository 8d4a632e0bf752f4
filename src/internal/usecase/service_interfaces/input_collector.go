package service_interfaces

import (
	"context"

	"github.com/joker-bingo/payment-bot/src/internal/conversation"
)

// InputCollector gathers validated turns and single selections from a
// conversation. Implementations time out and release their listener on every
// exit path.
type InputCollector interface {
	CollectText(ctx context.Context, chatID int64, prompt string, valid func(string) bool) (string, error)
	SelectOne(ctx context.Context, chatID int64, prompt string, options []conversation.Option) (string, error)
}
