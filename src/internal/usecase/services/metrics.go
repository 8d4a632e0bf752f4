package services

import (
	"context"
	"errors"

	"github.com/joker-bingo/payment-bot/src/internal/adapter/gateway/chapa"
	"github.com/joker-bingo/payment-bot/src/internal/conversation"
	"github.com/joker-bingo/payment-bot/src/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var flowOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "payment_bot_flow_outcomes_total",
	Help: "Conversation flow results by flow and outcome",
}, []string{"flow", "outcome"})

func observeFlow(flow string, err error) {
	flowOutcomes.WithLabelValues(flow, outcomeLabel(err)).Inc()
}

func outcomeLabel(err error) string {
	var gatewayErr *chapa.GatewayError

	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, conversation.ErrTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrLedgerWrite):
		return "ledger_write_failed"
	case errors.Is(err, domain.ErrNotRegistered), errors.Is(err, domain.ErrIncompleteProfile):
		return "precondition_failed"
	case errors.Is(err, domain.ErrRecipientNotFound), errors.Is(err, domain.ErrSelfTransfer):
		return "rejected"
	case errors.As(err, &gatewayErr):
		return "gateway_error"
	default:
		return "error"
	}
}
