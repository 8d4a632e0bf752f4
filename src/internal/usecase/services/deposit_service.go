package services

import (
	"context"
	"errors"

	"github.com/joker-bingo/payment-bot/src/internal/adapter/repository/repo_interfaces"
	"github.com/joker-bingo/payment-bot/src/internal/conversation"
	"github.com/joker-bingo/payment-bot/src/internal/domain"
	"github.com/joker-bingo/payment-bot/src/internal/logger"
	"github.com/joker-bingo/payment-bot/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

var depositMin = decimal.NewFromInt(10)
var depositMax = decimal.NewFromInt(1000)

// DepositService drives the deposit dialogue: amount collection, checkout
// initialization and handing the hosted payment page to the party. The
// ledger is credited later by the deposit webhook, never here.
type DepositService struct {
	ledgerRepo repo_interfaces.LedgerRepository
	gateway    service_interfaces.PaymentGateway
	collector  service_interfaces.InputCollector
	transport  conversation.Transport
}

func NewDepositService(
	ledgerRepo repo_interfaces.LedgerRepository,
	gateway service_interfaces.PaymentGateway,
	collector service_interfaces.InputCollector,
	transport conversation.Transport,
) *DepositService {
	return &DepositService{
		ledgerRepo: ledgerRepo,
		gateway:    gateway,
		collector:  collector,
		transport:  transport,
	}
}

func (s *DepositService) Run(ctx context.Context, chatID int64) (err error) {
	defer func() { observeFlow("deposit", err) }()

	party, err := s.ledgerRepo.GetPartyByChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			_ = s.transport.SendText(ctx, chatID, "Please register first to make a deposit.")
			return domain.ErrNotRegistered
		}
		_ = s.transport.SendText(ctx, chatID, "An unexpected error occurred. Please try again later.")
		return err
	}

	if !party.HasCompleteProfile() {
		_ = s.transport.SendText(ctx, chatID, "Please set a username and phone number in your Telegram settings and try again.")
		return domain.ErrIncompleteProfile
	}

	amountText, err := s.collector.CollectText(
		ctx,
		chatID,
		"Enter amount to deposit (10 ETB - 1000 ETB):",
		amountBetween(depositMin, depositMax),
	)
	if err != nil {
		if errors.Is(err, conversation.ErrTimeout) {
			_ = s.transport.SendText(ctx, chatID, "Deposit request timed out. Please try again with /deposit.")
		}
		return err
	}
	amount, _ := decimal.NewFromString(amountText)

	checkout, err := s.gateway.InitializeDeposit(ctx, amount, party.Username, party.PhoneNumber)
	if err != nil {
		logger.Error("deposit service initialize failed", err, logger.Fields{
			"chatId": chatID,
			"amount": amount.String(),
		})
		_ = s.transport.SendText(ctx, chatID, "There was an error processing your transaction. Please try again.")
		return err
	}

	pending := domain.TransactionRecord{
		Reference: checkout.Reference,
		ChatID:    chatID,
		Amount:    amount,
		Status:    domain.TransactionStatusPending,
		Kind:      domain.TransactionKindDeposit,
	}
	if err = s.ledgerRepo.RecordPendingDeposit(ctx, pending); err != nil {
		logger.Error("deposit service pending record failed", err, logger.Fields{
			"chatId": chatID,
			"txRef":  checkout.Reference,
		})
		_ = s.transport.SendText(ctx, chatID, "There was an error processing your transaction. Please try again.")
		return err
	}

	logger.Info("deposit service checkout created", logger.Fields{
		"chatId": chatID,
		"txRef":  checkout.Reference,
		"amount": amount.String(),
	})

	if err = s.transport.SendLinkButton(ctx, chatID, "Complete your payment by clicking the button below.", "Pay Now", checkout.CheckoutURL); err != nil {
		return err
	}

	return nil
}

// Confirm settles a deposit reported paid by the payment provider. It is
// called from the webhook handler, outside any conversation.
func (s *DepositService) Confirm(ctx context.Context, reference string, amount decimal.Decimal) error {
	chatID, err := s.ledgerRepo.ConfirmDeposit(ctx, reference, amount)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateReference) {
			logger.Info("deposit service confirmation replayed", logger.Fields{
				"txRef": reference,
			})
			return nil
		}
		logger.Error("deposit service confirmation failed", err, logger.Fields{
			"txRef":  reference,
			"amount": amount.String(),
		})
		return err
	}

	logger.Info("deposit service deposit confirmed", logger.Fields{
		"chatId": chatID,
		"txRef":  reference,
		"amount": amount.String(),
	})

	_ = s.transport.SendText(ctx, chatID, "Your deposit of "+amount.StringFixed(2)+" ETB has been received. 💰")
	return nil
}
