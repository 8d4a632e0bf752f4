package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/joker-bingo/payment-bot/src/internal/adapter/gateway/chapa"
	"github.com/joker-bingo/payment-bot/src/internal/adapter/repository/repo_interfaces"
	"github.com/joker-bingo/payment-bot/src/internal/conversation"
	"github.com/joker-bingo/payment-bot/src/internal/domain"
	"github.com/joker-bingo/payment-bot/src/internal/logger"
	"github.com/joker-bingo/payment-bot/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

var withdrawalMin = decimal.NewFromInt(25)
var withdrawalMax = decimal.NewFromInt(1000)

// WithdrawalService drives the withdrawal dialogue end to end: amount,
// balance check, payout method, destination account, gateway call,
// verification, ledger settlement. The ledger is debited only after the
// gateway verifies the transfer settled; acceptance alone is not enough.
type WithdrawalService struct {
	ledgerRepo repo_interfaces.LedgerRepository
	methodRepo domain.PayoutMethodRepository
	gateway    service_interfaces.PaymentGateway
	collector  service_interfaces.InputCollector
	transport  conversation.Transport
}

func NewWithdrawalService(
	ledgerRepo repo_interfaces.LedgerRepository,
	methodRepo domain.PayoutMethodRepository,
	gateway service_interfaces.PaymentGateway,
	collector service_interfaces.InputCollector,
	transport conversation.Transport,
) *WithdrawalService {
	return &WithdrawalService{
		ledgerRepo: ledgerRepo,
		methodRepo: methodRepo,
		gateway:    gateway,
		collector:  collector,
		transport:  transport,
	}
}

func (s *WithdrawalService) Run(ctx context.Context, chatID int64) (err error) {
	defer func() { observeFlow("withdrawal", err) }()

	party, err := s.ledgerRepo.GetPartyByChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			_ = s.transport.SendText(ctx, chatID, "Please register first to withdraw funds.")
			return domain.ErrNotRegistered
		}
		_ = s.transport.SendText(ctx, chatID, "Error processing withdrawal. Please try again.")
		return err
	}

	amountText, err := s.collector.CollectText(
		ctx,
		chatID,
		"Enter amount to withdraw (25 ETB - 1000 ETB):",
		amountBetween(withdrawalMin, withdrawalMax),
	)
	if err != nil {
		if errors.Is(err, conversation.ErrTimeout) {
			_ = s.transport.SendText(ctx, chatID, "Withdrawal request timed out. Please try again with /withdraw.")
		}
		return err
	}
	amount, _ := decimal.NewFromString(amountText)

	if party.Balance.LessThan(amount) {
		_ = s.transport.SendText(ctx, chatID, "Insufficient balance for this withdrawal.")
		return domain.ErrInsufficientBalance
	}

	method, err := s.selectPayoutMethod(ctx, chatID)
	if err != nil {
		return err
	}

	walletNumber, err := s.collector.CollectText(
		ctx,
		chatID,
		fmt.Sprintf("Enter your %s wallet number:", method.Name),
		walletNumberPattern.MatchString,
	)
	if err != nil {
		if errors.Is(err, conversation.ErrTimeout) {
			_ = s.transport.SendText(ctx, chatID, "Withdrawal request timed out. Please try again with /withdraw.")
		}
		return err
	}

	accountName, err := s.collector.CollectText(
		ctx,
		chatID,
		"Enter the account holder's full name:",
		isValidAccountName,
	)
	if err != nil {
		if errors.Is(err, conversation.ErrTimeout) {
			_ = s.transport.SendText(ctx, chatID, "Withdrawal request timed out. Please try again with /withdraw.")
		}
		return err
	}

	accepted, err := s.gateway.InitiateWithdrawal(ctx, amount, accountName, walletNumber, method.ID)
	if err != nil {
		logger.Error("withdrawal service initiate failed", err, logger.Fields{
			"chatId": chatID,
			"amount": amount.String(),
		})
		_ = s.transport.SendText(ctx, chatID, withdrawalErrorMessage(err))
		return err
	}

	verification, err := s.gateway.AwaitSettlement(ctx, accepted.Reference)
	if err != nil {
		logger.Error("withdrawal service verification failed", err, logger.Fields{
			"chatId":    chatID,
			"reference": accepted.Reference,
		})
		_ = s.transport.SendText(ctx, chatID, "❌ We could not confirm your withdrawal. Please contact support with reference "+accepted.Reference+".")
		return err
	}

	if !verification.Settled() {
		logger.Info("withdrawal service not settled", logger.Fields{
			"chatId":    chatID,
			"reference": accepted.Reference,
			"status":    verification.Status,
		})
		_ = s.transport.SendText(ctx, chatID, "❌ Your withdrawal was not completed by the payment provider. Your balance is untouched.")
		return fmt.Errorf("withdrawal %s not settled: status %s", accepted.Reference, verification.Status)
	}

	methodID := method.ID
	methodName := method.Name
	if verification.BankName != "" {
		methodName = verification.BankName
	}

	record := domain.TransactionRecord{
		Reference:     accepted.Reference,
		ChatID:        chatID,
		Amount:        amount,
		Status:        domain.TransactionStatusSuccess,
		Kind:          domain.TransactionKindWithdrawal,
		MethodID:      &methodID,
		MethodName:    &methodName,
		AccountNumber: &walletNumber,
	}

	newBalance, err := s.ledgerRepo.SettleWithdrawal(ctx, record)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			// A concurrent flow drained the balance between check and settle.
			// The gateway has already paid out: escalate, never retry blindly.
			logger.Alert("withdrawal settled at gateway but ledger debit failed", err, logger.Fields{
				"chatId":    chatID,
				"reference": accepted.Reference,
				"amount":    amount.String(),
			})
			_ = s.transport.SendText(ctx, chatID, "❌ Error processing withdrawal. Please contact support.")
			return fmt.Errorf("%w: %v", domain.ErrLedgerWrite, err)
		}

		logger.Alert("withdrawal ledger write failed after gateway settlement", err, logger.Fields{
			"chatId":    chatID,
			"reference": accepted.Reference,
			"amount":    amount.String(),
		})
		_ = s.transport.SendText(ctx, chatID, "❌ Error processing withdrawal. Please contact support.")
		return fmt.Errorf("%w: %v", domain.ErrLedgerWrite, err)
	}

	_ = s.transport.SendText(ctx, chatID, fmt.Sprintf("✅ Withdrawal of %s ETB successful!\nNew balance: %s ETB", amount.String(), newBalance.String()))

	return nil
}

func (s *WithdrawalService) selectPayoutMethod(ctx context.Context, chatID int64) (domain.PayoutMethod, error) {
	methods, err := s.methodRepo.GetAll(ctx)
	if err != nil {
		_ = s.transport.SendText(ctx, chatID, "Error processing withdrawal. Please try again.")
		return domain.PayoutMethod{}, err
	}

	options := make([]conversation.Option, 0, len(methods))
	for _, method := range methods {
		options = append(options, conversation.Option{ID: method.ID, Label: method.Name})
	}

	methodID, err := s.collector.SelectOne(ctx, chatID, "Select your wallet type:", options)
	if err != nil {
		if errors.Is(err, conversation.ErrTimeout) {
			_ = s.transport.SendText(ctx, chatID, "Withdrawal request timed out. Please try again with /withdraw.")
		}
		return domain.PayoutMethod{}, err
	}

	method, err := s.methodRepo.GetByID(ctx, methodID)
	if err != nil {
		_ = s.transport.SendText(ctx, chatID, "Error processing withdrawal. Please try again.")
		return domain.PayoutMethod{}, err
	}

	return method, nil
}

func withdrawalErrorMessage(err error) string {
	var gatewayErr *chapa.GatewayError
	if errors.As(err, &gatewayErr) {
		if gatewayErr.Reason == "Insufficient Balance" {
			// The merchant float at the gateway is empty, not the party's wallet.
			return "❌ Sorry, this service is temporarily unavailable. Please try again later or contact support."
		}
		if gatewayErr.Cause == nil {
			return "❌ " + gatewayErr.Reason
		}
	}
	return "❌ There was an error processing your withdrawal. Please try again."
}
