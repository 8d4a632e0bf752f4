package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joker-bingo/payment-bot/src/internal/adapter/repository/repo_interfaces"
	"github.com/joker-bingo/payment-bot/src/internal/conversation"
	"github.com/joker-bingo/payment-bot/src/internal/domain"
	"github.com/joker-bingo/payment-bot/src/internal/logger"
	"github.com/joker-bingo/payment-bot/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

const historyLimit = 10

// AccountService covers the non-money conversations: registration, balance
// lookup and transaction history.
type AccountService struct {
	ledgerRepo repo_interfaces.LedgerRepository
	txRepo     repo_interfaces.TransactionRepository
	collector  service_interfaces.InputCollector
	transport  conversation.Transport
}

func NewAccountService(
	ledgerRepo repo_interfaces.LedgerRepository,
	txRepo repo_interfaces.TransactionRepository,
	collector service_interfaces.InputCollector,
	transport conversation.Transport,
) *AccountService {
	return &AccountService{
		ledgerRepo: ledgerRepo,
		txRepo:     txRepo,
		collector:  collector,
		transport:  transport,
	}
}

func (s *AccountService) Register(ctx context.Context, chatID int64, username string) error {
	if _, err := s.ledgerRepo.GetPartyByChatID(ctx, chatID); err == nil {
		_ = s.transport.SendText(ctx, chatID, "You are already registered! Use /deposit to top up your balance.")
		return domain.ErrAlreadyRegistered
	} else if !errors.Is(err, domain.ErrRecordNotFound) {
		_ = s.transport.SendText(ctx, chatID, "There was an error processing your registration. Please try again.")
		return err
	}

	if strings.TrimSpace(username) == "" {
		_ = s.transport.SendText(ctx, chatID, "Username is required. Please set a username in your Telegram settings and try again.")
		return domain.ErrIncompleteProfile
	}

	phoneNumber, err := s.collector.CollectText(
		ctx,
		chatID,
		"Please enter your phone number (10 digits, starting with '09'):",
		recipientPhonePattern.MatchString,
	)
	if err != nil {
		if errors.Is(err, conversation.ErrTimeout) {
			_ = s.transport.SendText(ctx, chatID, "Registration timed out. Please try again with /register.")
		}
		return err
	}

	party := domain.Party{
		ChatID:      chatID,
		Username:    strings.TrimSpace(username),
		PhoneNumber: phoneNumber,
		Balance:     decimal.Zero,
	}

	if _, err := s.ledgerRepo.CreateParty(ctx, party); err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			_ = s.transport.SendText(ctx, chatID, "This phone number is already registered.")
			return err
		}
		logger.Error("account service registration failed", err, logger.Fields{
			"chatId": chatID,
		})
		_ = s.transport.SendText(ctx, chatID, "There was an error processing your registration. Please try again.")
		return err
	}

	_ = s.transport.SendText(ctx, chatID, "You are now registered! Use /deposit to top up your balance.")
	return nil
}

func (s *AccountService) ReportBalance(ctx context.Context, chatID int64) error {
	party, err := s.ledgerRepo.GetPartyByChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			_ = s.transport.SendText(ctx, chatID, "User not found. Please register first.")
			return domain.ErrNotRegistered
		}
		_ = s.transport.SendText(ctx, chatID, "Error checking balance. Please try again.")
		return err
	}

	_ = s.transport.SendText(ctx, chatID, fmt.Sprintf("Your current balance is: 💰 %s ETB", party.Balance.String()))
	return nil
}

func (s *AccountService) ShowHistory(ctx context.Context, chatID int64) error {
	if _, err := s.ledgerRepo.GetPartyByChatID(ctx, chatID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			_ = s.transport.SendText(ctx, chatID, "User not found. Please register first.")
			return domain.ErrNotRegistered
		}
		_ = s.transport.SendText(ctx, chatID, "Error fetching history. Please try again.")
		return err
	}

	records, err := s.txRepo.ListByChatID(ctx, chatID, historyLimit)
	if err != nil {
		_ = s.transport.SendText(ctx, chatID, "Error fetching history. Please try again.")
		return err
	}

	if len(records) == 0 {
		_ = s.transport.SendText(ctx, chatID, "No transactions yet. Use /deposit to get started.")
		return nil
	}

	var sb strings.Builder
	sb.WriteString("📜 Your recent transactions:\n")
	for _, record := range records {
		direction := string(record.Kind)
		if record.Kind == domain.TransactionKindTransfer && record.RecipientChatID != nil && *record.RecipientChatID == chatID {
			direction = "transfer received"
		}
		sb.WriteString(fmt.Sprintf("\n%s: %s ETB (%s)\nRef: %s\n",
			direction, record.Amount.String(), record.Status, record.Reference))
	}

	_ = s.transport.SendText(ctx, chatID, sb.String())
	return nil
}
