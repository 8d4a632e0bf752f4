package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/joker-bingo/payment-bot/src/internal/adapter/repository/repo_interfaces"
	"github.com/joker-bingo/payment-bot/src/internal/conversation"
	"github.com/joker-bingo/payment-bot/src/internal/domain"
	"github.com/joker-bingo/payment-bot/src/internal/logger"
	"github.com/joker-bingo/payment-bot/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

var transferMin = decimal.NewFromInt(10)
var transferMax = decimal.NewFromInt(10000)

// TransferService moves balance between two registered parties. Settlement
// is one ledger transaction: debit, credit and record land together or not
// at all.
type TransferService struct {
	ledgerRepo repo_interfaces.LedgerRepository
	collector  service_interfaces.InputCollector
	transport  conversation.Transport
}

func NewTransferService(
	ledgerRepo repo_interfaces.LedgerRepository,
	collector service_interfaces.InputCollector,
	transport conversation.Transport,
) *TransferService {
	return &TransferService{
		ledgerRepo: ledgerRepo,
		collector:  collector,
		transport:  transport,
	}
}

func (s *TransferService) Run(ctx context.Context, chatID int64) (err error) {
	defer func() { observeFlow("transfer", err) }()

	sender, err := s.ledgerRepo.GetPartyByChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			_ = s.transport.SendText(ctx, chatID, "Please register first to transfer funds.")
			return domain.ErrNotRegistered
		}
		_ = s.transport.SendText(ctx, chatID, "Error processing transfer. Please try again. /transfer")
		return err
	}

	amountText, err := s.collector.CollectText(
		ctx,
		chatID,
		"Enter amount to transfer (10 ETB - 10000 ETB):",
		amountBetween(transferMin, transferMax),
	)
	if err != nil {
		if errors.Is(err, conversation.ErrTimeout) {
			_ = s.transport.SendText(ctx, chatID, "Transfer request timed out. Please try again with /transfer.")
		}
		return err
	}
	amount, _ := decimal.NewFromString(amountText)

	if sender.Balance.LessThan(amount) {
		_ = s.transport.SendText(ctx, chatID, "Insufficient balance for this transfer.")
		return domain.ErrInsufficientBalance
	}

	recipientPhone, err := s.collector.CollectText(
		ctx,
		chatID,
		"Enter recipient's phone number (format: 09xxxxxxxx):",
		recipientPhonePattern.MatchString,
	)
	if err != nil {
		if errors.Is(err, conversation.ErrTimeout) {
			_ = s.transport.SendText(ctx, chatID, "Transfer request timed out. Please try again with /transfer.")
		}
		return err
	}

	recipient, err := s.ledgerRepo.GetPartyByPhoneNumber(ctx, recipientPhone)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			_ = s.transport.SendText(ctx, chatID, "Recipient not found. Please check the phone number and try again.")
			return domain.ErrRecipientNotFound
		}
		_ = s.transport.SendText(ctx, chatID, "Error processing transfer. Please try again. /transfer")
		return err
	}

	if recipient.ChatID == chatID {
		_ = s.transport.SendText(ctx, chatID, "You cannot transfer to yourself.")
		return domain.ErrSelfTransfer
	}

	reference := newTransferReference()
	recipientChatID := recipient.ChatID
	record := domain.TransactionRecord{
		Reference:       reference,
		ChatID:          chatID,
		RecipientChatID: &recipientChatID,
		Amount:          amount,
		Status:          domain.TransactionStatusCompleted,
		Kind:            domain.TransactionKindTransfer,
	}

	if err = s.ledgerRepo.SettleTransfer(ctx, record); err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			_ = s.transport.SendText(ctx, chatID, "Insufficient balance for this transfer.")
			return err
		}
		logger.Error("transfer service settlement failed", err, logger.Fields{
			"chatId":          chatID,
			"recipientChatId": recipientChatID,
			"reference":       reference,
		})
		_ = s.transport.SendText(ctx, chatID, "Error processing transfer. Please try again. /transfer")
		return err
	}

	_ = s.transport.SendText(ctx, chatID, fmt.Sprintf(
		"Transfer successful!\nAmount: %s ETB\nTo: %s\nTransaction ID: %s",
		amount.String(), recipientPhone, reference,
	))
	_ = s.transport.SendText(ctx, recipient.ChatID, fmt.Sprintf(
		"You received %s ETB from %s\nTransaction ID: %s",
		amount.String(), sender.PhoneNumber, reference,
	))

	return nil
}

func newTransferReference() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("transfer reference: read random bytes: %v", err))
	}
	return "TR" + strconv.FormatInt(time.Now().UnixMilli(), 10) + hex.EncodeToString(buf)
}
