package services_test

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/joker-bingo/payment-bot/src/internal/conversation"
	"github.com/joker-bingo/payment-bot/src/internal/domain"
)

type ledgerRepoStub struct {
	createPartyFn           func(ctx context.Context, party domain.Party) (domain.Party, error)
	getPartyByChatIDFn      func(ctx context.Context, chatID int64) (domain.Party, error)
	getPartyByPhoneNumberFn func(ctx context.Context, phoneNumber string) (domain.Party, error)
	settleWithdrawalFn      func(ctx context.Context, record domain.TransactionRecord) (decimal.Decimal, error)
	settleTransferFn        func(ctx context.Context, record domain.TransactionRecord) error
	recordPendingDepositFn  func(ctx context.Context, record domain.TransactionRecord) error
	confirmDepositFn        func(ctx context.Context, reference string, amount decimal.Decimal) (int64, error)
}

func (s *ledgerRepoStub) CreateParty(ctx context.Context, party domain.Party) (domain.Party, error) {
	return s.createPartyFn(ctx, party)
}

func (s *ledgerRepoStub) GetPartyByChatID(ctx context.Context, chatID int64) (domain.Party, error) {
	return s.getPartyByChatIDFn(ctx, chatID)
}

func (s *ledgerRepoStub) GetPartyByPhoneNumber(ctx context.Context, phoneNumber string) (domain.Party, error) {
	return s.getPartyByPhoneNumberFn(ctx, phoneNumber)
}

func (s *ledgerRepoStub) SettleWithdrawal(ctx context.Context, record domain.TransactionRecord) (decimal.Decimal, error) {
	return s.settleWithdrawalFn(ctx, record)
}

func (s *ledgerRepoStub) SettleTransfer(ctx context.Context, record domain.TransactionRecord) error {
	return s.settleTransferFn(ctx, record)
}

func (s *ledgerRepoStub) RecordPendingDeposit(ctx context.Context, record domain.TransactionRecord) error {
	return s.recordPendingDepositFn(ctx, record)
}

func (s *ledgerRepoStub) ConfirmDeposit(ctx context.Context, reference string, amount decimal.Decimal) (int64, error) {
	return s.confirmDepositFn(ctx, reference, amount)
}

type txRepoStub struct {
	getByReferenceFn func(ctx context.Context, reference string) (domain.TransactionRecord, error)
	listByChatIDFn   func(ctx context.Context, chatID int64, limit int) ([]domain.TransactionRecord, error)
	updateStatusFn   func(ctx context.Context, reference string, status domain.TransactionStatus) error
}

func (s *txRepoStub) GetByReference(ctx context.Context, reference string) (domain.TransactionRecord, error) {
	return s.getByReferenceFn(ctx, reference)
}

func (s *txRepoStub) ListByChatID(ctx context.Context, chatID int64, limit int) ([]domain.TransactionRecord, error) {
	return s.listByChatIDFn(ctx, chatID, limit)
}

func (s *txRepoStub) UpdateStatus(ctx context.Context, reference string, status domain.TransactionStatus) error {
	return s.updateStatusFn(ctx, reference, status)
}

type methodRepoStub struct {
	getAllFn  func(ctx context.Context) ([]domain.PayoutMethod, error)
	getByIDFn func(ctx context.Context, id string) (domain.PayoutMethod, error)
}

func (s *methodRepoStub) GetAll(ctx context.Context) ([]domain.PayoutMethod, error) {
	return s.getAllFn(ctx)
}

func (s *methodRepoStub) GetByID(ctx context.Context, id string) (domain.PayoutMethod, error) {
	return s.getByIDFn(ctx, id)
}

type gatewayStub struct {
	initializeDepositFn  func(ctx context.Context, amount decimal.Decimal, payerName, payerPhone string) (domain.Checkout, error)
	initiateWithdrawalFn func(ctx context.Context, amount decimal.Decimal, accountName, accountNumber, methodID string) (domain.WithdrawalAccepted, error)
	verifyWithdrawalFn   func(ctx context.Context, reference string) (domain.WithdrawalVerification, error)
	awaitSettlementFn    func(ctx context.Context, reference string) (domain.WithdrawalVerification, error)
}

func (s *gatewayStub) InitializeDeposit(ctx context.Context, amount decimal.Decimal, payerName, payerPhone string) (domain.Checkout, error) {
	return s.initializeDepositFn(ctx, amount, payerName, payerPhone)
}

func (s *gatewayStub) InitiateWithdrawal(ctx context.Context, amount decimal.Decimal, accountName, accountNumber, methodID string) (domain.WithdrawalAccepted, error) {
	return s.initiateWithdrawalFn(ctx, amount, accountName, accountNumber, methodID)
}

func (s *gatewayStub) VerifyWithdrawal(ctx context.Context, reference string) (domain.WithdrawalVerification, error) {
	return s.verifyWithdrawalFn(ctx, reference)
}

func (s *gatewayStub) AwaitSettlement(ctx context.Context, reference string) (domain.WithdrawalVerification, error) {
	return s.awaitSettlementFn(ctx, reference)
}

// collectorStub answers collection calls from a scripted queue, in order.
type collectorStub struct {
	answers    []string
	selections []string

	collectErr error
	selectErr  error
}

func (s *collectorStub) CollectText(ctx context.Context, chatID int64, prompt string, valid func(string) bool) (string, error) {
	if s.collectErr != nil {
		return "", s.collectErr
	}
	if len(s.answers) == 0 {
		return "", conversation.ErrTimeout
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

func (s *collectorStub) SelectOne(ctx context.Context, chatID int64, prompt string, options []conversation.Option) (string, error) {
	if s.selectErr != nil {
		return "", s.selectErr
	}
	if len(s.selections) == 0 {
		return "", conversation.ErrTimeout
	}
	selection := s.selections[0]
	s.selections = s.selections[1:]
	return selection, nil
}

type sentMessage struct {
	chatID int64
	text   string
}

type transportStub struct {
	messages []sentMessage
	links    []string
}

func (s *transportStub) SendText(ctx context.Context, chatID int64, text string) error {
	s.messages = append(s.messages, sentMessage{chatID: chatID, text: text})
	return nil
}

func (s *transportStub) SendButtons(ctx context.Context, chatID int64, text string, buttons [][]conversation.Button) (int, error) {
	s.messages = append(s.messages, sentMessage{chatID: chatID, text: text})
	return 1, nil
}

func (s *transportStub) SendLinkButton(ctx context.Context, chatID int64, text, label, url string) error {
	s.messages = append(s.messages, sentMessage{chatID: chatID, text: text})
	s.links = append(s.links, url)
	return nil
}

func (s *transportStub) SendPhoto(ctx context.Context, chatID int64, path, caption string, buttons [][]conversation.Button) error {
	s.messages = append(s.messages, sentMessage{chatID: chatID, text: caption})
	return nil
}

func (s *transportStub) AcknowledgeSelection(ctx context.Context, callbackID string) error {
	return nil
}

func (s *transportStub) ClearButtons(ctx context.Context, chatID int64, messageID int) error {
	return nil
}

func (s *transportStub) lastMessageFor(chatID int64) string {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].chatID == chatID {
			return s.messages[i].text
		}
	}
	return ""
}
