package repo_interfaces

import (
	"context"

	"github.com/joker-bingo/payment-bot/src/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerRepository owns party balances. Settlement operations apply the
// balance movement and the transaction record together in one database
// transaction; a conditional-debit guard keeps balances non-negative under
// concurrent flows.
type LedgerRepository interface {
	CreateParty(ctx context.Context, party domain.Party) (domain.Party, error)
	GetPartyByChatID(ctx context.Context, chatID int64) (domain.Party, error)
	GetPartyByPhoneNumber(ctx context.Context, phoneNumber string) (domain.Party, error)

	// SettleWithdrawal debits record.Amount from the owning party and appends
	// the withdrawal record. Returns the new balance.
	SettleWithdrawal(ctx context.Context, record domain.TransactionRecord) (decimal.Decimal, error)

	// SettleTransfer debits the sender, credits the recipient and appends the
	// transfer record, all in one transaction.
	SettleTransfer(ctx context.Context, record domain.TransactionRecord) error

	// RecordPendingDeposit appends a pending deposit record for a freshly
	// initialized checkout. No balance moves until the gateway confirms.
	RecordPendingDeposit(ctx context.Context, record domain.TransactionRecord) error

	// ConfirmDeposit flips a pending deposit to success and credits the
	// owning party in one transaction. Idempotent per reference: a replayed
	// confirmation returns domain.ErrDuplicateReference without moving the
	// balance twice. Returns the credited chat id.
	ConfirmDeposit(ctx context.Context, reference string, amount decimal.Decimal) (int64, error)
}
