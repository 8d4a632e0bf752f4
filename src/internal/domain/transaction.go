package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusSuccess   TransactionStatus = "success"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCompleted TransactionStatus = "completed"
)

type TransactionKind string

const (
	TransactionKindDeposit    TransactionKind = "deposit"
	TransactionKindWithdrawal TransactionKind = "withdrawal"
	TransactionKindTransfer   TransactionKind = "transfer"
)

// TransactionRecord is the immutable trail of one money movement. Every
// settled movement has exactly one record; a withdrawal record's status is
// written from the gateway's verified settlement state.
type TransactionRecord struct {
	ID              string
	Reference       string
	ChatID          int64
	RecipientChatID *int64
	Amount          decimal.Decimal
	Status          TransactionStatus
	Kind            TransactionKind
	MethodID        *string
	MethodName      *string
	AccountNumber   *string
	CreatedAt       time.Time
}
