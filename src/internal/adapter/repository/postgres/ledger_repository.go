package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/joker-bingo/payment-bot/src/internal/domain"
	"github.com/joker-bingo/payment-bot/src/internal/logger"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) CreateParty(ctx context.Context, party domain.Party) (domain.Party, error) {
	const query = `
INSERT INTO parties (chat_id, username, phone_number, balance)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at`

	var (
		id        string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := r.db.QueryRowContext(
		ctx,
		query,
		party.ChatID,
		party.Username,
		party.PhoneNumber,
		party.Balance.StringFixed(2),
	).Scan(&id, &createdAt, &updatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.Party{}, domain.ErrAlreadyRegistered
		}
		logger.Error("ledger repository create party failed", err, logger.Fields{
			"chatId": party.ChatID,
		})
		return domain.Party{}, fmt.Errorf("create party: %w", err)
	}

	party.ID = id
	party.CreatedAt = createdAt
	party.UpdatedAt = updatedAt

	return party, nil
}

func (r *LedgerRepository) GetPartyByChatID(ctx context.Context, chatID int64) (domain.Party, error) {
	const query = `
SELECT id, chat_id, username, phone_number, balance, created_at, updated_at
FROM parties
WHERE chat_id = $1`

	return r.scanParty(r.db.QueryRowContext(ctx, query, chatID))
}

func (r *LedgerRepository) GetPartyByPhoneNumber(ctx context.Context, phoneNumber string) (domain.Party, error) {
	const query = `
SELECT id, chat_id, username, phone_number, balance, created_at, updated_at
FROM parties
WHERE phone_number = $1`

	return r.scanParty(r.db.QueryRowContext(ctx, query, phoneNumber))
}

// SettleWithdrawal debits the owning party and appends the withdrawal record
// in one transaction. The conditional debit keeps the balance non-negative
// even when a concurrent flow raced us past the earlier balance check.
func (r *LedgerRepository) SettleWithdrawal(ctx context.Context, record domain.TransactionRecord) (decimal.Decimal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin withdrawal transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const debitQuery = `
UPDATE parties
SET balance = balance - $2::numeric,
    updated_at = NOW()
WHERE chat_id = $1
  AND balance >= $2::numeric
RETURNING balance`

	var newBalanceRaw string
	err = tx.QueryRowContext(ctx, debitQuery, record.ChatID, record.Amount.StringFixed(2)).Scan(&newBalanceRaw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrInsufficientBalance
			return decimal.Zero, err
		}
		return decimal.Zero, fmt.Errorf("debit party: %w", err)
	}

	if err = insertRecord(ctx, tx, record); err != nil {
		return decimal.Zero, err
	}

	if err = tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("commit withdrawal transaction: %w", err)
	}

	newBalance, parseErr := decimal.NewFromString(newBalanceRaw)
	if parseErr != nil {
		return decimal.Zero, fmt.Errorf("parse settled balance: %w", parseErr)
	}

	logger.Info("ledger repository withdrawal settled", logger.Fields{
		"chatId":    record.ChatID,
		"reference": record.Reference,
		"amount":    record.Amount.String(),
	})

	return newBalance, nil
}

// SettleTransfer moves the amount between two parties and appends the
// transfer record atomically. Rows are locked in chat-id order so two
// opposing transfers cannot deadlock.
func (r *LedgerRepository) SettleTransfer(ctx context.Context, record domain.TransactionRecord) error {
	if record.RecipientChatID == nil {
		return fmt.Errorf("settle transfer: recipient chat id is required")
	}
	recipientChatID := *record.RecipientChatID

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transfer transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	first, second := record.ChatID, recipientChatID
	if first > second {
		first, second = second, first
	}
	for _, chatID := range []int64{first, second} {
		var locked int64
		if err = tx.QueryRowContext(ctx, `SELECT chat_id FROM parties WHERE chat_id = $1 FOR UPDATE`, chatID).Scan(&locked); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				err = domain.ErrRecordNotFound
				return err
			}
			return fmt.Errorf("lock party %d: %w", chatID, err)
		}
	}

	const debitQuery = `
UPDATE parties
SET balance = balance - $2::numeric,
    updated_at = NOW()
WHERE chat_id = $1
  AND balance >= $2::numeric`

	var result sql.Result
	result, err = tx.ExecContext(ctx, debitQuery, record.ChatID, record.Amount.StringFixed(2))
	if err != nil {
		return fmt.Errorf("debit sender: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		err = domain.ErrInsufficientBalance
		return err
	}

	const creditQuery = `
UPDATE parties
SET balance = balance + $2::numeric,
    updated_at = NOW()
WHERE chat_id = $1`

	result, err = tx.ExecContext(ctx, creditQuery, recipientChatID, record.Amount.StringFixed(2))
	if err != nil {
		return fmt.Errorf("credit recipient: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		err = domain.ErrRecordNotFound
		return err
	}

	if err = insertRecord(ctx, tx, record); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transfer transaction: %w", err)
	}

	logger.Info("ledger repository transfer settled", logger.Fields{
		"senderChatId":    record.ChatID,
		"recipientChatId": recipientChatID,
		"reference":       record.Reference,
		"amount":          record.Amount.String(),
	})

	return nil
}

// RecordPendingDeposit appends the pending record that ties a checkout
// reference back to the conversation it was created for.
func (r *LedgerRepository) RecordPendingDeposit(ctx context.Context, record domain.TransactionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin pending deposit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = insertRecord(ctx, tx, record); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit pending deposit transaction: %w", err)
	}

	return nil
}

// ConfirmDeposit locks the pending record, credits the owning party and
// flips the record to success in one transaction. A reference that is
// already confirmed returns ErrDuplicateReference so webhook replays are
// harmless.
func (r *LedgerRepository) ConfirmDeposit(ctx context.Context, reference string, amount decimal.Decimal) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin confirm deposit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const lockQuery = `
SELECT chat_id, status, amount
FROM transactions
WHERE reference = $1 AND kind = 'deposit'
FOR UPDATE`

	var (
		chatID    int64
		status    string
		amountRaw string
	)
	err = tx.QueryRowContext(ctx, lockQuery, reference).Scan(&chatID, &status, &amountRaw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrRecordNotFound
			return 0, err
		}
		return 0, fmt.Errorf("lock deposit record: %w", err)
	}

	if status != string(domain.TransactionStatusPending) {
		err = domain.ErrDuplicateReference
		return 0, err
	}

	recorded, parseErr := decimal.NewFromString(amountRaw)
	if parseErr != nil {
		err = fmt.Errorf("parse recorded deposit amount: %w", parseErr)
		return 0, err
	}
	if !recorded.Equal(amount) {
		err = fmt.Errorf("confirm deposit %s: gateway amount %s does not match recorded %s",
			reference, amount.String(), recorded.String())
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE transactions SET status = $2 WHERE reference = $1`,
		reference, domain.TransactionStatusSuccess,
	); err != nil {
		return 0, fmt.Errorf("mark deposit success: %w", err)
	}

	const creditQuery = `
UPDATE parties
SET balance = balance + $2::numeric,
    updated_at = NOW()
WHERE chat_id = $1`

	var result sql.Result
	result, err = tx.ExecContext(ctx, creditQuery, chatID, amount.StringFixed(2))
	if err != nil {
		return 0, fmt.Errorf("credit party: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		err = domain.ErrRecordNotFound
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit confirm deposit transaction: %w", err)
	}

	logger.Info("ledger repository deposit credited", logger.Fields{
		"chatId":    chatID,
		"reference": reference,
		"amount":    amount.String(),
	})

	return chatID, nil
}

func (r *LedgerRepository) scanParty(row *sql.Row) (domain.Party, error) {
	var (
		party      domain.Party
		balanceRaw string
	)

	if err := row.Scan(
		&party.ID,
		&party.ChatID,
		&party.Username,
		&party.PhoneNumber,
		&balanceRaw,
		&party.CreatedAt,
		&party.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Party{}, domain.ErrRecordNotFound
		}
		return domain.Party{}, fmt.Errorf("scan party: %w", err)
	}

	balance, err := decimal.NewFromString(balanceRaw)
	if err != nil {
		return domain.Party{}, fmt.Errorf("parse party balance: %w", err)
	}
	party.Balance = balance

	return party, nil
}

func insertRecord(ctx context.Context, tx *sql.Tx, record domain.TransactionRecord) error {
	const query = `
INSERT INTO transactions (
	reference,
	chat_id,
	recipient_chat_id,
	amount,
	status,
	kind,
	method_id,
	method_name,
	account_number
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if _, err := tx.ExecContext(
		ctx,
		query,
		record.Reference,
		record.ChatID,
		record.RecipientChatID,
		record.Amount.StringFixed(2),
		record.Status,
		record.Kind,
		record.MethodID,
		record.MethodName,
		record.AccountNumber,
	); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReference
		}
		return fmt.Errorf("append transaction record: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}
