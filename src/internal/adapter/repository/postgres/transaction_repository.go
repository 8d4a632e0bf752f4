package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/joker-bingo/payment-bot/src/internal/domain"
	"github.com/joker-bingo/payment-bot/src/internal/logger"
	"github.com/shopspring/decimal"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) (domain.TransactionRecord, error) {
	const query = `
SELECT id, reference, chat_id, recipient_chat_id, amount, status, kind,
       method_id, method_name, account_number, created_at
FROM transactions
WHERE reference = $1`

	rows, err := r.db.QueryContext(ctx, query, reference)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("get transaction by reference: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.TransactionRecord{}, fmt.Errorf("get transaction by reference: %w", err)
		}
		return domain.TransactionRecord{}, domain.ErrRecordNotFound
	}

	return scanRecord(rows)
}

func (r *TransactionRepository) ListByChatID(ctx context.Context, chatID int64, limit int) ([]domain.TransactionRecord, error) {
	const query = `
SELECT id, reference, chat_id, recipient_chat_id, amount, status, kind,
       method_id, method_name, account_number, created_at
FROM transactions
WHERE chat_id = $1 OR recipient_chat_id = $1
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	records := make([]domain.TransactionRecord, 0, limit)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return records, nil
}

func (r *TransactionRepository) UpdateStatus(ctx context.Context, reference string, status domain.TransactionStatus) error {
	const query = `
UPDATE transactions
SET status = $2
WHERE reference = $1`

	result, err := r.db.ExecContext(ctx, query, reference, status)
	if err != nil {
		logger.Error("transaction repository update status failed", err, logger.Fields{
			"reference": reference,
			"status":    status,
		})
		return fmt.Errorf("update transaction status: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func scanRecord(rows *sql.Rows) (domain.TransactionRecord, error) {
	var (
		record          domain.TransactionRecord
		recipientChatID sql.NullInt64
		amountRaw       string
		methodID        sql.NullString
		methodName      sql.NullString
		accountNumber   sql.NullString
	)

	if err := rows.Scan(
		&record.ID,
		&record.Reference,
		&record.ChatID,
		&recipientChatID,
		&amountRaw,
		&record.Status,
		&record.Kind,
		&methodID,
		&methodName,
		&accountNumber,
		&record.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.TransactionRecord{}, domain.ErrRecordNotFound
		}
		return domain.TransactionRecord{}, fmt.Errorf("scan transaction record: %w", err)
	}

	amount, err := decimal.NewFromString(amountRaw)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("parse transaction amount: %w", err)
	}
	record.Amount = amount

	if recipientChatID.Valid {
		value := recipientChatID.Int64
		record.RecipientChatID = &value
	}
	if methodID.Valid {
		value := methodID.String
		record.MethodID = &value
	}
	if methodName.Valid {
		value := methodName.String
		record.MethodName = &value
	}
	if accountNumber.Valid {
		value := accountNumber.String
		record.AccountNumber = &value
	}

	return record, nil
}
