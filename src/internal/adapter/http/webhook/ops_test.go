package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/joker-bingo/payment-bot/src/internal/domain"
)

type opsGatewayStub struct {
	verifyFn func(ctx context.Context, reference string) (domain.WithdrawalVerification, error)
}

func (s *opsGatewayStub) InitializeDeposit(ctx context.Context, amount decimal.Decimal, payerName, payerPhone string) (domain.Checkout, error) {
	panic("not used")
}

func (s *opsGatewayStub) InitiateWithdrawal(ctx context.Context, amount decimal.Decimal, accountName, accountNumber, methodID string) (domain.WithdrawalAccepted, error) {
	panic("not used")
}

func (s *opsGatewayStub) VerifyWithdrawal(ctx context.Context, reference string) (domain.WithdrawalVerification, error) {
	return s.verifyFn(ctx, reference)
}

func (s *opsGatewayStub) AwaitSettlement(ctx context.Context, reference string) (domain.WithdrawalVerification, error) {
	return s.verifyFn(ctx, reference)
}

type opsTxRepoStub struct {
	getByReferenceFn func(ctx context.Context, reference string) (domain.TransactionRecord, error)
	updateStatusFn   func(ctx context.Context, reference string, status domain.TransactionStatus) error
}

func (s *opsTxRepoStub) GetByReference(ctx context.Context, reference string) (domain.TransactionRecord, error) {
	return s.getByReferenceFn(ctx, reference)
}

func (s *opsTxRepoStub) ListByChatID(ctx context.Context, chatID int64, limit int) ([]domain.TransactionRecord, error) {
	panic("not used")
}

func (s *opsTxRepoStub) UpdateStatus(ctx context.Context, reference string, status domain.TransactionStatus) error {
	return s.updateStatusFn(ctx, reference, status)
}

func opsRequest(t *testing.T, handler *OpsHandler, reference string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(NewHandler(testSecret, &confirmerStub{}), handler, nil)
	req := httptest.NewRequest(http.MethodGet, "/ops/withdrawals/"+reference+"/verify", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestOpsVerifySyncsDivergedStatus(t *testing.T) {
	var syncedTo domain.TransactionStatus
	gateway := &opsGatewayStub{
		verifyFn: func(ctx context.Context, reference string) (domain.WithdrawalVerification, error) {
			return domain.WithdrawalVerification{
				Reference: reference,
				Status:    domain.VerificationStatusFailed,
				BankName:  "Telebirr",
			}, nil
		},
	}
	txRepo := &opsTxRepoStub{
		getByReferenceFn: func(ctx context.Context, reference string) (domain.TransactionRecord, error) {
			return domain.TransactionRecord{
				Reference: reference,
				Kind:      domain.TransactionKindWithdrawal,
				Status:    domain.TransactionStatusSuccess,
			}, nil
		},
		updateStatusFn: func(ctx context.Context, reference string, status domain.TransactionStatus) error {
			syncedTo = status
			return nil
		},
	}

	rec := opsRequest(t, NewOpsHandler(gateway, txRepo), "ref123")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, domain.TransactionStatusFailed, syncedTo)
}

func TestOpsVerifyUnknownReference(t *testing.T) {
	txRepo := &opsTxRepoStub{
		getByReferenceFn: func(ctx context.Context, reference string) (domain.TransactionRecord, error) {
			return domain.TransactionRecord{}, domain.ErrRecordNotFound
		},
	}

	rec := opsRequest(t, NewOpsHandler(&opsGatewayStub{}, txRepo), "missing")

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOpsVerifyRejectsNonWithdrawals(t *testing.T) {
	txRepo := &opsTxRepoStub{
		getByReferenceFn: func(ctx context.Context, reference string) (domain.TransactionRecord, error) {
			return domain.TransactionRecord{
				Reference: reference,
				Kind:      domain.TransactionKindDeposit,
				Status:    domain.TransactionStatusPending,
			}, nil
		},
	}

	rec := opsRequest(t, NewOpsHandler(&opsGatewayStub{}, txRepo), "abc123")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
