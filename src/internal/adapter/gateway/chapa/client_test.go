package chapa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/joker-bingo/payment-bot/src/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-secret", "https://example.com/webhook", "https://example.com/done", 0, WithBaseURL(server.URL))
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresSecret(t *testing.T) {
	_, err := NewClient("  ", "cb", "ret", 0)
	require.Error(t, err)
}

func TestInitializeDepositSuccess(t *testing.T) {
	var captured initializeRequest
	var authHeader string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"message": "Hosted Link",
			"data":    map[string]string{"checkout_url": "https://checkout.chapa.co/pay/xyz"},
		})
	})

	checkout, err := client.InitializeDeposit(context.Background(), decimal.NewFromInt(100), "abebe", "0911223344")
	require.NoError(t, err)

	require.Equal(t, "Bearer test-secret", authHeader)
	require.Equal(t, "https://checkout.chapa.co/pay/xyz", checkout.CheckoutURL)
	require.Len(t, checkout.Reference, depositReferenceBytes*2)
	require.Equal(t, checkout.Reference, captured.TxRef)
	require.Equal(t, "100", captured.Amount)
	require.Equal(t, "ETB", captured.Currency)
	require.Equal(t, "abebe", captured.FirstName)
	require.Equal(t, "0911223344", captured.PhoneNumber)
	require.Equal(t, "https://example.com/webhook", captured.CallbackURL)
}

func TestInitializeDepositRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "failed",
			"message": "Invalid currency",
		})
	})

	_, err := client.InitializeDeposit(context.Background(), decimal.NewFromInt(100), "abebe", "0911223344")
	require.Error(t, err)

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, "Invalid currency", gwErr.Reason)
	require.Equal(t, http.StatusBadRequest, gwErr.StatusCode)
}

func TestInitializeDepositMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	})

	_, err := client.InitializeDeposit(context.Background(), decimal.NewFromInt(100), "abebe", "0911223344")

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, "decode response body", gwErr.Reason)
}

func TestInitializeDepositMissingCheckoutURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]string{},
		})
	})

	_, err := client.InitializeDeposit(context.Background(), decimal.NewFromInt(100), "abebe", "0911223344")
	require.Error(t, err)
}

func TestInitiateWithdrawalSuccess(t *testing.T) {
	var captured transferRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transfers", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"message": "Transfer Queued Successfully",
		})
	})

	accepted, err := client.InitiateWithdrawal(context.Background(), decimal.NewFromInt(50), "Abebe Bekele", "0911223344", "855")
	require.NoError(t, err)

	require.Len(t, accepted.Reference, withdrawalReferenceBytes*2)
	require.Equal(t, accepted.Reference, captured.Reference)
	require.Equal(t, "Abebe Bekele", captured.AccountName)
	require.Equal(t, "0911223344", captured.AccountNumber)
	require.Equal(t, "855", captured.BankCode)
	require.Equal(t, "50", captured.Amount)
}

func TestInitiateWithdrawalInsufficientBalance(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "failed",
			"message": "Insufficient Balance",
		})
	})

	_, err := client.InitiateWithdrawal(context.Background(), decimal.NewFromInt(50), "Abebe Bekele", "0911223344", "855")

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, "Insufficient Balance", gwErr.Reason)
}

func TestVerifyWithdrawalStatuses(t *testing.T) {
	cases := []struct {
		name     string
		status   string
		expected domain.VerificationStatus
	}{
		{name: "settled", status: "success", expected: domain.VerificationStatusSuccess},
		{name: "failed", status: "failed", expected: domain.VerificationStatusFailed},
		{name: "pending", status: "pending", expected: domain.VerificationStatusPending},
		{name: "uppercase", status: "SUCCESS", expected: domain.VerificationStatusSuccess},
		{name: "absent", status: "", expected: domain.VerificationStatusPending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/transfers/verify/ref123", r.URL.Path)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"status": "success",
					"data":   map[string]string{"status": tc.status, "bank_name": "Telebirr"},
				})
			})

			verification, err := client.VerifyWithdrawal(context.Background(), "ref123")
			require.NoError(t, err)
			require.Equal(t, tc.expected, verification.Status)
			require.Equal(t, "ref123", verification.Reference)
		})
	}
}

func TestAwaitSettlementHonorsContext(t *testing.T) {
	client, err := NewClient("test-secret", "cb", "ret", time.Minute)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.AwaitSettlement(ctx, "ref123")
	require.ErrorIs(t, err, context.Canceled)
}

func TestAwaitSettlementVerifiesAfterDelay(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]string{"status": "success", "bank_name": "Awash Bank"},
		})
	})
	client.settlingDelay = 5 * time.Millisecond

	verification, err := client.AwaitSettlement(context.Background(), "ref123")
	require.NoError(t, err)
	require.True(t, verification.Settled())
	require.Equal(t, "Awash Bank", verification.BankName)
}
