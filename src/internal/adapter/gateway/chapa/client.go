package chapa

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/joker-bingo/payment-bot/src/internal/domain"
	"github.com/joker-bingo/payment-bot/src/internal/logger"
	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://api.chapa.co/v1"
const currency = "ETB"

// Fixed merchant metadata sent with every checkout envelope.
const merchantEmail = "abebech_bekele@gmail.com"
const merchantLastName = "Joker Bingo"
const checkoutTitle = "Joker Bingo deposit"
const checkoutDescription = "Wallet top-up"

const depositReferenceBytes = 5
const withdrawalReferenceBytes = 8

// GatewayError is any failure talking to Chapa: a transport error, a
// malformed body, or a well-formed non-success response.
type GatewayError struct {
	Reason     string
	StatusCode int
	Cause      error
}

func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("chapa: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("chapa: %s", e.Reason)
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

type initializeRequest struct {
	Amount                   string `json:"amount"`
	Currency                 string `json:"currency"`
	Email                    string `json:"email"`
	FirstName                string `json:"first_name"`
	LastName                 string `json:"last_name"`
	PhoneNumber              string `json:"phone_number"`
	TxRef                    string `json:"tx_ref"`
	CallbackURL              string `json:"callback_url"`
	ReturnURL                string `json:"return_url"`
	CustomizationTitle       string `json:"customization[title]"`
	CustomizationDescription string `json:"customization[description]"`
	HideReceipt              string `json:"meta[hide_receipt]"`
}

type transferRequest struct {
	AccountName     string `json:"account_name"`
	AccountNumber   string `json:"account_number"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	Reference       string `json:"reference"`
	BankCode        string `json:"bank_code"`
	BeneficiaryName string `json:"beneficiary_name"`
}

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type checkoutData struct {
	CheckoutURL string `json:"checkout_url"`
}

type verifyData struct {
	Status   string `json:"status"`
	BankName string `json:"bank_name"`
}

// Client issues deposit-initialization, withdrawal and verification calls
// against the Chapa API. Each call generates a fresh random reference.
type Client struct {
	baseURL       string
	secret        string
	callbackURL   string
	returnURL     string
	settlingDelay time.Duration
	httpClient    *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(secret, callbackURL, returnURL string, settlingDelay time.Duration, opts ...Option) (*Client, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("chapa: secret must not be empty")
	}

	c := &Client{
		baseURL:       defaultBaseURL,
		secret:        strings.TrimSpace(secret),
		callbackURL:   strings.TrimSpace(callbackURL),
		returnURL:     strings.TrimSpace(returnURL),
		settlingDelay: settlingDelay,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// InitializeDeposit creates a hosted checkout for the amount and returns its
// URL. No ledger state is touched; settlement arrives on the webhook.
func (c *Client) InitializeDeposit(ctx context.Context, amount decimal.Decimal, payerName, payerPhone string) (domain.Checkout, error) {
	reference := newReference(depositReferenceBytes)

	logger.Info("chapa initialize deposit", logger.Fields{
		"amount": amount.String(),
		"txRef":  reference,
	})

	payload := initializeRequest{
		Amount:                   amount.String(),
		Currency:                 currency,
		Email:                    merchantEmail,
		FirstName:                payerName,
		LastName:                 merchantLastName,
		PhoneNumber:              payerPhone,
		TxRef:                    reference,
		CallbackURL:              c.callbackURL,
		ReturnURL:                c.returnURL,
		CustomizationTitle:       checkoutTitle,
		CustomizationDescription: checkoutDescription,
		HideReceipt:              "true",
	}

	resp, err := c.postJSON(ctx, "/transaction/initialize", payload)
	if err != nil {
		return domain.Checkout{}, err
	}

	var data checkoutData
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			return domain.Checkout{}, &GatewayError{Reason: "decode checkout data", Cause: err}
		}
	}
	if data.CheckoutURL == "" {
		return domain.Checkout{}, &GatewayError{Reason: nonSuccessReason(resp, "missing checkout_url")}
	}

	return domain.Checkout{Reference: reference, CheckoutURL: data.CheckoutURL}, nil
}

// InitiateWithdrawal queues a transfer to the given account. Acceptance means
// queued, not settled: callers must verify before committing ledger state.
func (c *Client) InitiateWithdrawal(ctx context.Context, amount decimal.Decimal, accountName, accountNumber, methodID string) (domain.WithdrawalAccepted, error) {
	reference := newReference(withdrawalReferenceBytes)

	logger.Info("chapa initiate withdrawal", logger.Fields{
		"amount":        amount.String(),
		"reference":     reference,
		"bankCode":      methodID,
		"accountNumber": accountNumber,
	})

	payload := transferRequest{
		AccountName:     accountName,
		AccountNumber:   accountNumber,
		Amount:          amount.String(),
		Currency:        currency,
		Reference:       reference,
		BankCode:        methodID,
		BeneficiaryName: accountName,
	}

	if _, err := c.postJSON(ctx, "/transfers", payload); err != nil {
		return domain.WithdrawalAccepted{}, err
	}

	return domain.WithdrawalAccepted{Reference: reference}, nil
}

// VerifyWithdrawal polls the gateway's settlement state for a reference.
func (c *Client) VerifyWithdrawal(ctx context.Context, reference string) (domain.WithdrawalVerification, error) {
	url := c.baseURL + "/transfers/verify/" + reference

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.WithdrawalVerification{}, &GatewayError{Reason: "create verify request", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)

	resp, err := c.doRequest(req)
	if err != nil {
		return domain.WithdrawalVerification{}, err
	}

	var data verifyData
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			return domain.WithdrawalVerification{}, &GatewayError{Reason: "decode verify data", Cause: err}
		}
	}

	status := domain.VerificationStatus(strings.ToLower(strings.TrimSpace(data.Status)))
	if status == "" {
		status = domain.VerificationStatusPending
	}

	return domain.WithdrawalVerification{
		Reference: reference,
		Status:    status,
		BankName:  data.BankName,
	}, nil
}

// AwaitSettlement waits the fixed settling delay, then verifies once. The
// delay keeps us from querying before the gateway has processed the queue.
func (c *Client) AwaitSettlement(ctx context.Context, reference string) (domain.WithdrawalVerification, error) {
	select {
	case <-time.After(c.settlingDelay):
	case <-ctx.Done():
		return domain.WithdrawalVerification{}, ctx.Err()
	}

	return c.VerifyWithdrawal(ctx, reference)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return apiResponse{}, &GatewayError{Reason: "marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return apiResponse{}, &GatewayError{Reason: "create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secret)

	return c.doRequest(req)
}

func (c *Client) doRequest(req *http.Request) (apiResponse, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return apiResponse{}, &GatewayError{Reason: "request failed", Cause: err}
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return apiResponse{}, &GatewayError{Reason: "read response body", Cause: err}
	}

	var resp apiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return apiResponse{}, &GatewayError{Reason: "decode response body", StatusCode: res.StatusCode, Cause: err}
	}

	if !strings.EqualFold(resp.Status, "success") {
		return apiResponse{}, &GatewayError{Reason: nonSuccessReason(resp, "request rejected"), StatusCode: res.StatusCode}
	}

	return resp, nil
}

func nonSuccessReason(resp apiResponse, fallback string) string {
	if strings.TrimSpace(resp.Message) != "" {
		return strings.TrimSpace(resp.Message)
	}
	return fallback
}

func newReference(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("chapa: read random bytes: %v", err))
	}
	return hex.EncodeToString(buf)
}
