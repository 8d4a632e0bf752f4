package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/joker-bingo/payment-bot/src/internal/commons"
	"github.com/joker-bingo/payment-bot/src/internal/logger"
	"github.com/joker-bingo/payment-bot/src/internal/usecase/service_interfaces"
)

const maxEventBytes = 1 << 20

var (
	webhookReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_bot_webhook_requests_total",
		Help: "Total payment provider webhook deliveries by outcome",
	}, []string{"outcome"})

	webhookLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_bot_webhook_duration_seconds",
		Help:    "Webhook processing latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

type event struct {
	Event     string          `json:"event"`
	TxRef     string          `json:"tx_ref"`
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    json.RawMessage `json:"amount"`
	Currency  string          `json:"currency"`
}

// Handler receives payment provider callbacks. Every delivery is
// authenticated with an HMAC-SHA256 signature over the raw body before the
// payload is trusted.
type Handler struct {
	secret    string
	confirmer service_interfaces.DepositConfirmer
}

func NewHandler(secret string, confirmer service_interfaces.DepositConfirmer) *Handler {
	return &Handler{secret: secret, confirmer: confirmer}
}

func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(webhookLatency)
	defer timer.ObserveDuration()
	start := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
	if err != nil {
		webhookReqTotal.WithLabelValues("read_error").Inc()
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[commons.Empty]("could not read request body"))
		return
	}

	signature := r.Header.Get("Chapa-Signature")
	if signature == "" {
		signature = r.Header.Get("x-chapa-signature")
	}
	if !h.signatureValid(body, signature) {
		logger.Info("webhook rejected delivery", logger.Fields{
			"path":   r.URL.Path,
			"reason": "invalid_signature",
		})
		webhookReqTotal.WithLabelValues("invalid_signature").Inc()
		writeJSON(w, http.StatusUnauthorized, commons.ErrorResponse[commons.Empty]("invalid signature"))
		return
	}

	var evt event
	if err := json.Unmarshal(body, &evt); err != nil {
		webhookReqTotal.WithLabelValues("invalid_payload").Inc()
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[commons.Empty]("invalid event payload", err.Error()))
		return
	}

	reference := evt.TxRef
	if reference == "" {
		reference = evt.Reference
	}

	logger.Info("webhook delivery received", logger.Fields{
		"event":      evt.Event,
		"txRef":      reference,
		"status":     evt.Status,
		"durationMs": time.Since(start).Milliseconds(),
	})

	if evt.Status != "success" {
		webhookReqTotal.WithLabelValues("ignored").Inc()
		writeJSON(w, http.StatusOK, commons.AckResponse("event ignored"))
		return
	}

	amount, err := parseAmount(evt.Amount)
	if err != nil {
		webhookReqTotal.WithLabelValues("invalid_payload").Inc()
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[commons.Empty]("invalid event amount", err.Error()))
		return
	}

	if err := h.confirmer.Confirm(r.Context(), reference, amount); err != nil {
		webhookReqTotal.WithLabelValues("confirm_error").Inc()
		writeJSON(w, http.StatusInternalServerError, commons.ErrorResponse[commons.Empty]("could not settle deposit"))
		return
	}

	webhookReqTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, commons.AckResponse("event processed"))
}

func (h *Handler) signatureValid(body []byte, signature string) bool {
	if h.secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// parseAmount accepts both the quoted and unquoted forms the provider has
// been observed sending.
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return decimal.NewFromString(asString)
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(asNumber.String())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
