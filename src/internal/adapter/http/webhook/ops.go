package webhook

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/joker-bingo/payment-bot/src/internal/adapter/repository/repo_interfaces"
	"github.com/joker-bingo/payment-bot/src/internal/commons"
	"github.com/joker-bingo/payment-bot/src/internal/domain"
	"github.com/joker-bingo/payment-bot/src/internal/logger"
	"github.com/joker-bingo/payment-bot/src/internal/usecase/service_interfaces"
)

type withdrawalVerifyResult struct {
	Reference      string `json:"reference"`
	GatewayStatus  string `json:"gatewayStatus"`
	RecordedStatus string `json:"recordedStatus"`
	BankName       string `json:"bankName,omitempty"`
}

// OpsHandler serves the manual reconciliation endpoints behind basic auth.
type OpsHandler struct {
	gateway service_interfaces.PaymentGateway
	txRepo  repo_interfaces.TransactionRepository
}

func NewOpsHandler(gateway service_interfaces.PaymentGateway, txRepo repo_interfaces.TransactionRepository) *OpsHandler {
	return &OpsHandler{gateway: gateway, txRepo: txRepo}
}

// VerifyWithdrawal re-queries the provider for a withdrawal and syncs the
// stored record when the provider disagrees with it.
func (h *OpsHandler) VerifyWithdrawal(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["reference"]

	record, err := h.txRepo.GetByReference(r.Context(), reference)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, commons.ErrorResponse[withdrawalVerifyResult]("withdrawal not found"))
			return
		}
		logger.Error("ops verify record lookup failed", err, logger.Fields{"reference": reference})
		writeJSON(w, http.StatusInternalServerError, commons.ErrorResponse[withdrawalVerifyResult]("could not load withdrawal"))
		return
	}

	if record.Kind != domain.TransactionKindWithdrawal {
		writeJSON(w, http.StatusUnprocessableEntity, commons.ErrorResponse[withdrawalVerifyResult]("reference is not a withdrawal"))
		return
	}

	verification, err := h.gateway.VerifyWithdrawal(r.Context(), reference)
	if err != nil {
		logger.Error("ops verify gateway call failed", err, logger.Fields{"reference": reference})
		writeJSON(w, http.StatusBadGateway, commons.ErrorResponse[withdrawalVerifyResult]("provider verification failed", err.Error()))
		return
	}

	recorded := record.Status
	if synced, changed := syncedStatus(record.Status, verification.Status); changed {
		if err := h.txRepo.UpdateStatus(r.Context(), reference, synced); err != nil {
			logger.Error("ops verify status sync failed", err, logger.Fields{
				"reference": reference,
				"status":    string(synced),
			})
			writeJSON(w, http.StatusInternalServerError, commons.ErrorResponse[withdrawalVerifyResult]("could not sync status"))
			return
		}
		recorded = synced
		logger.Info("ops verify status synced", logger.Fields{
			"reference": reference,
			"from":      string(record.Status),
			"to":        string(synced),
		})
	}

	writeJSON(w, http.StatusOK, commons.SuccessResponse("withdrawal verified", withdrawalVerifyResult{
		Reference:      reference,
		GatewayStatus:  string(verification.Status),
		RecordedStatus: string(recorded),
		BankName:       verification.BankName,
	}))
}

func syncedStatus(recorded domain.TransactionStatus, verified domain.VerificationStatus) (domain.TransactionStatus, bool) {
	var target domain.TransactionStatus
	switch verified {
	case domain.VerificationStatusSuccess:
		target = domain.TransactionStatusSuccess
	case domain.VerificationStatusFailed:
		target = domain.TransactionStatusFailed
	default:
		return recorded, false
	}
	if target == recorded {
		return recorded, false
	}
	return target, true
}
