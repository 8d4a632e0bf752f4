package webhook

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joker-bingo/payment-bot/src/internal/commons"
)

// NewRouter wires the webhook receiver plus the operational surface. The
// ops subtree is guarded by authMiddleware; the webhook route authenticates
// itself by signature.
func NewRouter(
	handler *Handler,
	opsHandler *OpsHandler,
	authMiddleware func(http.Handler) http.Handler,
) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/webhook/chapa", handler.Receive).Methods(http.MethodPost)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, commons.AckResponse("ok"))
	}).Methods(http.MethodGet)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	ops := router.PathPrefix("/ops").Subrouter()
	if authMiddleware != nil {
		ops.Use(authMiddleware)
	}
	ops.HandleFunc("/withdrawals/{reference}/verify", opsHandler.VerifyWithdrawal).Methods(http.MethodGet)

	return router
}
