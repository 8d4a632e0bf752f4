package domain

// Checkout is a successfully initialized deposit: an externally hosted
// payment page the party completes on their own.
type Checkout struct {
	Reference   string
	CheckoutURL string
}

// WithdrawalAccepted means the gateway queued the transfer. Queued is not
// settled; the ledger must not move until verification reports success.
type WithdrawalAccepted struct {
	Reference string
}

type VerificationStatus string

const (
	VerificationStatusSuccess VerificationStatus = "success"
	VerificationStatusFailed  VerificationStatus = "failed"
	VerificationStatusPending VerificationStatus = "pending"
)

// WithdrawalVerification is the gateway's settlement state for a reference.
type WithdrawalVerification struct {
	Reference string
	Status    VerificationStatus
	BankName  string
}

// Settled reports whether the gateway reached the terminal success state.
func (v WithdrawalVerification) Settled() bool {
	return v.Status == VerificationStatusSuccess
}
