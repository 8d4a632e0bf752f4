package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Party is a registered wallet holder, identified by the Telegram chat it
// talks to us from. The balance is mutated only inside a settlement step.
type Party struct {
	ID          string
	ChatID      int64
	Username    string
	PhoneNumber string
	Balance     decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasCompleteProfile reports whether the party carries the display handle and
// contact number the payment gateway requires.
func (p Party) HasCompleteProfile() bool {
	return p.Username != "" && p.PhoneNumber != ""
}
