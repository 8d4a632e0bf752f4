package services

import (
	"regexp"

	"github.com/shopspring/decimal"
)

var walletNumberPattern = regexp.MustCompile(`^(09|07)\d{8}$`)
var recipientPhonePattern = regexp.MustCompile(`^09\d{8}$`)
var accountNamePattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)

// amountBetween validates a free-text amount against an inclusive range.
func amountBetween(min, max decimal.Decimal) func(string) bool {
	return func(text string) bool {
		amount, err := decimal.NewFromString(text)
		if err != nil {
			return false
		}
		return amount.GreaterThanOrEqual(min) && amount.LessThanOrEqual(max)
	}
}

func isValidAccountName(text string) bool {
	return len(text) >= 3 && accountNamePattern.MatchString(text)
}
