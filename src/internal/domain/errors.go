package domain

import "errors"

var ErrRecordNotFound = errors.New("Record not found")
var ErrInsufficientBalance = errors.New("Insufficient balance")
var ErrNotRegistered = errors.New("Party is not registered")
var ErrIncompleteProfile = errors.New("Party profile is incomplete")
var ErrRecipientNotFound = errors.New("Recipient not found")
var ErrSelfTransfer = errors.New("Cannot transfer to self")
var ErrAlreadyRegistered = errors.New("Party is already registered")
var ErrDuplicateReference = errors.New("Transaction reference already settled")

// ErrLedgerWrite marks a settlement persistence failure after the gateway
// already moved money. It must be escalated, never silently retried.
var ErrLedgerWrite = errors.New("Ledger write failed after gateway settlement")
