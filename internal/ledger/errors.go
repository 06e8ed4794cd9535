package ledger

import "errors"

var (
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidPlayer       = errors.New("invalid_player")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrStoreUnavailable    = errors.New("store_unavailable")
	// ErrUnknownOutcome means a write was interrupted and may or may not have
	// been applied. Callers reconcile from the balance and the log.
	ErrUnknownOutcome = errors.New("unknown_outcome")
)
