package store

import (
	"errors"
	"time"
)

// ErrOverflow is returned by backends when a write would push the counter
// outside the int64 range. Nothing is applied.
var ErrOverflow = errors.New("balance_overflow")

type Kind string

const (
	KindCredit Kind = "credit"
	KindDebit  Kind = "debit"
)

// Transaction is an immutable ledger entry. Amount is always a positive
// magnitude in minor units; Kind carries the direction.
type Transaction struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"player_id"`
	Amount    int64     `json:"amount"`
	Kind      Kind      `json:"kind"`
	Ref       string    `json:"ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (t Transaction) Delta() int64 {
	if t.Kind == KindDebit {
		return -t.Amount
	}
	return t.Amount
}

// Balance is the counter state after a read or write. Version increases by
// one on every write to the player's counter.
type Balance struct {
	PlayerID string
	Amount   int64
	Version  int64
}
