package notify

import "time"

type Kind string

const (
	KindCredit Kind = "credit"
	KindDebit  Kind = "debit"
	KindSet    Kind = "set"

	// KindRestore reports funds put back after a debit that did not go
	// through, when observers were shown a balance that excluded them.
	KindRestore Kind = "restore"
)

// BalanceChanged is published after a committed balance write. Version is the
// store's per-player write counter; consumers may drop events whose version
// is not newer than the last one they applied.
type BalanceChanged struct {
	PlayerID      string    `json:"player_id"`
	Balance       int64     `json:"balance"`
	Version       int64     `json:"version"`
	Kind          Kind      `json:"kind"`
	Amount        int64     `json:"amount"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Ref           string    `json:"ref,omitempty"`
	At            time.Time `json:"at"`
}

type Notifier interface {
	Notify(ev BalanceChanged)
}

type NotifierFunc func(ev BalanceChanged)

func (f NotifierFunc) Notify(ev BalanceChanged) { f(ev) }

// Discard drops every event.
var Discard Notifier = NotifierFunc(func(BalanceChanged) {})

type multiNotifier []Notifier

func (m multiNotifier) Notify(ev BalanceChanged) {
	for _, n := range m {
		n.Notify(ev)
	}
}

// Multi fans each event out to every non-nil notifier, in argument order.
func Multi(notifiers ...Notifier) Notifier {
	out := make(multiNotifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
