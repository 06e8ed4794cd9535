package session

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrSessionStartFailed = errors.New("session_start_failed")
	ErrUnpaidSession      = errors.New("unpaid_session")
	ErrAlreadySettled     = errors.New("already_settled")
)

// SettlementError is returned when a session was started but the debit for it
// did not cleanly succeed. Session identifies the external session that needs
// reconciliation.
type SettlementError struct {
	Session Handle
	Ref     string
	Err     error
}

func (e *SettlementError) Error() string {
	return fmt.Sprintf("session %s (ref %s): %v", e.Session.ID, e.Ref, e.Err)
}

func (e *SettlementError) Unwrap() error {
	return e.Err
}
