package wallet

import (
	"errors"
	"net/http"

	"casino-wallet/internal/ledger"
	"casino-wallet/internal/session"
)

var ErrInvalidRequest = errors.New("invalid_request")

// MapError turns a service error into the HTTP status and error code shown to
// clients. Business rejections get 4xx codes; infrastructure faults get 5xx
// so clients know which ones are worth retrying.
func MapError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, session.ErrInvalidRequest), errors.Is(err, ledger.ErrInvalidPlayer):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, ledger.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, session.ErrUnpaidSession):
		return http.StatusConflict, "unpaid_session"
	case errors.Is(err, session.ErrAlreadySettled):
		return http.StatusConflict, "already_settled"
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return http.StatusConflict, "insufficient_balance"
	case errors.Is(err, session.ErrSessionStartFailed):
		return http.StatusBadGateway, "session_start_failed"
	case errors.Is(err, ledger.ErrUnknownOutcome):
		return http.StatusGatewayTimeout, "unknown_outcome"
	case errors.Is(err, ledger.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
