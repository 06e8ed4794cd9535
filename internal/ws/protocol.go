package ws

import (
	"time"

	"casino-wallet/internal/notify"
)

const ProtocolVersion = "1.0"

type SubscribedMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerID        string `json:"player_id,omitempty"`
}

type BalanceUpdate struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	PlayerID        string      `json:"player_id"`
	Balance         int64       `json:"balance"`
	Version         int64       `json:"version"`
	Kind            notify.Kind `json:"kind"`
	Amount          int64       `json:"amount"`
	TransactionID   string      `json:"transaction_id,omitempty"`
	Ref             string      `json:"ref,omitempty"`
	TimestampMS     int64       `json:"timestamp_ms"`
}

func NewBalanceUpdate(ev notify.BalanceChanged) BalanceUpdate {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	return BalanceUpdate{
		Type:            "balance_update",
		ProtocolVersion: ProtocolVersion,
		PlayerID:        ev.PlayerID,
		Balance:         ev.Balance,
		Version:         ev.Version,
		Kind:            ev.Kind,
		Amount:          ev.Amount,
		TransactionID:   ev.TransactionID,
		Ref:             ev.Ref,
		TimestampMS:     at.UnixMilli(),
	}
}
