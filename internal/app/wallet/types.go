package wallet

import (
	"time"

	"casino-wallet/internal/store"

	"github.com/shopspring/decimal"
)

type AccountResponse struct {
	PlayerID string `json:"player_id"`
	Balance  string `json:"balance"`
}

type BalanceResponse struct {
	PlayerID     string `json:"player_id"`
	Balance      string `json:"balance"`
	BalanceMinor int64  `json:"balance_minor"`
}

type TransactionItem struct {
	ID        string     `json:"id"`
	Kind      store.Kind `json:"kind"`
	Amount    string     `json:"amount"`
	Ref       string     `json:"ref,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type TransactionsResponse struct {
	PlayerID string            `json:"player_id"`
	Items    []TransactionItem `json:"items"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

type AdjustInput struct {
	PlayerID string
	Amount   decimal.Decimal
	Ref      string
}

type PlaceBetInput struct {
	PlayerID string
	GameID   string
	Bet      decimal.Decimal
	Ref      string
}

type BetResponse struct {
	PlayerID  string `json:"player_id"`
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
	Ref       string `json:"ref"`
	Balance   string `json:"balance"`
}
