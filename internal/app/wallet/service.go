// Package wallet is the application layer shared by the HTTP handlers and the
// MCP tools.
package wallet

import (
	"context"
	"strings"

	"casino-wallet/internal/ledger"
	"casino-wallet/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Service struct {
	ledger         *ledger.Ledger
	bets           *session.Orchestrator
	initialBalance int64
}

func NewService(l *ledger.Ledger, bets *session.Orchestrator, initialBalance int64) *Service {
	return &Service{ledger: l, bets: bets, initialBalance: initialBalance}
}

func (s *Service) OpenAccount(ctx context.Context) (*AccountResponse, error) {
	playerID := uuid.NewString()
	if err := s.ledger.SetBalance(ctx, playerID, s.initialBalance); err != nil {
		return nil, err
	}
	log.Info().Str("player_id", playerID).Int64("balance", s.initialBalance).Msg("account opened")
	return &AccountResponse{PlayerID: playerID, Balance: FormatMinor(s.initialBalance)}, nil
}

func (s *Service) Balance(ctx context.Context, playerID string) (*BalanceResponse, error) {
	bal, err := s.ledger.GetBalance(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return balanceResponse(playerID, bal), nil
}

func (s *Service) Transactions(ctx context.Context, playerID string, limit, offset int) (*TransactionsResponse, error) {
	txs, err := s.ledger.GetTransactions(ctx, playerID)
	if err != nil {
		return nil, err
	}
	resp := &TransactionsResponse{
		PlayerID: playerID,
		Items:    []TransactionItem{},
		Total:    len(txs),
		Limit:    limit,
		Offset:   offset,
	}
	if offset >= len(txs) {
		return resp, nil
	}
	end := min(offset+limit, len(txs))
	for _, tx := range txs[offset:end] {
		resp.Items = append(resp.Items, TransactionItem{
			ID:        tx.ID,
			Kind:      tx.Kind,
			Amount:    FormatMinor(tx.Amount),
			Ref:       tx.Ref,
			CreatedAt: tx.CreatedAt,
		})
	}
	return resp, nil
}

func (s *Service) Credit(ctx context.Context, in AdjustInput) (*BalanceResponse, error) {
	amount, err := positiveMinor(in.Amount)
	if err != nil {
		return nil, err
	}
	bal, err := s.ledger.Credit(ctx, in.PlayerID, amount, ledger.WithRef(strings.TrimSpace(in.Ref)))
	if err != nil {
		return nil, err
	}
	return balanceResponse(in.PlayerID, bal), nil
}

func (s *Service) Debit(ctx context.Context, in AdjustInput) (*BalanceResponse, error) {
	amount, err := positiveMinor(in.Amount)
	if err != nil {
		return nil, err
	}
	bal, err := s.ledger.Debit(ctx, in.PlayerID, amount, ledger.WithRef(strings.TrimSpace(in.Ref)))
	if err != nil {
		return nil, err
	}
	return balanceResponse(in.PlayerID, bal), nil
}

func (s *Service) SetBalance(ctx context.Context, playerID string, amount decimal.Decimal) (*BalanceResponse, error) {
	v, err := ToMinor(amount)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.SetBalance(ctx, playerID, v); err != nil {
		return nil, err
	}
	log.Info().Str("player_id", playerID).Int64("balance", v).Msg("balance overwritten")
	return balanceResponse(playerID, v), nil
}

func (s *Service) PlaceBet(ctx context.Context, in PlaceBetInput) (*BetResponse, error) {
	bet, err := positiveMinor(in.Bet)
	if err != nil {
		return nil, err
	}
	res, err := s.bets.PlaceBet(ctx, session.Bet{
		PlayerID: in.PlayerID,
		GameID:   in.GameID,
		Amount:   bet,
		Ref:      strings.TrimSpace(in.Ref),
	})
	if err != nil {
		return nil, err
	}
	return &BetResponse{
		PlayerID:  in.PlayerID,
		SessionID: res.Session.ID,
		URL:       res.Session.URL,
		Ref:       res.Ref,
		Balance:   FormatMinor(res.Balance),
	}, nil
}

func balanceResponse(playerID string, bal int64) *BalanceResponse {
	return &BalanceResponse{PlayerID: playerID, Balance: FormatMinor(bal), BalanceMinor: bal}
}
