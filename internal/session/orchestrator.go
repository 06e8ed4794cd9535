// Package session places bets: it checks funds, starts a session with the
// game provider and then debits the stake. The two systems share no
// transaction, so every failure after the provider call is compensated or
// surfaced with the session handle attached.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"casino-wallet/internal/ledger"
	"casino-wallet/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type State string

const (
	StateChecking  State = "checking"
	StateReserving State = "reserving"
	StateSettling  State = "settling"
	StateDone      State = "done"
	StateFailed    State = "failed"
)

type Ledger interface {
	GetBalance(ctx context.Context, playerID string) (int64, error)
	GetTransactions(ctx context.Context, playerID string) ([]store.Transaction, error)
	Debit(ctx context.Context, playerID string, amount int64, opts ...ledger.EntryOption) (int64, error)
}

type StartRequest struct {
	PlayerID string
	GameID   string
	Bet      int64
	Ref      string
}

type Handle struct {
	ID  string `json:"session_id"`
	URL string `json:"url"`
}

type Starter interface {
	StartSession(ctx context.Context, req StartRequest) (Handle, error)
}

// Canceler is implemented by providers that can abort a started session.
type Canceler interface {
	CancelSession(ctx context.Context, sessionID string) error
}

type Bet struct {
	PlayerID string
	GameID   string
	Amount   int64
	// Ref identifies the bet across retries. Generated when empty.
	Ref string
}

type Result struct {
	Session Handle `json:"session"`
	Ref     string `json:"ref"`
	Balance int64  `json:"balance"`
}

const reconcileTimeout = 3 * time.Second

type Orchestrator struct {
	ledger  Ledger
	starter Starter
	onState func(ref string, s State)
}

type Option func(*Orchestrator)

// WithStateHook is called on every state transition.
func WithStateHook(fn func(ref string, s State)) Option {
	return func(o *Orchestrator) { o.onState = fn }
}

func New(l Ledger, starter Starter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		ledger:  l,
		starter: starter,
		onState: func(string, State) {},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) PlaceBet(ctx context.Context, bet Bet) (Result, error) {
	bet.PlayerID = strings.TrimSpace(bet.PlayerID)
	bet.GameID = strings.TrimSpace(bet.GameID)
	if bet.PlayerID == "" || bet.GameID == "" {
		return Result{}, ErrInvalidRequest
	}
	if bet.Amount <= 0 {
		return Result{}, ledger.ErrInvalidAmount
	}
	callerRef := bet.Ref != ""
	if !callerRef {
		bet.Ref = uuid.NewString()
	}

	o.transition(bet.Ref, StateChecking)
	if callerRef {
		settled, err := o.settled(ctx, bet.PlayerID, bet.Ref)
		if err != nil {
			return o.fail(bet.Ref, err)
		}
		if settled {
			return o.fail(bet.Ref, ErrAlreadySettled)
		}
	}
	balance, err := o.ledger.GetBalance(ctx, bet.PlayerID)
	if err != nil {
		return o.fail(bet.Ref, err)
	}
	if balance < bet.Amount {
		return o.fail(bet.Ref, ledger.ErrInsufficientBalance)
	}

	o.transition(bet.Ref, StateReserving)
	handle, err := o.starter.StartSession(ctx, StartRequest{
		PlayerID: bet.PlayerID,
		GameID:   bet.GameID,
		Bet:      bet.Amount,
		Ref:      bet.Ref,
	})
	if err != nil {
		log.Warn().Err(err).Str("player_id", bet.PlayerID).Str("ref", bet.Ref).Msg("session start failed")
		return o.fail(bet.Ref, fmt.Errorf("%w: %w", ErrSessionStartFailed, err))
	}

	o.transition(bet.Ref, StateSettling)
	newBalance, err := o.ledger.Debit(ctx, bet.PlayerID, bet.Amount, ledger.WithRef(bet.Ref))
	switch {
	case err == nil:
	case errors.Is(err, ledger.ErrUnknownOutcome):
		newBalance, err = o.reconcile(ctx, bet, handle)
		if err != nil {
			return o.fail(bet.Ref, err)
		}
	default:
		return o.fail(bet.Ref, o.compensate(ctx, bet, handle, err))
	}

	o.transition(bet.Ref, StateDone)
	return Result{Session: handle, Ref: bet.Ref, Balance: newBalance}, nil
}

// compensate cancels a session whose debit failed. The debit error is
// returned when the cancel succeeds; otherwise the session stays unpaid.
func (o *Orchestrator) compensate(ctx context.Context, bet Bet, handle Handle, debitErr error) error {
	logger := log.With().Str("player_id", bet.PlayerID).Str("ref", bet.Ref).Str("session_id", handle.ID).Logger()
	canceler, ok := o.starter.(Canceler)
	if !ok {
		logger.Error().Err(debitErr).Msg("session started but not paid")
		return &SettlementError{Session: handle, Ref: bet.Ref, Err: fmt.Errorf("%w: %w", ErrUnpaidSession, debitErr)}
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reconcileTimeout)
	defer cancel()
	if err := canceler.CancelSession(cctx, handle.ID); err != nil {
		logger.Error().Err(err).AnErr("debit_err", debitErr).Msg("session cancel failed, session unpaid")
		return &SettlementError{Session: handle, Ref: bet.Ref, Err: fmt.Errorf("%w: %w", ErrUnpaidSession, debitErr)}
	}
	logger.Info().Err(debitErr).Msg("session cancelled after failed debit")
	return debitErr
}

// reconcile looks for the bet's debit in the log after an interrupted write.
func (o *Orchestrator) reconcile(ctx context.Context, bet Bet, handle Handle) (int64, error) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reconcileTimeout)
	defer cancel()
	unknown := &SettlementError{Session: handle, Ref: bet.Ref, Err: ledger.ErrUnknownOutcome}

	settled, err := o.settled(rctx, bet.PlayerID, bet.Ref)
	if err != nil || !settled {
		log.Error().Err(err).Str("player_id", bet.PlayerID).Str("ref", bet.Ref).Str("session_id", handle.ID).
			Msg("bet debit outcome unknown")
		return 0, unknown
	}
	balance, err := o.ledger.GetBalance(rctx, bet.PlayerID)
	if err != nil {
		// The debit is in the log; only the balance echo is missing.
		log.Warn().Err(err).Str("ref", bet.Ref).Msg("balance read after reconcile failed")
		return 0, nil
	}
	return balance, nil
}

func (o *Orchestrator) settled(ctx context.Context, playerID, ref string) (bool, error) {
	txs, err := o.ledger.GetTransactions(ctx, playerID)
	if err != nil {
		return false, err
	}
	for _, tx := range txs {
		if tx.Kind == store.KindDebit && tx.Ref == ref {
			return true, nil
		}
	}
	return false, nil
}

func (o *Orchestrator) fail(ref string, err error) (Result, error) {
	o.transition(ref, StateFailed)
	return Result{}, err
}

func (o *Orchestrator) transition(ref string, s State) {
	log.Debug().Str("ref", ref).Str("state", string(s)).Msg("bet state")
	o.onState(ref, s)
}
