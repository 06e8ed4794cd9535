package ledger

import (
	"context"
	"fmt"

	"casino-wallet/internal/notify"
	"casino-wallet/internal/store"

	"github.com/rs/zerolog/log"
)

// debitOptimistic takes the funds with a single atomic decrement and checks
// the result afterwards. An overdraft is put back before returning, so no
// committed state stays negative, but the dip is visible until then.
func (l *Ledger) debitOptimistic(ctx context.Context, tx store.Transaction) (store.Balance, error) {
	l.seq.begin(tx.PlayerID)
	bal, err := l.store.Incr(ctx, tx.PlayerID, -tx.Amount)
	if err != nil {
		l.seq.abandon(tx.PlayerID)
		return store.Balance{}, l.writeErr(ctx, "debit", err)
	}
	if bal.Amount < 0 {
		l.seq.begin(tx.PlayerID)
		l.seq.push(tx.PlayerID, bal.Version, notify.BalanceChanged{}, releaseHidden)
		if err := l.undoDebit(ctx, tx); err != nil {
			return store.Balance{}, err
		}
		return store.Balance{}, ErrInsufficientBalance
	}

	appendErr := l.store.Append(ctx, tx)
	if appendErr == nil {
		return bal, nil
	}
	interrupted := ctx.Err() != nil
	if interrupted {
		// The append may have landed before the deadline fired.
		found, err := l.logged(ctx, tx)
		if err != nil {
			// The decrement is real either way; show it.
			l.publish(bal, tx)
			return store.Balance{}, l.writeErr(ctx, "debit", appendErr)
		}
		if found {
			return bal, nil
		}
	}
	l.seq.begin(tx.PlayerID)
	l.seq.push(tx.PlayerID, bal.Version, notify.BalanceChanged{}, releaseHidden)
	if err := l.undoDebit(ctx, tx); err != nil {
		return store.Balance{}, err
	}
	if interrupted {
		// A late append can still land after the lookup above.
		metricUnknownOutcome.Add(1)
		log.Warn().Err(appendErr).Str("player_id", tx.PlayerID).Str("transaction_id", tx.ID).
			Msg("debit log append interrupted; funds restored, entry may still appear")
		return store.Balance{}, fmt.Errorf("debit: append: %w: %w", ErrUnknownOutcome, appendErr)
	}
	metricStoreErrors.Add(1)
	log.Error().Err(appendErr).Str("player_id", tx.PlayerID).Msg("debit log append failed; funds restored")
	return store.Balance{}, fmt.Errorf("debit: append: %w: %w", ErrStoreUnavailable, appendErr)
}

// debitLocked checks and writes under a per-player lock, so readers never
// observe an overdraft. The lock only covers writers in this process.
func (l *Ledger) debitLocked(ctx context.Context, tx store.Transaction) (store.Balance, error) {
	unlock := l.locks.lock(tx.PlayerID)
	defer unlock()

	cur, _, err := l.store.Get(ctx, tx.PlayerID)
	if err != nil {
		metricStoreErrors.Add(1)
		return store.Balance{}, fmt.Errorf("debit: %w: %w", ErrStoreUnavailable, err)
	}
	if cur.Amount < tx.Amount {
		return store.Balance{}, ErrInsufficientBalance
	}
	l.seq.begin(tx.PlayerID)
	bal, err := l.store.IncrAndAppend(ctx, tx)
	if err != nil {
		l.seq.abandon(tx.PlayerID)
		return store.Balance{}, l.writeErr(ctx, "debit", err)
	}
	return bal, nil
}

// undoDebit gives tx.Amount back. It runs on a fresh bounded context because
// the caller's may already be done. The caller has already announced the
// write to the sequencer.
func (l *Ledger) undoDebit(ctx context.Context, tx store.Transaction) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
	defer cancel()

	restored, err := l.store.Incr(cctx, tx.PlayerID, tx.Amount)
	if err != nil {
		metricCompensationFailed.Add(1)
		l.seq.abandon(tx.PlayerID)
		log.Error().Err(err).
			Str("player_id", tx.PlayerID).
			Int64("amount", tx.Amount).
			Str("transaction_id", tx.ID).
			Msg("debit compensation failed; stored balance is short")
		return fmt.Errorf("debit: compensate: %w: %w", ErrStoreUnavailable, err)
	}
	metricCompensationTotal.Add(1)
	l.seq.push(tx.PlayerID, restored.Version, notify.BalanceChanged{
		PlayerID: tx.PlayerID,
		Balance:  restored.Amount,
		Version:  restored.Version,
		Kind:     notify.KindRestore,
		Amount:   tx.Amount,
		Ref:      tx.Ref,
		At:       l.now().UTC(),
	}, releaseIfMoved)
	return nil
}

func (l *Ledger) logged(ctx context.Context, tx store.Transaction) (bool, error) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
	defer cancel()
	entries, err := l.store.ReadAll(cctx, tx.PlayerID)
	if err != nil {
		return false, err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].ID == tx.ID {
			return true, nil
		}
	}
	return false, nil
}
