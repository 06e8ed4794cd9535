package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"casino-wallet/internal/notify"
	"casino-wallet/internal/store"

	"github.com/rs/zerolog/log"
)

// Store is the persistence contract the ledger needs. Incr must be atomic per
// player; IncrAndAppend must apply the counter change and the log append as
// one unit.
type Store interface {
	Incr(ctx context.Context, playerID string, delta int64) (store.Balance, error)
	IncrAndAppend(ctx context.Context, tx store.Transaction) (store.Balance, error)
	Get(ctx context.Context, playerID string) (store.Balance, bool, error)
	Put(ctx context.Context, playerID string, amount int64) (store.Balance, error)
	Append(ctx context.Context, tx store.Transaction) error
	ReadAll(ctx context.Context, playerID string) ([]store.Transaction, error)
}

// MaxAmount caps the amount of any single ledger write, in minor units.
// Totals that would still leave the int64 range are rejected by the store.
const MaxAmount int64 = 1_000_000_000_000_000

type Strategy string

const (
	// StrategyOptimistic decrements first and compensates on overdraft. A
	// concurrent reader may briefly see a negative balance.
	StrategyOptimistic Strategy = "optimistic"
	// StrategyLocked serializes debits per player inside this process.
	StrategyLocked Strategy = "locked"
)

func ParseStrategy(v string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(v))) {
	case "", StrategyOptimistic:
		return StrategyOptimistic, nil
	case StrategyLocked:
		return StrategyLocked, nil
	default:
		return "", fmt.Errorf("unknown debit strategy %q", v)
	}
}

const compensateTimeout = 2 * time.Second

type Ledger struct {
	store     Store
	strategy  Strategy
	locks     *keyedMutex
	seq       *sequencer
	opTimeout time.Duration
	readTries int
	readDelay time.Duration
	now       func() time.Time
}

type Option func(*Ledger)

func WithNotifier(n notify.Notifier) Option {
	return func(l *Ledger) {
		if n != nil {
			l.seq.deliver = n.Notify
		}
	}
}

func WithStrategy(s Strategy) Option {
	return func(l *Ledger) { l.strategy = s }
}

// WithOpTimeout bounds every store round trip made by one ledger call.
func WithOpTimeout(d time.Duration) Option {
	return func(l *Ledger) { l.opTimeout = d }
}

// WithReadRetry makes balance and log reads retry store faults with doubling
// delays. Writes are never retried.
func WithReadRetry(attempts int, base time.Duration) Option {
	return func(l *Ledger) {
		if attempts > 0 {
			l.readTries = attempts
		}
		if base > 0 {
			l.readDelay = base
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(st Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:     st,
		strategy:  StrategyOptimistic,
		locks:     newKeyedMutex(),
		seq:       newSequencer(notify.Discard.Notify),
		readTries: 1,
		readDelay: 50 * time.Millisecond,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) Strategy() Strategy { return l.strategy }

type entryOptions struct {
	ref string
}

type EntryOption func(*entryOptions)

// WithRef tags the recorded transaction with a caller reference such as a bet
// id, so the caller can later find it in the log.
func WithRef(ref string) EntryOption {
	return func(o *entryOptions) { o.ref = ref }
}

// GetBalance returns 0 for players the store has never seen.
func (l *Ledger) GetBalance(ctx context.Context, playerID string) (int64, error) {
	if strings.TrimSpace(playerID) == "" {
		return 0, ErrInvalidPlayer
	}
	var bal store.Balance
	err := l.read(ctx, "get balance", func(ctx context.Context) error {
		var err error
		bal, _, err = l.store.Get(ctx, playerID)
		return err
	})
	return bal.Amount, err
}

// GetTransactions returns the player's log in append order.
func (l *Ledger) GetTransactions(ctx context.Context, playerID string) ([]store.Transaction, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, ErrInvalidPlayer
	}
	var out []store.Transaction
	err := l.read(ctx, "get transactions", func(ctx context.Context) error {
		var err error
		out, err = l.store.ReadAll(ctx, playerID)
		return err
	})
	return out, err
}

// SetBalance overwrites the balance without writing a log entry. It is meant
// for account initialization.
func (l *Ledger) SetBalance(ctx context.Context, playerID string, amount int64) error {
	if strings.TrimSpace(playerID) == "" {
		return ErrInvalidPlayer
	}
	if amount < 0 || amount > MaxAmount {
		return ErrInvalidAmount
	}
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	l.seq.begin(playerID)
	bal, err := l.store.Put(ctx, playerID, amount)
	if err != nil {
		l.seq.abandon(playerID)
		return l.writeErr(ctx, "set balance", err)
	}
	l.seq.push(playerID, bal.Version, notify.BalanceChanged{
		PlayerID: playerID,
		Balance:  bal.Amount,
		Version:  bal.Version,
		Kind:     notify.KindSet,
		Amount:   amount,
		At:       l.now().UTC(),
	}, releasePublish)
	return nil
}

// Credit adds amount and records it in one store operation.
func (l *Ledger) Credit(ctx context.Context, playerID string, amount int64, opts ...EntryOption) (int64, error) {
	if err := validate(playerID, amount); err != nil {
		return 0, err
	}
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	tx := l.newTransaction(playerID, amount, store.KindCredit, opts)
	l.seq.begin(playerID)
	bal, err := l.store.IncrAndAppend(ctx, tx)
	if err != nil {
		l.seq.abandon(playerID)
		return 0, l.writeErr(ctx, "credit", err)
	}
	metricCreditTotal.Add(1)
	l.publish(bal, tx)
	return bal.Amount, nil
}

// Debit removes amount if the balance covers it, otherwise it fails with
// ErrInsufficientBalance and leaves balance and log untouched.
func (l *Ledger) Debit(ctx context.Context, playerID string, amount int64, opts ...EntryOption) (int64, error) {
	if err := validate(playerID, amount); err != nil {
		return 0, err
	}
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	tx := l.newTransaction(playerID, amount, store.KindDebit, opts)
	var (
		bal store.Balance
		err error
	)
	if l.strategy == StrategyLocked {
		bal, err = l.debitLocked(ctx, tx)
	} else {
		bal, err = l.debitOptimistic(ctx, tx)
	}
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			metricDebitRejected.Add(1)
			log.Debug().Str("player_id", playerID).Int64("amount", amount).Msg("debit rejected")
		}
		return 0, err
	}
	metricDebitTotal.Add(1)
	l.publish(bal, tx)
	return bal.Amount, nil
}

func (l *Ledger) newTransaction(playerID string, amount int64, kind store.Kind, opts []EntryOption) store.Transaction {
	var o entryOptions
	for _, opt := range opts {
		opt(&o)
	}
	now := l.now().UTC()
	return store.Transaction{
		ID:        store.NewID(now),
		PlayerID:  playerID,
		Amount:    amount,
		Kind:      kind,
		Ref:       o.ref,
		CreatedAt: now,
	}
}

func (l *Ledger) publish(bal store.Balance, tx store.Transaction) {
	l.seq.push(tx.PlayerID, bal.Version, notify.BalanceChanged{
		PlayerID:      tx.PlayerID,
		Balance:       bal.Amount,
		Version:       bal.Version,
		Kind:          notify.Kind(tx.Kind),
		Amount:        tx.Amount,
		TransactionID: tx.ID,
		Ref:           tx.Ref,
		At:            tx.CreatedAt,
	}, releasePublish)
}

func (l *Ledger) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, l.opTimeout)
}

func (l *Ledger) read(ctx context.Context, op string, fn func(context.Context) error) error {
	delay := l.readDelay
	var err error
	for attempt := 1; ; attempt++ {
		callCtx, cancel := l.withTimeout(ctx)
		err = fn(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt >= l.readTries || ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	metricStoreErrors.Add(1)
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// writeErr classifies a failed write. An interrupted context means the store
// may have applied it.
func (l *Ledger) writeErr(ctx context.Context, op string, err error) error {
	if errors.Is(err, store.ErrOverflow) {
		log.Debug().Err(err).Str("op", op).Msg("ledger write would overflow balance")
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidAmount, err)
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		metricUnknownOutcome.Add(1)
		log.Warn().Err(err).Str("op", op).Msg("ledger write outcome unknown")
		return fmt.Errorf("%s: %w", op, ErrUnknownOutcome)
	}
	metricStoreErrors.Add(1)
	log.Error().Err(err).Str("op", op).Msg("ledger store write failed")
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

func validate(playerID string, amount int64) error {
	if strings.TrimSpace(playerID) == "" {
		return ErrInvalidPlayer
	}
	if amount <= 0 || amount > MaxAmount {
		return ErrInvalidAmount
	}
	return nil
}
