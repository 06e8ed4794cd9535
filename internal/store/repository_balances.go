package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// numeric_value_out_of_range
const pgNumericOutOfRange = "22003"

const incrBalanceSQL = `
INSERT INTO balances (player_id, amount, version, updated_at)
VALUES ($1, $2, 1, now())
ON CONFLICT (player_id) DO UPDATE
SET amount = balances.amount + EXCLUDED.amount,
    version = balances.version + 1,
    updated_at = now()
RETURNING amount, version`

const putBalanceSQL = `
INSERT INTO balances (player_id, amount, version, updated_at)
VALUES ($1, $2, 1, now())
ON CONFLICT (player_id) DO UPDATE
SET amount = EXCLUDED.amount,
    version = balances.version + 1,
    updated_at = now()
RETURNING amount, version`

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *Store) Incr(ctx context.Context, playerID string, delta int64) (Balance, error) {
	return incrBalance(ctx, s.Pool, playerID, delta)
}

// IncrAndAppend moves the counter and records tx in one database transaction.
func (s *Store) IncrAndAppend(ctx context.Context, tx Transaction) (Balance, error) {
	dbtx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Balance{}, err
	}
	defer dbtx.Rollback(ctx)

	bal, err := incrBalance(ctx, dbtx, tx.PlayerID, tx.Delta())
	if err != nil {
		return Balance{}, err
	}
	if err := insertTransaction(ctx, dbtx, tx); err != nil {
		return Balance{}, err
	}
	if err := dbtx.Commit(ctx); err != nil {
		return Balance{}, err
	}
	return bal, nil
}

func (s *Store) Get(ctx context.Context, playerID string) (Balance, bool, error) {
	bal := Balance{PlayerID: playerID}
	err := s.Pool.QueryRow(ctx,
		`SELECT amount, version FROM balances WHERE player_id = $1`, playerID,
	).Scan(&bal.Amount, &bal.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return bal, false, nil
	}
	if err != nil {
		return Balance{}, false, err
	}
	return bal, true, nil
}

func (s *Store) Put(ctx context.Context, playerID string, amount int64) (Balance, error) {
	bal := Balance{PlayerID: playerID}
	if err := s.Pool.QueryRow(ctx, putBalanceSQL, playerID, amount).Scan(&bal.Amount, &bal.Version); err != nil {
		return Balance{}, err
	}
	return bal, nil
}

func incrBalance(ctx context.Context, q queryRower, playerID string, delta int64) (Balance, error) {
	bal := Balance{PlayerID: playerID}
	if err := q.QueryRow(ctx, incrBalanceSQL, playerID, delta).Scan(&bal.Amount, &bal.Version); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgNumericOutOfRange {
			return Balance{}, ErrOverflow
		}
		return Balance{}, err
	}
	return bal, nil
}
