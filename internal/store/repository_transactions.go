package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (s *Store) Append(ctx context.Context, tx Transaction) error {
	return insertTransaction(ctx, s.Pool, tx)
}

// ReadAll returns the player's log in append order.
func (s *Store) ReadAll(ctx context.Context, playerID string) ([]Transaction, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT id, player_id, amount, kind, ref, created_at
FROM transactions
WHERE player_id = $1
ORDER BY seq ASC`, playerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Transaction, error) {
		var tx Transaction
		var kind string
		err := row.Scan(&tx.ID, &tx.PlayerID, &tx.Amount, &kind, &tx.Ref, &tx.CreatedAt)
		tx.Kind = Kind(kind)
		return tx, err
	})
}

func insertTransaction(ctx context.Context, q execer, tx Transaction) error {
	_, err := q.Exec(ctx, `
INSERT INTO transactions (id, player_id, amount, kind, ref, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		tx.ID, tx.PlayerID, tx.Amount, string(tx.Kind), tx.Ref, tx.CreatedAt)
	return err
}
