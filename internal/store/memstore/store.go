// Package memstore keeps balances and logs in process memory. It is meant for
// tests and local runs; nothing survives a restart.
package memstore

import (
	"context"
	"sync"

	"casino-wallet/internal/store"
)

type counter struct {
	amount  int64
	version int64
}

type Store struct {
	mu       sync.Mutex
	balances map[string]counter
	logs     map[string][]store.Transaction
}

func New() *Store {
	return &Store{
		balances: map[string]counter{},
		logs:     map[string][]store.Transaction{},
	}
}

func (s *Store) Incr(ctx context.Context, playerID string, delta int64) (store.Balance, error) {
	if err := ctx.Err(); err != nil {
		return store.Balance{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incrLocked(playerID, delta)
}

func (s *Store) IncrAndAppend(ctx context.Context, tx store.Transaction) (store.Balance, error) {
	if err := ctx.Err(); err != nil {
		return store.Balance{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bal, err := s.incrLocked(tx.PlayerID, tx.Delta())
	if err != nil {
		return store.Balance{}, err
	}
	s.logs[tx.PlayerID] = append(s.logs[tx.PlayerID], tx)
	return bal, nil
}

func (s *Store) Get(ctx context.Context, playerID string) (store.Balance, bool, error) {
	if err := ctx.Err(); err != nil {
		return store.Balance{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.balances[playerID]
	return store.Balance{PlayerID: playerID, Amount: c.amount, Version: c.version}, ok, nil
}

func (s *Store) Put(ctx context.Context, playerID string, amount int64) (store.Balance, error) {
	if err := ctx.Err(); err != nil {
		return store.Balance{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.balances[playerID]
	c.amount = amount
	c.version++
	s.balances[playerID] = c
	return store.Balance{PlayerID: playerID, Amount: c.amount, Version: c.version}, nil
}

func (s *Store) Append(ctx context.Context, tx store.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[tx.PlayerID] = append(s.logs[tx.PlayerID], tx)
	return nil
}

func (s *Store) ReadAll(ctx context.Context, playerID string) ([]store.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Transaction, len(s.logs[playerID]))
	copy(out, s.logs[playerID])
	return out, nil
}

func (s *Store) incrLocked(playerID string, delta int64) (store.Balance, error) {
	c := s.balances[playerID]
	sum := c.amount + delta
	if (delta > 0 && sum < c.amount) || (delta < 0 && sum > c.amount) {
		return store.Balance{}, store.ErrOverflow
	}
	c.amount = sum
	c.version++
	s.balances[playerID] = c
	return store.Balance{PlayerID: playerID, Amount: c.amount, Version: c.version}, nil
}
