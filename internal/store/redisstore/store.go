// Package redisstore keeps the ledger in Redis: an integer counter and a
// version counter per player plus a JSON list for the transaction log.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"casino-wallet/internal/store"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	client redis.UniversalClient
}

func New(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

func Open(addr, password string, db int) *Store {
	return New(redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}))
}

// Braces form a cluster hash tag, so a player's keys share one slot and can
// be touched by a single script.
func balanceKey(playerID string) string { return "balance:{" + playerID + "}" }
func versionKey(playerID string) string { return "balance_version:{" + playerID + "}" }
func logKey(playerID string) string     { return "transactions:{" + playerID + "}" }

// incrScript moves the counter, bumps the version and optionally appends a
// log entry. INCRBY runs first, so a rejected increment (overflow, non-integer
// value) aborts the script before anything is written. The amount is read
// back as a string because Lua numbers are doubles.
var incrScript = redis.NewScript(`
redis.call('INCRBY', KEYS[1], ARGV[1])
local amount = redis.call('GET', KEYS[1])
local version = redis.call('INCR', KEYS[2])
if ARGV[2] ~= '' then
  redis.call('RPUSH', KEYS[3], ARGV[2])
end
return {amount, version}
`)

func (s *Store) Incr(ctx context.Context, playerID string, delta int64) (store.Balance, error) {
	return s.incr(ctx, playerID, delta, "")
}

func (s *Store) IncrAndAppend(ctx context.Context, tx store.Transaction) (store.Balance, error) {
	raw, err := json.Marshal(tx)
	if err != nil {
		return store.Balance{}, err
	}
	return s.incr(ctx, tx.PlayerID, tx.Delta(), string(raw))
}

func (s *Store) incr(ctx context.Context, playerID string, delta int64, entry string) (store.Balance, error) {
	keys := []string{balanceKey(playerID), versionKey(playerID), logKey(playerID)}
	vals, err := incrScript.Run(ctx, s.client, keys, delta, entry).Int64Slice()
	if err != nil {
		if strings.Contains(err.Error(), "overflow") {
			return store.Balance{}, store.ErrOverflow
		}
		return store.Balance{}, err
	}
	if len(vals) != 2 {
		return store.Balance{}, fmt.Errorf("incr %s: unexpected script reply %v", playerID, vals)
	}
	return store.Balance{PlayerID: playerID, Amount: vals[0], Version: vals[1]}, nil
}

func (s *Store) Get(ctx context.Context, playerID string) (store.Balance, bool, error) {
	vals, err := s.client.MGet(ctx, balanceKey(playerID), versionKey(playerID)).Result()
	if err != nil {
		return store.Balance{}, false, err
	}
	bal := store.Balance{PlayerID: playerID}
	if vals[0] == nil {
		return bal, false, nil
	}
	if bal.Amount, err = parseInt(vals[0]); err != nil {
		return store.Balance{}, false, fmt.Errorf("balance %s: %w", playerID, err)
	}
	if vals[1] != nil {
		if bal.Version, err = parseInt(vals[1]); err != nil {
			return store.Balance{}, false, fmt.Errorf("balance version %s: %w", playerID, err)
		}
	}
	return bal, true, nil
}

func (s *Store) Put(ctx context.Context, playerID string, amount int64) (store.Balance, error) {
	var version *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, balanceKey(playerID), amount, 0)
		version = pipe.Incr(ctx, versionKey(playerID))
		return nil
	})
	if err != nil {
		return store.Balance{}, err
	}
	return store.Balance{PlayerID: playerID, Amount: amount, Version: version.Val()}, nil
}

func (s *Store) Append(ctx context.Context, tx store.Transaction) error {
	raw, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, logKey(tx.PlayerID), raw).Err()
}

func (s *Store) ReadAll(ctx context.Context, playerID string) ([]store.Transaction, error) {
	items, err := s.client.LRange(ctx, logKey(playerID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]store.Transaction, 0, len(items))
	for _, item := range items {
		var tx store.Transaction
		if err := json.Unmarshal([]byte(item), &tx); err != nil {
			return nil, fmt.Errorf("decode transaction for %s: %w", playerID, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func parseInt(v any) (int64, error) {
	str, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected redis value %T", v)
	}
	return strconv.ParseInt(str, 10, 64)
}
