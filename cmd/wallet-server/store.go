package main

import (
	"context"
	"fmt"

	"casino-wallet/internal/config"
	"casino-wallet/internal/ledger"
	"casino-wallet/internal/store"
	"casino-wallet/internal/store/memstore"
	"casino-wallet/internal/store/mysqlstore"
	"casino-wallet/internal/store/redisstore"
	httptransport "casino-wallet/internal/transport/http"

	"github.com/rs/zerolog/log"
)

type backend struct {
	store  ledger.Store
	health httptransport.Pinger
	close  func()
}

func openStore(ctx context.Context, cfg config.ServerConfig) (backend, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn().Msg("using in-memory store; balances are lost on restart")
		return backend{store: memstore.New(), close: func() {}}, nil
	case config.StorePostgres:
		st, err := store.New(cfg.PostgresDSN)
		if err != nil {
			return backend{}, err
		}
		if err := st.Ping(ctx); err != nil {
			st.Close()
			return backend{}, fmt.Errorf("postgres ping: %w", err)
		}
		return backend{store: st, health: st, close: st.Close}, nil
	case config.StoreRedis:
		st := redisstore.Open(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := st.Ping(ctx); err != nil {
			_ = st.Close()
			return backend{}, fmt.Errorf("redis ping: %w", err)
		}
		return backend{store: st, health: st, close: func() { _ = st.Close() }}, nil
	case config.StoreMySQL:
		st, err := mysqlstore.Open(cfg.MySQLDSN)
		if err != nil {
			return backend{}, err
		}
		if err := st.Ping(ctx); err != nil {
			_ = st.Close()
			return backend{}, fmt.Errorf("mysql ping: %w", err)
		}
		return backend{store: st, health: st, close: func() { _ = st.Close() }}, nil
	default:
		return backend{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
