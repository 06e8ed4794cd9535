package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMySQL    = "mysql"
)

type ServerConfig struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	AdminAPIKey string `env:"ADMIN_API_KEY"`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"memory"`
	PostgresDSN   string `env:"POSTGRES_DSN"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	MySQLDSN      string `env:"MYSQL_DSN"`

	// Minor units; 100000 is 1000.00.
	InitialBalance    int64  `env:"INITIAL_BALANCE" envDefault:"100000"`
	DebitStrategy     string `env:"DEBIT_STRATEGY" envDefault:"optimistic"`
	LedgerOpTimeoutMS int    `env:"LEDGER_OP_TIMEOUT_MS" envDefault:"3000"`
	ReadRetryAttempts int    `env:"READ_RETRY_ATTEMPTS" envDefault:"3"`
	ReadRetryBaseMS   int    `env:"READ_RETRY_BASE_MS" envDefault:"50"`

	WSAllowGlobal    bool `env:"WS_ALLOW_GLOBAL" envDefault:"false"`
	BacklogPerPlayer int  `env:"SSE_BACKLOG_PER_PLAYER" envDefault:"64"`
	BacklogPlayers   int  `env:"SSE_BACKLOG_PLAYERS" envDefault:"10000"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	switch cfg.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if cfg.PostgresDSN == "" {
			return cfg, fmt.Errorf("POSTGRES_DSN is required for store driver %q", cfg.StoreDriver)
		}
	case StoreMySQL:
		if cfg.MySQLDSN == "" {
			return cfg, fmt.Errorf("MYSQL_DSN is required for store driver %q", cfg.StoreDriver)
		}
	case StoreRedis:
		if cfg.RedisAddr == "" {
			return cfg, fmt.Errorf("REDIS_ADDR is required for store driver %q", cfg.StoreDriver)
		}
	default:
		return cfg, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return cfg, nil
}
