package config

import "github.com/caarlos0/env/v11"

type WatcherConfig struct {
	WSURL    string `env:"WS_URL" envDefault:"ws://localhost:8080/ws"`
	PlayerID string `env:"PLAYER_ID"`
}

func LoadWatcher() (WatcherConfig, error) {
	var cfg WatcherConfig
	err := env.Parse(&cfg)
	return cfg, err
}
