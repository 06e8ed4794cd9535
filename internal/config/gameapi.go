package config

import "github.com/caarlos0/env/v11"

type GameAPIConfig struct {
	BaseURL     string `env:"GAME_API_URL" envDefault:"http://localhost:9090"`
	Token       string `env:"GAME_API_TOKEN"`
	TimeoutMS   int    `env:"GAME_API_TIMEOUT_MS" envDefault:"5000"`
	CatalogTTLS int    `env:"GAME_API_CATALOG_TTL_S" envDefault:"3600"`
}

func LoadGameAPI() (GameAPIConfig, error) {
	var cfg GameAPIConfig
	err := env.Parse(&cfg)
	return cfg, err
}
