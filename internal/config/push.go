package config

import "github.com/caarlos0/env/v11"

type PushConfig struct {
	Enabled        bool     `env:"EVENT_PUSH_ENABLED" envDefault:"false"`
	ConfigPath     string   `env:"EVENT_PUSH_CONFIG_PATH"`
	ConfigReloadMS int      `env:"EVENT_PUSH_CONFIG_RELOAD_MS" envDefault:"1000"`
	KafkaBrokers   []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic     string   `env:"KAFKA_TOPIC" envDefault:"balance-events"`
	Workers        int      `env:"EVENT_PUSH_WORKERS" envDefault:"4"`
	RetryMax       int      `env:"EVENT_PUSH_RETRY_MAX" envDefault:"3"`
	RetryBaseMS    int      `env:"EVENT_PUSH_RETRY_BASE_MS" envDefault:"500"`
}

func LoadPush() (PushConfig, error) {
	var cfg PushConfig
	err := env.Parse(&cfg)
	return cfg, err
}
