// Package eventpush relays balance events to Kafka topics and webhooks. It
// sits behind the ledger's notifier so a slow or failing target never delays
// a balance mutation.
package eventpush

import (
	"time"

	"casino-wallet/internal/notify"
)

type Target struct {
	Name string `yaml:"name"`
	// Sink is "kafka" or "webhook".
	Sink string `yaml:"sink"`
	// Endpoint is the topic for kafka and the URL for webhooks.
	Endpoint string `yaml:"endpoint"`
	Secret   string `yaml:"secret"`
	// Players restricts the target to these player ids; empty means all.
	Players []string `yaml:"players"`
	// Kinds restricts the target to these event kinds; empty means all.
	Kinds   []string `yaml:"kinds"`
	Enabled bool     `yaml:"enabled"`
}

type Config struct {
	Enabled             bool
	ConfigPath          string
	ConfigReload        time.Duration
	Targets             []Target
	KafkaBrokers        []string
	Workers             int
	RetryMax            int
	RetryBase           time.Duration
	FailureThreshold    int
	CircuitOpenDuration time.Duration
	RequestTimeout      time.Duration
	DispatchBuffer      int
}

type pushJob struct {
	Target  Target
	Event   notify.BalanceChanged
	Attempt int
}

func (j pushJob) key() string {
	return targetKey(j.Target)
}

func targetKey(t Target) string {
	return t.Sink + "|" + t.Endpoint
}
