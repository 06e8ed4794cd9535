package eventpush

import (
	"os"
	"path/filepath"
	"testing"

	"casino-wallet/internal/config"
	"casino-wallet/internal/notify"
)

const targetsYAML = `
targets:
  - name: audit
    sink: webhook
    endpoint: https://audit.local/hook
    secret: s3cret
    kinds: [DEBIT, credit]
    enabled: true
  - name: empty-endpoint
    sink: webhook
    endpoint: ""
    enabled: true
  - name: unknown-sink
    sink: sqs
    endpoint: queue
    enabled: true
  - name: vip-stream
    sink: kafka
    endpoint: vip-balances
    players: [vip-1]
    enabled: true
  - name: disabled
    sink: webhook
    endpoint: https://off.local
`

func TestConfigFromPushFiltersTargets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.yaml")
	if err := os.WriteFile(path, []byte(targetsYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := ConfigFromPush(config.PushConfig{
		Enabled:      true,
		ConfigPath:   path,
		KafkaBrokers: []string{"kafka:9092"},
		KafkaTopic:   "balance-events",
		Workers:      2,
		RetryBaseMS:  100,
	})
	if err != nil {
		t.Fatalf("ConfigFromPush() error = %v", err)
	}
	if len(cfg.Targets) != 3 {
		t.Fatalf("expected default kafka plus 2 file targets, got %+v", cfg.Targets)
	}
	if cfg.Targets[0].Name != defaultKafkaTarget || cfg.Targets[0].Endpoint != "balance-events" {
		t.Fatalf("unexpected default target: %+v", cfg.Targets[0])
	}
	if cfg.Targets[1].Kinds[0] != "debit" {
		t.Fatalf("kinds not normalized: %v", cfg.Targets[1].Kinds)
	}
}

func TestConfigFromPushReadError(t *testing.T) {
	_, err := ConfigFromPush(config.PushConfig{Enabled: true, ConfigPath: "/tmp/not-exist-event-push.yaml"})
	if err == nil {
		t.Fatal("expected read error for missing config path")
	}
}

func TestConfigFromPushDisabledSkipsFile(t *testing.T) {
	cfg, err := ConfigFromPush(config.PushConfig{ConfigPath: "/tmp/not-exist-event-push.yaml"})
	if err != nil || cfg.Enabled || len(cfg.Targets) != 0 {
		t.Fatalf("disabled config = %+v, %v", cfg, err)
	}
}

func TestMatchTargets(t *testing.T) {
	targets := []Target{
		{Name: "all", Enabled: true},
		{Name: "debits", Kinds: []string{"debit"}, Enabled: true},
		{Name: "vip", Players: []string{"vip-1"}, Enabled: true},
		{Name: "off"},
	}
	got := matchTargets(targets, notify.BalanceChanged{PlayerID: "p1", Kind: notify.KindCredit})
	if len(got) != 1 || got[0].Name != "all" {
		t.Fatalf("credit for p1 matched %+v", got)
	}
	got = matchTargets(targets, notify.BalanceChanged{PlayerID: "vip-1", Kind: notify.KindDebit})
	if len(got) != 3 {
		t.Fatalf("debit for vip-1 matched %+v", got)
	}
}
