package eventpush

import (
	"fmt"
	"os"
	"strings"
	"time"

	"casino-wallet/internal/config"

	"gopkg.in/yaml.v3"
)

const defaultKafkaTarget = "default-kafka"

func ConfigFromPush(cfg config.PushConfig) (Config, error) {
	out := Config{
		Enabled:             cfg.Enabled,
		ConfigPath:          strings.TrimSpace(cfg.ConfigPath),
		ConfigReload:        time.Duration(cfg.ConfigReloadMS) * time.Millisecond,
		KafkaBrokers:        cfg.KafkaBrokers,
		Workers:             cfg.Workers,
		RetryMax:            cfg.RetryMax,
		RetryBase:           time.Duration(cfg.RetryBaseMS) * time.Millisecond,
		FailureThreshold:    3,
		CircuitOpenDuration: 30 * time.Second,
		RequestTimeout:      5 * time.Second,
		DispatchBuffer:      2048,
	}
	if !out.Enabled {
		return out, nil
	}
	if out.RetryMax < 0 {
		out.RetryMax = 0
	}

	if len(cfg.KafkaBrokers) > 0 && strings.TrimSpace(cfg.KafkaTopic) != "" {
		out.Targets = append(out.Targets, Target{
			Name:     defaultKafkaTarget,
			Sink:     SinkKafka,
			Endpoint: strings.TrimSpace(cfg.KafkaTopic),
			Enabled:  true,
		})
	}
	if out.ConfigPath == "" {
		return out, nil
	}
	raw, err := os.ReadFile(out.ConfigPath)
	if err != nil {
		return Config{}, fmt.Errorf("read event push config path %q: %w", out.ConfigPath, err)
	}
	targets, err := parseTargetsYAML(raw)
	if err != nil {
		return Config{}, err
	}
	out.Targets = append(out.Targets, targets...)
	return out, nil
}

type targetsFile struct {
	Targets []Target `yaml:"targets"`
}

func parseTargetsYAML(raw []byte) ([]Target, error) {
	var f targetsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse event push targets: %w", err)
	}
	filtered := make([]Target, 0, len(f.Targets))
	for _, target := range f.Targets {
		target.Sink = strings.ToLower(strings.TrimSpace(target.Sink))
		if target.Sink != SinkKafka && target.Sink != SinkWebhook {
			continue
		}
		target.Endpoint = strings.TrimSpace(target.Endpoint)
		if target.Endpoint == "" || !target.Enabled {
			continue
		}
		for i := range target.Kinds {
			target.Kinds[i] = strings.ToLower(strings.TrimSpace(target.Kinds[i]))
		}
		filtered = append(filtered, target)
	}
	return filtered, nil
}
