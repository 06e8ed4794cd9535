package config

import "testing"

func TestLoadPushBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("EVENT_PUSH_ENABLED", "1")

	cfg, err := LoadPush()
	if err != nil {
		t.Fatalf("LoadPush() error = %v", err)
	}
	if !cfg.Enabled {
		t.Fatal("Enabled = false, want true")
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if cfg.KafkaTopic != "balance-events" {
		t.Fatalf("KafkaTopic = %q, want balance-events", cfg.KafkaTopic)
	}
}

func TestLoadGameAPIDefaults(t *testing.T) {
	cfg, err := LoadGameAPI()
	if err != nil {
		t.Fatalf("LoadGameAPI() error = %v", err)
	}
	if cfg.TimeoutMS != 5000 {
		t.Fatalf("TimeoutMS = %d, want 5000", cfg.TimeoutMS)
	}
	if cfg.CatalogTTLS != 3600 {
		t.Fatalf("CatalogTTLS = %d, want 3600", cfg.CatalogTTLS)
	}
}
