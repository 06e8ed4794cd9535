package config

import "testing"

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.StoreDriver != StoreMemory {
		t.Fatalf("StoreDriver = %q, want memory", cfg.StoreDriver)
	}
	if cfg.InitialBalance != 100000 {
		t.Fatalf("InitialBalance = %d, want 100000", cfg.InitialBalance)
	}
	if cfg.DebitStrategy != "optimistic" {
		t.Fatalf("DebitStrategy = %q, want optimistic", cfg.DebitStrategy)
	}
}

func TestLoadServerRequiresDriverDSN(t *testing.T) {
	cases := []struct {
		driver string
		envKey string
	}{
		{driver: "postgres", envKey: "POSTGRES_DSN"},
		{driver: "mysql", envKey: "MYSQL_DSN"},
	}
	for _, tc := range cases {
		t.Run(tc.driver, func(t *testing.T) {
			t.Setenv("STORE_DRIVER", tc.driver)
			t.Setenv(tc.envKey, "")
			if _, err := LoadServer(); err == nil {
				t.Fatalf("LoadServer() expected error for %s without %s", tc.driver, tc.envKey)
			}
		})
	}
}

func TestLoadServerRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "etcd")

	if _, err := LoadServer(); err == nil {
		t.Fatal("LoadServer() expected error, got nil")
	}
}

func TestLoadServerParseTypes(t *testing.T) {
	t.Setenv("STORE_DRIVER", " Postgres ")
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/wallet?sslmode=disable")
	t.Setenv("INITIAL_BALANCE", "2500")
	t.Setenv("DEBIT_STRATEGY", "locked")
	t.Setenv("WS_ALLOW_GLOBAL", "true")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.StoreDriver != StorePostgres {
		t.Fatalf("StoreDriver = %q, want postgres", cfg.StoreDriver)
	}
	if cfg.InitialBalance != 2500 {
		t.Fatalf("InitialBalance = %d, want 2500", cfg.InitialBalance)
	}
	if cfg.DebitStrategy != "locked" {
		t.Fatalf("DebitStrategy = %q, want locked", cfg.DebitStrategy)
	}
	if !cfg.WSAllowGlobal {
		t.Fatal("WSAllowGlobal = false, want true")
	}
}
