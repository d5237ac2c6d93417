package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	// no configs/ dir under the package dir, so everything comes from defaults
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if got := cfg.Session.MaxDuration(); got != 100*time.Minute {
		t.Fatalf("expected 1h40m session budget, got %v", got)
	}
	if got := cfg.Session.CountdownTick(); got != time.Minute {
		t.Fatalf("expected 1m countdown tick, got %v", got)
	}
	if got := cfg.Notice.Expiry(); got != 20*time.Minute {
		t.Fatalf("expected 20m notice window, got %v", got)
	}
	if cfg.Auth.PasscodeHash != "" {
		t.Fatal("passcode hash must not have a baked-in default")
	}
	if cfg.Auth.TokenTTLMin != 720 {
		t.Fatalf("expected 720 minute token TTL, got %d", cfg.Auth.TokenTTLMin)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig("does-not-exist.yaml"); err == nil {
		t.Fatal("expected error for explicit missing config file")
	}
}
