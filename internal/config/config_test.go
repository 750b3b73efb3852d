package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
server:
  http_port: 9090
balancer:
  enabled: true
  min_streak: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.HTTPPort != 9090 {
		t.Errorf("http_port = %d, want 9090", cfg.Server.HTTPPort)
	}
	if cfg.Balancer.MinStreak != 5 {
		t.Errorf("min_streak = %d, want 5", cfg.Balancer.MinStreak)
	}

	// Unset fields fall back to defaults.
	if cfg.Server.ListenAddr != "127.0.0.1" {
		t.Errorf("listen_addr default = %q", cfg.Server.ListenAddr)
	}
	if cfg.Balancer.MinPlayers != 4 {
		t.Errorf("min_players default = %d, want 4", cfg.Balancer.MinPlayers)
	}
	if cfg.Balancer.RatingWindow != 90*24*time.Hour {
		t.Errorf("rating_window default = %v", cfg.Balancer.RatingWindow)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("server: [not a mapping"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestDefaultIsEnabled(t *testing.T) {
	cfg := Default()
	if !cfg.Balancer.IsEnabled() {
		t.Error("default config must enable the balancer")
	}
	if cfg.NATS.Port != 4222 {
		t.Errorf("nats port default = %d, want 4222", cfg.NATS.Port)
	}
}

func TestEnabledDefaultsOnWhenOmitted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("balancer:\n  min_streak: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Balancer.IsEnabled() {
		t.Error("omitted enabled key must leave balancing on")
	}

	// An explicit opt-out sticks.
	if err := os.WriteFile(path, []byte("balancer:\n  enabled: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Balancer.IsEnabled() {
		t.Error("enabled: false must turn balancing off")
	}
}
