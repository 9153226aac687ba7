package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second || cfg.Server.WriteTimeout != 120*time.Second {
		t.Fatalf("unexpected default timeouts: %v / %v", cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	}
	if cfg.Mongo.Database != "dm" {
		t.Fatalf("expected default database dm, got %s", cfg.Mongo.Database)
	}
}

func TestLoadReadsEnvOverrides(t *testing.T) {
	t.Setenv("DM_PORT", "9090")
	t.Setenv("DM_READ_TIMEOUT", "5s")
	t.Setenv("DM_WRITE_TIMEOUT", "1m")
	t.Setenv("DM_NATS_ENABLED", "false")
	t.Setenv("DM_LOG_LEVEL", "warn")

	cfg := Load()
	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("expected read timeout 5s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != time.Minute {
		t.Fatalf("expected write timeout 1m, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Nats.Enabled {
		t.Fatalf("expected nats disabled")
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected log level warn, got %s", cfg.LogLevel)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("DM_PORT", "not-a-number")
	t.Setenv("DM_READ_TIMEOUT", "soon")

	cfg := Load()
	if cfg.Server.Port != 8080 {
		t.Fatalf("malformed port must fall back to default, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Fatalf("malformed duration must fall back to default, got %v", cfg.Server.ReadTimeout)
	}
}
